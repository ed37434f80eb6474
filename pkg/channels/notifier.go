// Package channels holds small generic helpers for channel-based signalling.
package channels

import (
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrChannelClosed = errors.New("channel closed")
	ErrChannelFull   = errors.New("channel full")
)

// SendNonBlock delivers msg only if ch has room. A closed channel reports
// ErrChannelClosed instead of panicking.
func SendNonBlock[T any](ch chan<- T, msg T) (err error) {
	defer func() {
		if recover() != nil {
			err = ErrChannelClosed
		}
	}()

	select {
	case ch <- msg:
		return nil
	default:
		return ErrChannelFull
	}
}

// Notifier delivers messages to a changing set of subscribers without ever
// blocking the sender. A subscriber whose buffer is full misses the message.
type Notifier[T any] struct {
	mu      sync.Mutex
	nextID  int
	subs    map[int]chan T
	dropped atomic.Int64
}

// NewNotifier creates a Notifier with no subscribers.
func NewNotifier[T any]() *Notifier[T] {
	return &Notifier[T]{subs: make(map[int]chan T)}
}

// Subscribe registers a new buffered channel. The returned cancel func
// unregisters and closes it; calling it more than once is safe.
func (n *Notifier[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = 1
	}

	ch := make(chan T, buffer)

	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = ch
	n.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
			close(ch)
		})
	}

	return ch, cancel
}

// Notify sends msg to every subscriber and returns how many received it.
func (n *Notifier[T]) Notify(msg T) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	delivered := 0
	for _, ch := range n.subs {
		if err := SendNonBlock(ch, msg); err != nil {
			n.dropped.Add(1)

			continue
		}
		delivered++
	}

	return delivered
}

// Len returns the current number of subscribers.
func (n *Notifier[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.subs)
}

// Dropped returns how many deliveries were skipped because a buffer was full.
func (n *Notifier[T]) Dropped() int64 {
	return n.dropped.Load()
}
