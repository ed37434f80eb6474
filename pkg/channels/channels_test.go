package channels_test

import (
	"sync"
	"testing"

	"github.com/alkime/sonaris/pkg/channels"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendNonBlock(t *testing.T) {
	t.Run("success - buffered channel with capacity", func(t *testing.T) {
		ch := make(chan int, 2)
		err := channels.SendNonBlock(ch, 42)
		assert.NoError(t, err)
		assert.Equal(t, 42, <-ch)
	})

	t.Run("full - buffered channel", func(t *testing.T) {
		ch := make(chan int, 1)
		ch <- 1
		err := channels.SendNonBlock(ch, 42)
		assert.ErrorIs(t, err, channels.ErrChannelFull)
	})

	t.Run("full - unbuffered with no receiver", func(t *testing.T) {
		ch := make(chan int)
		err := channels.SendNonBlock(ch, 42)
		assert.ErrorIs(t, err, channels.ErrChannelFull)
	})

	t.Run("closed channel", func(t *testing.T) {
		ch := make(chan int, 2)
		ch <- 1
		close(ch)
		err := channels.SendNonBlock(ch, 42)
		assert.ErrorIs(t, err, channels.ErrChannelClosed)
		assert.Equal(t, 1, <-ch)
	})
}

func TestNotifier(t *testing.T) {
	t.Run("delivers to every subscriber", func(t *testing.T) {
		n := channels.NewNotifier[string]()
		a, cancelA := n.Subscribe(4)
		b, cancelB := n.Subscribe(4)
		defer cancelA()
		defer cancelB()

		assert.Equal(t, 2, n.Notify("ready"))
		assert.Equal(t, "ready", <-a)
		assert.Equal(t, "ready", <-b)
	})

	t.Run("full subscriber drops without blocking", func(t *testing.T) {
		n := channels.NewNotifier[int]()
		ch, cancel := n.Subscribe(1)
		defer cancel()

		assert.Equal(t, 1, n.Notify(1))
		assert.Equal(t, 0, n.Notify(2))
		assert.Equal(t, int64(1), n.Dropped())
		assert.Equal(t, 1, <-ch)
	})

	t.Run("cancel closes and unregisters", func(t *testing.T) {
		n := channels.NewNotifier[int]()
		ch, cancel := n.Subscribe(1)
		require.Equal(t, 1, n.Len())

		cancel()
		cancel()

		_, open := <-ch
		assert.False(t, open)
		assert.Equal(t, 0, n.Len())
		assert.Equal(t, 0, n.Notify(5))
	})

	t.Run("notify with no subscribers", func(t *testing.T) {
		n := channels.NewNotifier[int]()
		assert.Equal(t, 0, n.Notify(1))
	})

	t.Run("concurrent notify and cancel", func(t *testing.T) {
		n := channels.NewNotifier[int]()
		var wg sync.WaitGroup

		for range 8 {
			_, cancel := n.Subscribe(2)
			wg.Go(func() {
				for i := range 50 {
					n.Notify(i)
				}
			})
			wg.Go(cancel)
		}

		wg.Wait()
		assert.Equal(t, 0, n.Len())
	})
}
