// Package workflow implements the key → style → generate creation flow as a
// state machine that is independent of any presentation layer.
//
// Provider calls run outside the machine lock. Every Submit and ChangeKey
// bumps a sequence number; a generation result is applied only when the
// sequence it captured is still current, so late responses never overwrite
// newer state.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/alkime/sonaris/internal/apperr"
	"github.com/alkime/sonaris/pkg/channels"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generator produces creative content for a key and style.
type Generator interface {
	ChordProgression(ctx context.Context, key, style string) (string, error)
	Keywords(ctx context.Context, key, style string) ([]string, error)
}

// ResolveFunc picks the Generator for one submission.
type ResolveFunc func(ctx context.Context) (Generator, error)

// Static always resolves to gen.
func Static(gen Generator) ResolveFunc {
	return func(context.Context) (Generator, error) {
		return gen, nil
	}
}

// Machine is the creation workflow. It is safe for concurrent use.
type Machine struct {
	mu       sync.Mutex
	state    State
	resolve  ResolveFunc
	notifier *channels.Notifier[State]
	logger   *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the machine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// New creates a machine in the SelectingKey phase.
func New(resolve ResolveFunc, opts ...Option) *Machine {
	m := &Machine{
		state:    State{Phase: PhaseSelectingKey, Keywords: []string{}},
		resolve:  resolve,
		notifier: channels.NewNotifier[State](),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Subscribe returns a channel that receives a snapshot after every
// transition. Slow subscribers miss snapshots rather than stall the machine.
func (m *Machine) Subscribe(buffer int) (<-chan State, func()) {
	return m.notifier.Subscribe(buffer)
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.clone()
}

// ConfirmKey records the key and moves to KeyConfirmed.
func (m *Machine) ConfirmKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key must not be empty", apperr.ErrState)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseSelectingKey {
		return fmt.Errorf("%w: cannot confirm key while %s", apperr.ErrState, m.state.Phase)
	}

	m.state.Key = key
	m.state.Phase = PhaseKeyConfirmed
	m.publishLocked()

	return nil
}

// ChangeKey clears everything and returns to SelectingKey. Any in-flight
// generation becomes stale.
func (m *Machine) ChangeKey() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{
		Phase:    PhaseSelectingKey,
		Keywords: []string{},
		Seq:      m.state.Seq + 1,
	}
	m.publishLocked()
}

// RemoveKeyword deletes the keyword at index. An out-of-range index is ignored.
func (m *Machine) RemoveKeyword(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Phase != PhaseReady {
		return fmt.Errorf("%w: cannot remove keyword while %s", apperr.ErrState, m.state.Phase)
	}

	if index < 0 || index >= len(m.state.Keywords) {
		return nil
	}

	keywords := make([]string, 0, len(m.state.Keywords)-1)
	keywords = append(keywords, m.state.Keywords[:index]...)
	keywords = append(keywords, m.state.Keywords[index+1:]...)
	m.state.Keywords = keywords
	m.publishLocked()

	return nil
}

// Submit generates a progression and keywords for the confirmed key in the
// given style. It blocks until both calls finish. A result that went stale
// while in flight is dropped and Submit returns nil.
func (m *Machine) Submit(ctx context.Context, style string) error {
	style = strings.TrimSpace(style)

	m.mu.Lock()
	switch {
	case m.state.Phase == PhaseGenerating:
		m.mu.Unlock()

		return fmt.Errorf("%w: generation already in progress", apperr.ErrBusy)
	case m.state.Phase == PhaseSelectingKey:
		m.mu.Unlock()

		return fmt.Errorf("%w: confirm a key before submitting", apperr.ErrState)
	case style == "":
		m.mu.Unlock()

		return fmt.Errorf("%w: style must not be empty", apperr.ErrState)
	}

	m.state.Seq++
	seq := m.state.Seq
	key := m.state.Key
	m.state.Style = style
	m.state.Phase = PhaseGenerating
	m.state.Progression = nil
	m.state.Keywords = []string{}
	m.state.Err = ""
	m.publishLocked()
	m.mu.Unlock()

	logger := m.logger.With("submission", uuid.NewString(), "seq", seq)
	logger.Info("Generating", "key", key, "style", style)

	progression, keywords, err := m.generate(ctx, key, style)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Seq != seq {
		logger.Debug("Discarding stale generation result", "current_seq", m.state.Seq, "error", err)

		return nil
	}

	if err != nil {
		logger.Warn("Generation failed", "error", err)
		m.state.Phase = PhaseError
		m.state.Err = err.Error()
		m.publishLocked()

		return err
	}

	m.state.Progression = &Progression{Text: progression}
	m.state.Keywords = keywords
	m.state.Phase = PhaseReady
	m.publishLocked()
	logger.Info("Generation complete", "keywords", len(keywords))

	return nil
}

func (m *Machine) generate(ctx context.Context, key, style string) (string, []string, error) {
	gen, err := m.resolve(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve provider: %w", err)
	}

	var (
		progression string
		keywords    []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		progression, err = gen.ChordProgression(gctx, key, style)

		return err
	})
	g.Go(func() error {
		var err error
		keywords, err = gen.Keywords(gctx, key, style)

		return err
	})

	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	if keywords == nil {
		keywords = []string{}
	}

	return progression, keywords, nil
}

func (m *Machine) publishLocked() {
	m.notifier.Notify(m.state.clone())
}
