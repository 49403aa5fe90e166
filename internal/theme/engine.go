package theme

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"reviewapp/internal/preferences/flow"
	"reviewapp/internal/preferences/store"
)

// ModeSource is the persisted mode preference the engine reads and writes.
type ModeSource interface {
	Value() Mode
	Subscribe(ctx context.Context) *flow.Subscription[Mode]
	Set(ctx context.Context, m Mode) error
}

// Engine recomputes the resolved theme whenever the mode or the system
// signal changes and publishes it as a replaying stream.
type Engine struct {
	modes  ModeSource
	system *flow.Flow[bool]
	out    *flow.Flow[bool]
	logger *slog.Logger
	notify func(Mode)

	initialDark bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSystemDark sets the platform signal's starting value.
func WithSystemDark(dark bool) Option {
	return func(e *Engine) {
		e.initialDark = dark
	}
}

// WithTransitionHook is called with the new mode after every Toggle or SetMode.
func WithTransitionHook(fn func(Mode)) Option {
	return func(e *Engine) {
		e.notify = fn
	}
}

// NewEngine starts an engine over modes. Call Close to stop it.
func NewEngine(modes ModeSource, opts ...Option) *Engine {
	e := &Engine{
		modes:  modes,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	// Neither the platform signal nor the resolved theme is persisted.
	e.system = flow.NewLocal("system_dark", e.initialDark, flow.WithLogger[bool](e.logger))
	e.out = flow.NewLocal("resolved_dark", e.Resolved(), flow.WithLogger[bool](e.logger))

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	go e.run(ctx)
	return e
}

// Mode returns the current persisted mode.
func (e *Engine) Mode() Mode {
	return e.modes.Value()
}

// SystemDark returns the last platform signal.
func (e *Engine) SystemDark() bool {
	return e.system.Value()
}

// Resolved computes the theme from the current mode and system signal.
func (e *Engine) Resolved() bool {
	return Resolve(e.modes.Value(), e.system.Value())
}

// Subscribe streams the resolved theme, starting with the current value.
func (e *Engine) Subscribe(ctx context.Context) *flow.Subscription[bool] {
	return e.out.Subscribe(ctx)
}

// Toggle moves to Next(current mode) and persists it.
func (e *Engine) Toggle(ctx context.Context) (Mode, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := Next(e.modes.Value())
	return next, e.apply(ctx, next)
}

// SetMode persists m directly.
func (e *Engine) SetMode(ctx context.Context, m Mode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.apply(ctx, m)
}

// SetSystemDark feeds the platform's dark-mode signal.
func (e *Engine) SetSystemDark(ctx context.Context, dark bool) {
	_ = e.system.Set(ctx, dark)
}

// Close stops recomputation and ends resolved-theme subscriptions.
func (e *Engine) Close() {
	e.cancel()
	<-e.done
	e.out.Close()
	e.system.Close()
}

// apply persists m. Storage failures are absorbed: the flow already logged
// them and keeps the new mode in memory.
func (e *Engine) apply(ctx context.Context, m Mode) error {
	err := e.modes.Set(ctx, m)
	if err != nil && !errors.Is(err, store.ErrStorage) {
		return err
	}
	if e.notify != nil {
		e.notify(m)
	}
	return nil
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	modes := e.modes.Subscribe(ctx)
	defer modes.Cancel()
	system := e.system.Subscribe(ctx)
	defer system.Cancel()

	mode := e.modes.Value()
	dark := e.system.Value()
	last := e.out.Value()

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-modes.C():
			if !ok {
				return
			}
			mode = m
		case d, ok := <-system.C():
			if !ok {
				return
			}
			dark = d
		}
		if resolved := Resolve(mode, dark); resolved != last {
			last = resolved
			if err := e.out.Set(ctx, resolved); err != nil {
				e.logger.Debug("resolved theme not published", "error", err)
			}
		}
	}
}
