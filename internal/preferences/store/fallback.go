package store

import (
	"context"
	"errors"
	"log/slog"

	"reviewapp/pkg/platform/circuit"
	"reviewapp/pkg/platform/sentinel"
)

// Fallback fronts a primary Store with an in-memory copy. Every value read
// from or written to the primary is mirrored locally. After repeated primary
// failures the circuit opens and the local copy answers until the primary has
// recovered for a few consecutive calls.
type Fallback struct {
	primary Store
	local   *Memory
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// FallbackOption configures a Fallback.
type FallbackOption func(*Fallback)

func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(f *Fallback) {
		if b != nil {
			f.breaker = b
		}
	}
}

func WithLogger(logger *slog.Logger) FallbackOption {
	return func(f *Fallback) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFallback(primary Store, opts ...FallbackOption) *Fallback {
	f := &Fallback{
		primary: primary,
		local:   NewMemory(),
		breaker: circuit.New("preference-store"),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Degraded reports whether reads and writes are currently served locally.
func (f *Fallback) Degraded() bool {
	return f.breaker.IsOpen()
}

func (f *Fallback) Load(ctx context.Context, key Key) (string, error) {
	value, err := f.primary.Load(ctx, key)
	switch {
	case err == nil:
		_ = f.local.Save(ctx, key, value)
		if !f.recordSuccess() {
			return f.local.Load(ctx, key)
		}
		return value, nil
	case errors.Is(err, sentinel.ErrNotFound):
		if !f.recordSuccess() {
			return f.local.Load(ctx, key)
		}
		return "", err
	default:
		if f.recordFailure(err) {
			return f.local.Load(ctx, key)
		}
		return "", err
	}
}

// Save writes locally first so the last-known value survives a primary
// failure, then writes through.
func (f *Fallback) Save(ctx context.Context, key Key, value string) error {
	_ = f.local.Save(ctx, key, value)
	if err := f.primary.Save(ctx, key, value); err != nil {
		if f.recordFailure(err) {
			return nil
		}
		return err
	}
	f.recordSuccess()
	return nil
}

func (f *Fallback) LoadMany(ctx context.Context, keys []Key) (map[Key]string, error) {
	values, err := LoadMany(ctx, f.primary, keys)
	if err != nil {
		if f.recordFailure(err) {
			return f.local.LoadMany(ctx, keys)
		}
		return nil, err
	}
	for k, v := range values {
		_ = f.local.Save(ctx, k, v)
	}
	if !f.recordSuccess() {
		return f.local.LoadMany(ctx, keys)
	}
	return values, nil
}

func (f *Fallback) recordFailure(err error) bool {
	useFallback, change := f.breaker.RecordFailure()
	if change.Opened {
		fallbackActive.Set(1)
		f.logger.Warn("preference store degraded, serving in-memory values", "error", err)
	}
	return useFallback
}

func (f *Fallback) recordSuccess() bool {
	usePrimary, change := f.breaker.RecordSuccess()
	if change.Closed {
		fallbackActive.Set(0)
		f.logger.Info("preference store recovered")
	}
	return usePrimary
}
