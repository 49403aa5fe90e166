// Package flow exposes a persisted preference as a hot, multicast stream that
// replays its latest value to every new subscriber.
//
// A Flow never leaves a subscriber without a value: the first delivery is the
// cached value if one is held, otherwise the declared default while the store
// load runs in the background. Set updates every subscriber in call order and
// then persists. The store is read at most once while anyone is subscribed;
// once the last subscriber leaves, the loaded value is kept for a grace period
// (to survive quick resubscription) and then marked stale so the next
// subscriber triggers a fresh load.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"reviewapp/internal/preferences/store"
	"reviewapp/pkg/platform/sentinel"
)

const (
	DefaultGracePeriod = 5 * time.Second
	DefaultLoadTimeout = 10 * time.Second
)

// Flow is a live view of one preference key.
type Flow[T comparable] struct {
	key         store.Key
	store       store.Store
	codec       Codec[T]
	def         T
	initial     func() T
	grace       time.Duration
	loadTimeout time.Duration
	logger      *slog.Logger

	baseCtx    context.Context
	cancelBase context.CancelFunc
	group      singleflight.Group
	setMu      sync.Mutex

	mu      sync.Mutex
	value   T
	loaded  bool
	loading bool
	version uint64
	subs    map[uint64]*Subscription[T]
	nextID  uint64
	timer   *time.Timer
	timerID uint64
	closed  bool
	waiters []chan struct{}

	// local flows have no store: they start loaded and never expire.
	local bool
}

// Option configures a Flow.
type Option[T comparable] func(*Flow[T])

// WithGracePeriod sets how long the loaded value survives without
// subscribers. Zero or negative expires it as soon as the last one leaves.
func WithGracePeriod[T comparable](d time.Duration) Option[T] {
	return func(f *Flow[T]) {
		f.grace = d
	}
}

// WithLoadTimeout bounds each background store read.
func WithLoadTimeout[T comparable](d time.Duration) Option[T] {
	return func(f *Flow[T]) {
		if d > 0 {
			f.loadTimeout = d
		}
	}
}

// WithLogger sets the logger for absorbed storage failures.
func WithLogger[T comparable](logger *slog.Logger) Option[T] {
	return func(f *Flow[T]) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithInitializer creates and persists a value when the store has none (or
// cannot be read), instead of settling on the default.
func WithInitializer[T comparable](fn func() T) Option[T] {
	return func(f *Flow[T]) {
		f.initial = fn
	}
}

// New builds a Flow for key. def is what subscribers see until (or unless)
// the store produces a value.
func New[T comparable](s store.Store, key store.Key, codec Codec[T], def T, opts ...Option[T]) *Flow[T] {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Flow[T]{
		key:         key,
		store:       s,
		codec:       codec,
		def:         def,
		grace:       DefaultGracePeriod,
		loadTimeout: DefaultLoadTimeout,
		logger:      slog.Default(),
		baseCtx:     ctx,
		cancelBase:  cancel,
		value:       def,
		subs:        make(map[uint64]*Subscription[T]),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// NewLocal builds a Flow that lives only in memory, for derived or
// platform-fed values that must not be persisted. It has the same replay and
// ordering behavior; Set never fails with a storage error and Load always
// reports sentinel.ErrNotFound.
func NewLocal[T comparable](name string, def T, opts ...Option[T]) *Flow[T] {
	f := New[T](nil, store.Key(name), Codec[T]{}, def, opts...)
	f.local = true
	f.loaded = true
	return f
}

// Key returns the preference key backing the flow.
func (f *Flow[T]) Key() store.Key {
	return f.key
}

// Default returns the declared default.
func (f *Flow[T]) Default() T {
	return f.def
}

// Value returns the current value without waiting: the last loaded or set
// value, else the default.
func (f *Flow[T]) Value() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// Loaded reports whether the current value came from the store or a Set
// rather than the default.
func (f *Flow[T]) Loaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loaded
}

// Subscribers returns the number of active subscriptions.
func (f *Flow[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Subscribe registers a consumer. The current value is queued immediately.
// The subscription ends when ctx is done or Cancel is called.
func (f *Flow[T]) Subscribe(ctx context.Context) *Subscription[T] {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		sub := newSubscription[T](0, nil)
		sub.close(false)
		return sub
	}

	f.stopTimerLocked()
	f.nextID++
	sub := newSubscription[T](f.nextID, f.remove)
	f.subs[sub.id] = sub
	sub.push(f.value)

	if !f.loaded && !f.loading && !f.local {
		f.loading = true
		go f.load(f.version)
	}
	f.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.Done():
		}
	}()
	return sub
}

// Set publishes v to every subscriber and persists it. Concurrent calls are
// applied and persisted in the order they acquire the flow. A persistence
// failure is logged and returned wrapped in store.ErrStorage; the in-memory
// value stays authoritative either way.
func (f *Flow[T]) Set(ctx context.Context, v T) error {
	f.setMu.Lock()
	defer f.setMu.Unlock()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return sentinel.ErrClosed
	}
	f.value = v
	f.markLoadedLocked()
	f.version++
	f.broadcastLocked(v)
	f.mu.Unlock()

	if f.local {
		return nil
	}
	if err := f.store.Save(ctx, f.key, f.codec.Format(v)); err != nil {
		f.logger.Warn("preference save failed, keeping in-memory value", "key", f.key, "error", err)
		if !errors.Is(err, store.ErrStorage) {
			err = fmt.Errorf("%w: %w", store.ErrStorage, err)
		}
		return err
	}
	return nil
}

// Prime installs v as the loaded value unless the flow already holds one.
// Used to seed flows from a batch read at startup without persisting.
func (f *Flow[T]) Prime(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded || f.closed {
		return
	}
	f.markLoadedLocked()
	f.version++
	if v != f.value {
		f.value = v
		f.broadcastLocked(v)
	}
}

// Await holds a subscription until the flow has a loaded value (from the
// store, the initializer, a Set or Prime) and returns it. Going through the
// subscription means any initializer runs in the one shared load.
func (f *Flow[T]) Await(ctx context.Context) (T, error) {
	sub := f.Subscribe(ctx)
	defer sub.Cancel()

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return f.def, sentinel.ErrClosed
	}
	if f.loaded {
		v := f.value
		f.mu.Unlock()
		return v, nil
	}
	ready := make(chan struct{})
	f.waiters = append(f.waiters, ready)
	f.mu.Unlock()

	select {
	case <-ready:
		return f.Value(), nil
	case <-ctx.Done():
		return f.def, ctx.Err()
	case <-sub.Done():
		if err := ctx.Err(); err != nil {
			return f.def, err
		}
		return f.def, sentinel.ErrClosed
	}
}

// Load reads the store directly and returns the raw result, including
// sentinel.ErrNotFound and storage errors. Concurrent calls share one read.
// It does not touch the cached value.
func (f *Flow[T]) Load(ctx context.Context) (T, error) {
	if f.local {
		return f.def, sentinel.ErrNotFound
	}
	ch := f.group.DoChan(f.key.String(), func() (any, error) {
		raw, err := f.store.Load(ctx, f.key)
		if err != nil {
			return f.def, err
		}
		v, err := f.codec.Parse(raw)
		if err != nil {
			return f.def, fmt.Errorf("parse %s: %w", f.key, err)
		}
		return v, nil
	})
	select {
	case res := <-ch:
		return res.Val.(T), res.Err
	case <-ctx.Done():
		return f.def, ctx.Err()
	}
}

// Close ends every subscription and stops background work. Set fails with
// sentinel.ErrClosed afterwards.
func (f *Flow[T]) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.stopTimerLocked()
	subs := f.subs
	f.subs = make(map[uint64]*Subscription[T])
	f.mu.Unlock()

	f.cancelBase()
	for _, sub := range subs {
		sub.close(false)
	}
}

func (f *Flow[T]) load(version uint64) {
	ctx, cancel := context.WithTimeout(f.baseCtx, f.loadTimeout)
	defer cancel()

	v := f.fetch(ctx, version)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.version != version || f.closed {
		// A Set or an expiry superseded this load; whoever bumped the
		// version already owns the loading flag.
		return
	}
	f.markLoadedLocked()
	if v != f.value {
		f.value = v
		f.broadcastLocked(v)
	}
}

// fetch resolves the stored value. Missing, unreadable and failed reads all
// fall back to the initializer, or the default when there is none.
func (f *Flow[T]) fetch(ctx context.Context, version uint64) T {
	raw, err := f.store.Load(ctx, f.key)
	if err == nil {
		v, perr := f.codec.Parse(raw)
		if perr == nil {
			return v
		}
		f.logger.Warn("stored preference is unreadable, using default", "key", f.key, "error", perr)
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		f.logger.Warn("preference load failed, using default", "key", f.key, "error", err)
	}

	if f.initial == nil {
		return f.def
	}

	// Hold off Set while the generated value is persisted so it can never
	// overwrite an explicit one.
	f.setMu.Lock()
	defer f.setMu.Unlock()
	f.mu.Lock()
	superseded := f.version != version
	f.mu.Unlock()
	if superseded {
		return f.def
	}
	v := f.initial()
	if serr := f.store.Save(ctx, f.key, f.codec.Format(v)); serr != nil {
		f.logger.Warn("failed to persist initial preference", "key", f.key, "error", serr)
	}
	return v
}

func (f *Flow[T]) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return
	}
	delete(f.subs, id)
	if len(f.subs) > 0 || f.closed {
		return
	}
	if f.grace <= 0 {
		f.expireLocked()
		return
	}
	f.timerID++
	timerID := f.timerID
	f.timer = time.AfterFunc(f.grace, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.timerID != timerID || len(f.subs) > 0 {
			return
		}
		f.timer = nil
		f.expireLocked()
	})
}

// expireLocked marks the cached value stale. The value itself stays as the
// placeholder the next subscriber sees while the reload runs; any load still
// in flight is discarded.
func (f *Flow[T]) expireLocked() {
	if f.local {
		return
	}
	f.loaded = false
	f.loading = false
	f.version++
}

func (f *Flow[T]) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.timerID++
}

// markLoadedLocked records that the value is settled and wakes Await callers.
func (f *Flow[T]) markLoadedLocked() {
	f.loaded = true
	f.loading = false
	for _, ch := range f.waiters {
		close(ch)
	}
	f.waiters = nil
}

func (f *Flow[T]) broadcastLocked(v T) {
	for _, sub := range f.subs {
		sub.push(v)
	}
}
