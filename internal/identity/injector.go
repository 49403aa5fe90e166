// Package identity stamps outgoing API requests with the user's identity.
//
// The injector reads the preferences flow's in-memory value, backed by an
// atomic cache of the latest identity it has followed, so the request path
// only ever reads memory. Until the first
// identity arrives a request waits, on its own goroutine and for at most
// WaitTimeout, before going out with AnonymousUserID instead.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"reviewapp/internal/preferences/flow"
	"reviewapp/pkg/platform/sentinel"
)

const (
	// HeaderUserID carries the identity on every outgoing request.
	HeaderUserID = "X-User-ID"
	// AnonymousUserID is sent when no identity is available in time.
	AnonymousUserID = "anonymous"

	DefaultWaitTimeout = 2 * time.Second
)

// Values of the identity.source span attribute and metric label.
const (
	SourceCache     = "cache"
	SourceWait      = "wait"
	SourceAnonymous = "anonymous"
)

// ErrIdentityUnavailable reports that a request went out anonymously.
var ErrIdentityUnavailable = errors.New("identity unavailable")

// Source is the user identity preference. An empty value means not yet known.
type Source interface {
	Value() string
	Subscribe(ctx context.Context) *flow.Subscription[string]
}

// Injector is an http.RoundTripper that sets X-User-ID on every request.
type Injector struct {
	base    http.RoundTripper
	source  Source
	wait    time.Duration
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	cache     *atomic.String
	ready     chan struct{}
	readyOnce sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Injector)

// WithBase sets the wrapped transport. Defaults to http.DefaultTransport.
func WithBase(rt http.RoundTripper) Option {
	return func(i *Injector) {
		if rt != nil {
			i.base = rt
		}
	}
}

func WithWaitTimeout(d time.Duration) Option {
	return func(i *Injector) {
		if d > 0 {
			i.wait = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(i *Injector) {
		if logger != nil {
			i.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(i *Injector) {
		i.metrics = m
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(i *Injector) {
		if tp != nil {
			i.tracer = tp.Tracer("reviewapp/internal/identity")
		}
	}
}

// NewInjector builds an injector over source. Call Start to begin following
// identity changes.
func NewInjector(source Source, opts ...Option) *Injector {
	i := &Injector{
		base:   http.DefaultTransport,
		source: source,
		wait:   DefaultWaitTimeout,
		logger: slog.Default(),
		tracer: otel.Tracer("reviewapp/internal/identity"),
		cache:  atomic.NewString(""),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Start seeds the cache from the source's current value and follows later
// changes until Stop or ctx ends. Calling Start twice is a no-op.
func (i *Injector) Start(ctx context.Context) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.done != nil {
		return
	}
	ctx, i.cancel = context.WithCancel(ctx)
	i.done = make(chan struct{})

	i.store(i.source.Value())
	sub := i.source.Subscribe(ctx)
	go i.follow(sub)
}

// Stop ends the subscription. The cached identity stays in use.
func (i *Injector) Stop() {
	i.mu.Lock()
	cancel, done := i.cancel, i.done
	i.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Current returns the identity without waiting. ok is false before the first
// identity has arrived.
func (i *Injector) Current() (id string, ok bool) {
	id = i.current()
	return id, id != ""
}

// current prefers the source's in-memory value, which a Set has replaced by
// the time it returns, over the cache the subscription fills later.
func (i *Injector) current() string {
	if id := i.source.Value(); id != "" {
		i.store(id)
		return id
	}
	return i.cache.Load()
}

// Resolve returns the identity for a request. It answers from the cache when
// it can, otherwise waits up to the configured timeout (or until ctx ends)
// and falls back to AnonymousUserID with ErrIdentityUnavailable.
func (i *Injector) Resolve(ctx context.Context) (string, error) {
	id, _, err := i.resolve(ctx)
	return id, err
}

// RoundTrip sends a copy of req carrying X-User-ID. A missing identity never
// fails the request.
func (i *Injector) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx, span := i.tracer.Start(req.Context(), "identity.inject", trace.WithSpanKind(trace.SpanKindClient))
	id, source, err := i.resolve(ctx)
	span.SetAttributes(attribute.String("identity.source", source))
	if err != nil {
		span.RecordError(err)
	}
	span.End()

	out := req.Clone(req.Context())
	out.Header.Set(HeaderUserID, id)
	return i.base.RoundTrip(out)
}

func (i *Injector) resolve(ctx context.Context) (string, string, error) {
	if id := i.current(); id != "" {
		i.metrics.observe(SourceCache)
		return id, SourceCache, nil
	}

	timer := time.NewTimer(i.wait)
	defer timer.Stop()

	var cause error
	select {
	case <-i.ready:
		i.metrics.observe(SourceWait)
		return i.current(), SourceWait, nil
	case <-timer.C:
		cause = sentinel.ErrTimeout
	case <-ctx.Done():
		cause = ctx.Err()
	}

	i.metrics.observe(SourceAnonymous)
	err := fmt.Errorf("%w: %w", ErrIdentityUnavailable, cause)
	i.logger.WarnContext(ctx, "sending request without identity", "wait", i.wait, "error", err)
	return AnonymousUserID, SourceAnonymous, err
}

func (i *Injector) follow(sub *flow.Subscription[string]) {
	defer close(i.done)
	defer sub.Cancel()
	for id := range sub.C() {
		i.store(id)
	}
}

func (i *Injector) store(id string) {
	if id == "" {
		return
	}
	i.cache.Store(id)
	i.readyOnce.Do(func() { close(i.ready) })
}
