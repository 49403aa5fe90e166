package navigation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Operation labels passed to Recorder.
const (
	OpPush    = "push"
	OpPop     = "pop"
	OpReset   = "reset"
	OpOpen    = "open"
	OpRestore = "restore"
)

// Recorder receives navigation counts. internal/platform/metrics satisfies it.
type Recorder interface {
	IncrementNavigation(op string)
	IncrementDeepLinkFailures()
}

type nopRecorder struct{}

func (nopRecorder) IncrementNavigation(string) {}
func (nopRecorder) IncrementDeepLinkFailures() {}

// Navigator is the single writer of a Stack. Observers are told the current
// route after every mutation, in mutation order. Observers may read the
// Navigator but must not mutate it from inside the callback.
type Navigator struct {
	logger  *slog.Logger
	metrics Recorder

	notifyMu  sync.Mutex
	mu        sync.Mutex
	stack     *Stack
	observers map[uint64]func(Route)
	nextID    uint64
}

type Option func(*Navigator)

// WithRoot sets the root route. Defaults to ProductList.
func WithRoot(r Route) Option {
	return func(n *Navigator) {
		if r != nil {
			n.stack = NewStack(r)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		if logger != nil {
			n.logger = logger
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(n *Navigator) {
		if r != nil {
			n.metrics = r
		}
	}
}

func NewNavigator(opts ...Option) *Navigator {
	n := &Navigator{
		logger:    slog.Default(),
		metrics:   nopRecorder{},
		stack:     NewStack(nil),
		observers: make(map[uint64]func(Route)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(n)
		}
	}
	return n
}

// Subscribe registers fn and returns a func that removes it.
func (n *Navigator) Subscribe(fn func(Route)) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.nextID++
	id := n.nextID
	n.observers[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.observers, id)
	}
}

// Push validates r and appends it.
func (n *Navigator) Push(r Route) error {
	if r == nil {
		return fmt.Errorf("%w: nil route", ErrInvalidRoute)
	}
	if err := r.Validate(); err != nil {
		return err
	}
	n.mutate(OpPush, func(s *Stack) { s.Push(r) })
	return nil
}

// Pop goes back one screen. At the root it does nothing and reports false.
func (n *Navigator) Pop() (Route, bool) {
	var popped Route
	var ok bool
	n.mutate(OpPop, func(s *Stack) { popped, ok = s.Pop() })
	return popped, ok
}

func (n *Navigator) ResetToRoot() {
	n.mutate(OpReset, func(s *Stack) { s.ResetToRoot() })
}

// Open follows a deep link. A path that does not decode sends the user to
// the root screen; the decode error is returned for the caller's information.
func (n *Navigator) Open(path string) (Route, error) {
	r, err := Decode(path)
	if err == nil {
		err = r.Validate()
	}
	if err != nil {
		n.logger.Warn("deep link not recognised, returning to root", "path", path, "error", err)
		n.metrics.IncrementDeepLinkFailures()
		return n.mutate(OpOpen, func(s *Stack) { s.ResetToRoot() }), err
	}
	return n.mutate(OpOpen, func(s *Stack) { s.Push(r) }), nil
}

func (n *Navigator) Current() Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack.Current()
}

func (n *Navigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack.Len()
}

func (n *Navigator) Entries() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stack.Entries()
}

// Snapshot serializes the stack, root first, as a JSON array of tagged routes.
func (n *Navigator) Snapshot() ([]byte, error) {
	entries := n.Entries()
	envs := make([]envelope, len(entries))
	for i, r := range entries {
		env, err := toEnvelope(r)
		if err != nil {
			return nil, err
		}
		envs[i] = env
	}
	return json.Marshal(envs)
}

// ErrInvalidSnapshot is returned by Restore when data is not a valid stack.
var ErrInvalidSnapshot = errors.New("invalid navigation snapshot")

// Restore replaces the stack with a Snapshot. Data that does not decode, is
// empty, or does not start at the root leaves the navigator at the root.
func (n *Navigator) Restore(data []byte) error {
	routes, err := n.parseSnapshot(data)
	if err != nil {
		n.logger.Warn("discarding saved navigation state", "error", err)
		n.mutate(OpRestore, func(s *Stack) { s.ResetToRoot() })
		return err
	}
	n.mutate(OpRestore, func(s *Stack) {
		s.ResetToRoot()
		for _, r := range routes[1:] {
			s.Push(r)
		}
	})
	return nil
}

func (n *Navigator) parseSnapshot(data []byte) ([]Route, error) {
	var envs []envelope
	if err := json.Unmarshal(data, &envs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if len(envs) == 0 {
		return nil, fmt.Errorf("%w: empty stack", ErrInvalidSnapshot)
	}
	routes := make([]Route, len(envs))
	for i, env := range envs {
		r, err := fromEnvelope(env)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidSnapshot, i, err)
		}
		routes[i] = r
	}
	n.mu.Lock()
	root := n.stack.Root()
	n.mu.Unlock()
	if routes[0] != root {
		return nil, fmt.Errorf("%w: first entry is %s, not the root", ErrInvalidSnapshot, routes[0].Kind())
	}
	return routes, nil
}

func (n *Navigator) mutate(op string, fn func(*Stack)) Route {
	n.notifyMu.Lock()
	defer n.notifyMu.Unlock()

	n.mu.Lock()
	fn(n.stack)
	current := n.stack.Current()
	observers := make([]func(Route), 0, len(n.observers))
	for _, o := range n.observers {
		observers = append(observers, o)
	}
	n.mu.Unlock()

	n.metrics.IncrementNavigation(op)
	for _, o := range observers {
		o(current)
	}
	return current
}
