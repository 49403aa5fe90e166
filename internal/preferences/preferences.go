// Package preferences owns the session's preference state: one flow per
// persisted key, created at session start and closed at teardown.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"reviewapp/internal/preferences/flow"
	"reviewapp/internal/preferences/store"
	"reviewapp/internal/theme"
)

// AnonymousPrefix marks identities generated locally rather than assigned by
// sign-in.
const AnonymousPrefix = "anon-"

var ErrInvalidUserID = errors.New("user id must not be empty")

// Service holds the theme mode and user identity flows over one store.
type Service struct {
	store  store.Store
	logger *slog.Logger
	grace  time.Duration
	newID  func() string

	themeMode *flow.Flow[theme.Mode]
	userID    *flow.Flow[string]
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithGracePeriod is passed through to both flows.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Service) {
		s.grace = d
	}
}

// WithIDGenerator replaces the anonymous identity generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New builds the preference state over s.
func New(s store.Store, opts ...Option) *Service {
	svc := &Service{
		store:  s,
		logger: slog.Default(),
		grace:  flow.DefaultGracePeriod,
		newID:  NewAnonymousID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}

	svc.themeMode = flow.New(s, store.KeyThemeMode, theme.Codec, theme.ModeSystem,
		flow.WithGracePeriod[theme.Mode](svc.grace),
		flow.WithLogger[theme.Mode](svc.logger),
	)
	svc.userID = flow.New(s, store.KeyUserID, flow.StringCodec, "",
		flow.WithGracePeriod[string](svc.grace),
		flow.WithLogger[string](svc.logger),
		flow.WithInitializer(svc.newID),
	)
	return svc
}

// NewAnonymousID returns a fresh locally generated identity.
func NewAnonymousID() string {
	return AnonymousPrefix + uuid.NewString()
}

func (s *Service) ThemeMode() *flow.Flow[theme.Mode] {
	return s.themeMode
}

func (s *Service) UserID() *flow.Flow[string] {
	return s.userID
}

func (s *Service) SetThemeMode(ctx context.Context, m theme.Mode) error {
	return s.themeMode.Set(ctx, m)
}

// SetUserID replaces the identity. Storage failures are returned wrapped in
// store.ErrStorage; the new identity is in effect regardless.
func (s *Service) SetUserID(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidUserID
	}
	return s.userID.Set(ctx, id)
}

// EnsureIdentity returns the current identity, waiting for the user-id flow
// to settle. The flow's own initializer generates and persists an anonymous
// identity when none is stored or the read fails, so there is exactly one
// generator however the first read is triggered.
func (s *Service) EnsureIdentity(ctx context.Context) (string, error) {
	if id := s.userID.Value(); id != "" {
		return id, nil
	}
	id, err := s.userID.Await(ctx)
	if err != nil {
		return "", fmt.Errorf("waiting for identity: %w", err)
	}
	if id == "" {
		// A blank value was stored explicitly; replace it.
		id = s.newID()
		if err := s.userID.Set(ctx, id); err != nil && !errors.Is(err, store.ErrStorage) {
			return "", err
		}
	}
	return id, nil
}

// Seed primes both flows from a single batch read so the first subscribers
// see stored values instead of defaults. Flows that already hold a value are
// left alone.
func (s *Service) Seed(ctx context.Context) error {
	values, err := store.LoadMany(ctx, s.store, []store.Key{store.KeyThemeMode, store.KeyUserID})
	if err != nil {
		return fmt.Errorf("seeding preferences: %w", err)
	}
	if raw, ok := values[store.KeyThemeMode]; ok {
		if m, perr := theme.ParseMode(raw); perr == nil {
			s.themeMode.Prime(m)
		} else {
			s.logger.Warn("stored theme mode is unreadable", "value", raw, "error", perr)
		}
	}
	if id, ok := values[store.KeyUserID]; ok && id != "" {
		s.userID.Prime(id)
	}
	return nil
}

// Close ends every subscription on both flows.
func (s *Service) Close() {
	s.themeMode.Close()
	s.userID.Close()
}
