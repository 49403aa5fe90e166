package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"reviewapp/pkg/platform/sentinel"
)

// Clock returns the current time; injected for testability.
type Clock func() time.Time

// Postgres persists preferences in a single key/value table.
type Postgres struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a Postgres store.
type PostgresOption func(*Postgres)

// WithClock sets the clock used for updated_at.
func WithClock(clock Clock) PostgresOption {
	return func(p *Postgres) {
		if clock != nil {
			p.clock = clock
		}
	}
}

func NewPostgres(db *sql.DB, opts ...PostgresOption) *Postgres {
	p := &Postgres{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

const createPreferencesTable = `
	CREATE TABLE IF NOT EXISTS preferences (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)
`

// Migrate creates the preferences table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createPreferencesTable); err != nil {
		return fmt.Errorf("migrate preferences: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, key Key) (value string, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, sentinel.ErrNotFound) {
			observe("postgres", "load", start, nil)
			return
		}
		observe("postgres", "load", start, err)
	}()

	err = p.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = $1`, key.String()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: load %s: %w", ErrStorage, key, err)
	}
	return value, nil
}

func (p *Postgres) Save(ctx context.Context, key Key, value string) (err error) {
	start := time.Now()
	defer func() { observe("postgres", "save", start, err) }()

	query := `
		INSERT INTO preferences (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err = p.db.ExecContext(ctx, query, key.String(), value, p.clock()); err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrStorage, key, err)
	}
	return nil
}

// LoadMany reads keys in one round trip using an array parameter.
func (p *Postgres) LoadMany(ctx context.Context, keys []Key) (out map[Key]string, err error) {
	start := time.Now()
	defer func() { observe("postgres", "load_many", start, err) }()

	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.String()
	}
	rows, err := p.db.QueryContext(ctx, `SELECT key, value FROM preferences WHERE key = ANY($1::text[])`, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("%w: load many: %w", ErrStorage, err)
	}
	defer rows.Close()

	out = make(map[Key]string, len(keys))
	for rows.Next() {
		var k, v string
		if err = rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("%w: scan preference: %w", ErrStorage, err)
		}
		out[Key(k)] = v
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate preferences: %w", ErrStorage, err)
	}
	return out, nil
}
