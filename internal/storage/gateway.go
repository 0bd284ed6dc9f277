package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound   = errors.New("storage: not found")
	ErrConnection = errors.New("storage: connection unavailable")
)

// Connection modes accepted by NewGateway.
const (
	ModePool         = "pool"
	ModePerOperation = "per_operation"
)

// Gateway hands out a database handle for the duration of one operation.
// Release must be called exactly once when the operation is done; whether it
// actually closes the handle is up to the implementation.
type Gateway interface {
	Acquire(ctx context.Context) (*sqlx.DB, func() error, error)
}

// NewGateway builds the gateway selected by mode. An empty mode selects the
// pooled gateway.
func NewGateway(mode, path string) (Gateway, error) {
	switch mode {
	case "", ModePool:
		return NewPoolGateway(path)
	case ModePerOperation:
		return NewDialGateway(path), nil
	default:
		return nil, fmt.Errorf("storage: unknown connection mode %q", mode)
	}
}

// DialGateway opens a fresh SQLite connection on every acquisition and
// closes it on release. No pooling, no retry, no keep-alive.
type DialGateway struct {
	path string
}

func NewDialGateway(path string) *DialGateway {
	return &DialGateway{path: path}
}

func (g *DialGateway) Acquire(ctx context.Context) (*sqlx.DB, func() error, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", g.path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return db, db.Close, nil
}

// PoolGateway shares one database/sql pool across all operations; release is
// a no-op, so callers follow the same acquire/release shape as DialGateway.
type PoolGateway struct {
	db *sqlx.DB
}

func NewPoolGateway(path string) (*PoolGateway, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return &PoolGateway{db: db}, nil
}

// NewPoolGatewayFromDB wraps an already opened handle. The caller keeps
// ownership of the handle's lifetime.
func NewPoolGatewayFromDB(db *sqlx.DB) *PoolGateway {
	return &PoolGateway{db: db}
}

func (g *PoolGateway) Acquire(ctx context.Context) (*sqlx.DB, func() error, error) {
	if g.db == nil {
		return nil, nil, fmt.Errorf("%w: pool is closed", ErrConnection)
	}
	return g.db, releaseNoop, nil
}

func (g *PoolGateway) Close() error {
	if g.db == nil {
		return nil
	}
	err := g.db.Close()
	g.db = nil
	return err
}

func releaseNoop() error { return nil }
