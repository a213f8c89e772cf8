package state

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
)

// Open builds the KV backend selected by cfg and a function releasing it.
// pool is only used by the postgres kind and may be nil otherwise.
func Open(ctx context.Context, cfg config.StateConfig, pool *pgxpool.Pool) (KV, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.StateMemory:
		return NewMemory(), noop, nil

	case config.StateFile:
		return NewFile(cfg.FilePath), noop, nil

	case config.StateSQLite:
		db, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil

	case config.StateRedis:
		r := NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return r, r.Close, nil

	case config.StatePostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("postgres state store requires a database pool")
		}
		p, err := NewPostgres(ctx, pool, cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		return p, noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown state store kind %q", cfg.Kind)
	}
}
