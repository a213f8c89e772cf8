package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
)

// Open builds the record source selected by cfg and a function releasing
// its client. pool is only used by the postgres kind.
func Open(ctx context.Context, cfg config.SourceConfig, pool *pgxpool.Pool) (Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Kind {
	case config.SourceFile:
		return NewFile(cfg.FilePath, cfg.Watch, cfg.Debounce), noop, nil

	case config.SourceFirestore:
		fs, err := NewFirestore(ctx, cfg.FirestoreProject, cfg.FirestoreCredentials, cfg.Collection)
		if err != nil {
			return nil, nil, err
		}
		return fs, fs.Close, nil

	case config.SourceMongo:
		m, err := NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.Collection, cfg.PollSchedule)
		if err != nil {
			return nil, nil, err
		}
		return m, m.Close, nil

	case config.SourcePostgres:
		if pool == nil {
			return nil, nil, fmt.Errorf("postgres source requires a database pool")
		}
		return NewPostgres(pool, cfg.Collection, cfg.PollSchedule), noop, nil

	case config.SourceAMQP:
		return NewAMQP(cfg.AMQPURL, cfg.AMQPExchange), noop, nil

	default:
		return nil, nil, fmt.Errorf("unknown record source kind %q", cfg.Kind)
	}
}
