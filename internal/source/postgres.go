package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

// NewPostgres polls a table of JSON documents:
//
//	CREATE TABLE cars (id TEXT PRIMARY KEY, doc JSONB NOT NULL);
//
// Postgres has no push notifications for arbitrary row changes here, so the
// table is re-read on schedule and emitted when its content changes.
func NewPostgres(pool *pgxpool.Pool, table, schedule string) *Poller {
	query := fmt.Sprintf(`SELECT id::text, doc::text FROM %s ORDER BY id`, pgx.Identifier{table}.Sanitize())

	return NewPoller("postgres", schedule, func(ctx context.Context) ([]core.Record, error) {
		rows, err := pool.Query(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		defer rows.Close()

		records := []core.Record{}
		for rows.Next() {
			var id, doc string
			if err := rows.Scan(&id, &doc); err != nil {
				return nil, fmt.Errorf("scan %s: %w", table, err)
			}

			var r core.Record
			if err := r.UnmarshalJSON([]byte(doc)); err != nil {
				return nil, fmt.Errorf("row %s: %w", id, err)
			}
			r.ID = id
			records = append(records, r)
		}
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("read %s: %w", table, err)
		}
		return records, nil
	})
}
