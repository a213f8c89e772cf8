package source

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// Mongo emits a MongoDB collection. Changes are picked up from a change
// stream; deployments without one (standalone servers) fall back to polling.
type Mongo struct {
	client     *mongo.Client
	coll       *mongo.Collection
	collection string
	schedule   string
}

// NewMongo connects to uri and verifies the connection.
func NewMongo(ctx context.Context, uri, database, collection, schedule string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{
		client:     client,
		coll:       client.Database(database).Collection(collection),
		collection: collection,
		schedule:   schedule,
	}, nil
}

func (m *Mongo) Name() string { return "mongo" }

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	records, err := m.fetch(ctx)
	if err != nil {
		return nil, err
	}

	return start(ctx, m.Name(), func(ctx context.Context) {
		emit(ctx, m.Name(), h, records)

		logger := logging.WithFields(ctx, "collection", m.collection)
		if err := m.watch(ctx, h); err != nil && ctx.Err() == nil {
			sourceErrors.WithLabelValues(m.Name()).Inc()
			logger.Warn("change stream unavailable, polling instead", "error", err)

			poller := NewPoller(m.Name(), m.schedule, m.fetch)
			sched, perr := parseSchedule(m.schedule)
			if perr != nil {
				logger.Error("cannot poll", "error", perr)
				<-ctx.Done()
				return
			}
			poller.loop(ctx, sched, Fingerprint(records), h)
		}
	}), nil
}

// watch re-reads the collection after every change event until ctx ends or
// the stream fails.
func (m *Mongo) watch(ctx context.Context, h Handler) error {
	stream, err := m.coll.Watch(ctx, mongo.Pipeline{})
	if err != nil {
		return err
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		// Drain events already queued so a burst triggers one re-read.
		for stream.RemainingBatchLength() > 0 && stream.Next(ctx) {
		}
		records, err := m.fetch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		emit(ctx, m.Name(), h, records)
	}
	if ctx.Err() != nil {
		return nil
	}
	return stream.Err()
}

func (m *Mongo) fetch(ctx context.Context) ([]core.Record, error) {
	cursor, err := m.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", m.collection, err)
	}

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read %s: %w", m.collection, err)
	}

	records := make([]core.Record, len(docs))
	for i, d := range docs {
		records[i] = DocumentRecord(d)
	}
	return records, nil
}

// DocumentRecord converts a BSON document into a record, keeping field
// order. The _id field becomes the record ID.
func DocumentRecord(d bson.D) core.Record {
	var id string
	fields := make([]core.Field, 0, len(d))
	for _, e := range d {
		if e.Key == "_id" {
			id = bsonID(e.Value)
			continue
		}
		fields = append(fields, core.Field{Name: e.Key, Value: core.ValueOf(plainBSON(e.Value))})
	}
	return core.NewRecord(id, fields...)
}

func bsonID(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return core.ValueOf(plainBSON(v)).String()
	}
}

// plainBSON converts driver-specific types into plain Go values.
func plainBSON(v any) any {
	switch x := v.(type) {
	case bson.ObjectID:
		return x.Hex()
	case bson.DateTime:
		return x.Time()
	case bson.Decimal128:
		if f, err := strconv.ParseFloat(x.String(), 64); err == nil {
			return f
		}
		return x.String()
	case bson.D:
		m := make(map[string]any, len(x))
		for _, e := range x {
			m[e.Key] = plainBSON(e.Value)
		}
		return m
	case bson.M:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plainBSON(e)
		}
		return m
	case bson.A:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainBSON(e)
		}
		return out
	case bson.Null, bson.Undefined:
		return nil
	default:
		return v
	}
}
