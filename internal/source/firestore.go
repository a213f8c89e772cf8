package source

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// firestoreRetryDelay is how long to wait before reopening a failed
// snapshot listener.
const firestoreRetryDelay = 5 * time.Second

// Firestore emits a collection through a realtime snapshot listener.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore initializes a Firebase app for projectID and opens its
// Firestore client. credentialsFile may be empty to use application default
// credentials.
func NewFirestore(ctx context.Context, projectID, credentialsFile, collection string) (*Firestore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open firestore: %w", err)
	}

	return &Firestore{client: client, collection: collection}, nil
}

func (f *Firestore) Name() string { return "firestore" }

// Close releases the client.
func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	return start(ctx, f.Name(), func(ctx context.Context) {
		logger := logging.WithFields(ctx, "collection", f.collection)

		for {
			err := f.listen(ctx, h)
			if ctx.Err() != nil {
				return
			}
			sourceErrors.WithLabelValues(f.Name()).Inc()
			logger.Warn("snapshot listener failed, retrying", "error", err, "retry_in", firestoreRetryDelay)

			select {
			case <-ctx.Done():
				return
			case <-time.After(firestoreRetryDelay):
			}
		}
	}), nil
}

// listen delivers one snapshot per change until the listener fails.
func (f *Firestore) listen(ctx context.Context, h Handler) error {
	it := f.client.Collection(f.collection).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			return err
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}

		records := make([]core.Record, len(docs))
		for i, doc := range docs {
			records[i] = FirestoreRecord(doc.Ref.ID, doc.Data())
		}
		emit(ctx, f.Name(), h, records)
	}
}

// FirestoreRecord converts document data into a record identified by the
// document ID. Firestore maps carry no field order, so keys are sorted.
func FirestoreRecord(id string, data map[string]any) core.Record {
	plain := make(map[string]any, len(data))
	for k, v := range data {
		plain[k] = plainFirestore(v)
	}
	return core.RecordFromMap(id, plain)
}

func plainFirestore(v any) any {
	switch x := v.(type) {
	case *firestore.DocumentRef:
		if x == nil {
			return nil
		}
		return x.Path
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = plainFirestore(e)
		}
		return m
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = plainFirestore(e)
		}
		return out
	default:
		return v
	}
}
