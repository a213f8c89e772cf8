// Package source provides record sources: collaborators that emit the full
// vehicle list on subscribe and again on every change.
//
// Every source delivers snapshots from a single goroutine, so a handler is
// never invoked concurrently with itself. Unsubscribe blocks until that
// goroutine has exited; no handler runs after it returns.
package source

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// Handler receives a complete snapshot. The slice is owned by the handler.
type Handler func(ctx context.Context, records []core.Record)

// Source emits record snapshots to a subscriber.
type Source interface {
	// Subscribe starts delivery. Setup failures (bad path, unreachable
	// server) are returned here; later failures are logged and the last
	// snapshot stays in place.
	Subscribe(ctx context.Context, h Handler) (*Subscription, error)

	// Name identifies the source in logs and metrics.
	Name() string
}

var (
	snapshotsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardb",
		Name:      "source_snapshots_total",
		Help:      "Snapshots delivered by each record source.",
	}, []string{"source"})

	sourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cardb",
		Name:      "source_errors_total",
		Help:      "Record source failures after subscribe.",
	}, []string{"source"})
)

// Subscription is a running delivery loop.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// start runs loop on its own goroutine under a cancelable child of parent.
// The loop's context carries a logger tagged with the source name, so
// handlers log with it too.
func start(parent context.Context, name string, loop func(ctx context.Context)) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	ctx = logging.WithLogger(ctx, logging.FromContext(ctx).With("source", name))
	s := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(s.done)
		loop(ctx)
	}()

	return s
}

// Unsubscribe stops delivery and waits for the loop to exit.
// Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
	<-s.done
}

// Done is closed once the delivery loop has exited, either after
// Unsubscribe or because the source ended on its own.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// emit delivers a snapshot unless ctx is already canceled.
func emit(ctx context.Context, name string, h Handler, records []core.Record) {
	if ctx.Err() != nil {
		return
	}
	snapshotsEmitted.WithLabelValues(name).Inc()
	h(ctx, records)
}
