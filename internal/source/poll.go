package source

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/robfig/cron/v3"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// FetchFunc loads the complete record list.
type FetchFunc func(ctx context.Context) ([]core.Record, error)

// Poller turns a FetchFunc into a source by re-fetching on a cron schedule
// and emitting only when the content changed.
type Poller struct {
	name     string
	schedule string
	fetch    FetchFunc
}

// NewPoller creates a polling source. schedule is a cron spec such as
// "@every 30s" or "*/5 * * * *".
func NewPoller(name, schedule string, fetch FetchFunc) *Poller {
	return &Poller{name: name, schedule: schedule, fetch: fetch}
}

func (p *Poller) Name() string { return p.name }

func (p *Poller) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	sched, err := parseSchedule(p.schedule)
	if err != nil {
		return nil, err
	}

	records, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: initial fetch: %w", p.name, err)
	}

	return start(ctx, p.name, func(ctx context.Context) {
		emit(ctx, p.name, h, records)
		p.loop(ctx, sched, Fingerprint(records), h)
	}), nil
}

// parseSchedule accepts standard five-field cron specs and descriptors
// such as "@hourly" or "@every 30s".
func parseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	return sched, nil
}

// loop re-fetches on every tick of sched until ctx is canceled.
func (p *Poller) loop(ctx context.Context, sched cron.Schedule, last uint64, h Handler) {
	logger := logging.WithFields(ctx, "schedule", p.schedule)

	// cron runs jobs on its own goroutines; ticks are funneled back here so
	// the handler only ever runs on the subscription goroutine.
	ticks := make(chan struct{}, 1)
	c := cron.New()
	c.Schedule(sched, cron.FuncJob(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	}))
	c.Start()
	defer c.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			records, err := p.fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				sourceErrors.WithLabelValues(p.name).Inc()
				logger.Warn("poll failed, keeping previous snapshot", "error", err)
				continue
			}
			fp := Fingerprint(records)
			if fp == last {
				continue
			}
			last = fp
			logger.Debug("dataset changed", "records", len(records))
			emit(ctx, p.name, h, records)
		}
	}
}

// Fingerprint hashes a snapshot's IDs, field names and values in order.
func Fingerprint(records []core.Record) uint64 {
	d := xxhash.New()
	d.WriteString(strconv.Itoa(len(records)))
	for _, r := range records {
		d.WriteString("\x1e")
		d.WriteString(r.ID)
		for _, f := range r.Fields() {
			d.WriteString("\x1f")
			d.WriteString(f.Name)
			d.WriteString("\x1d")
			d.WriteString(strconv.Itoa(int(f.Value.Kind())))
			d.WriteString(f.Value.String())
		}
	}
	return d.Sum64()
}
