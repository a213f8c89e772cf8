package source

import (
	"context"
	"slices"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
)

// Static emits a fixed record list once.
type Static struct {
	records []core.Record
}

// NewStatic creates a source for records.
func NewStatic(records []core.Record) *Static {
	return &Static{records: slices.Clone(records)}
}

func (s *Static) Name() string { return "static" }

func (s *Static) Subscribe(ctx context.Context, h Handler) (*Subscription, error) {
	return start(ctx, s.Name(), func(ctx context.Context) {
		emit(ctx, s.Name(), h, slices.Clone(s.records))
		<-ctx.Done()
	}), nil
}
