package intent

import (
	"context"
	"time"

	"github.com/wayfarer-ai/wayfarer/libs/travel-engine/internal/query"
)

// Static is an extractor that always returns the default skeleton. Used when
// no provider credentials are configured, so the pipeline still runs on the
// raw message embedding alone.
type Static struct{}

// NewStatic creates a static extractor.
func NewStatic() *Static {
	return &Static{}
}

// Extract returns the default analysis skeleton.
func (s *Static) Extract(_ context.Context, _ string, _ time.Time) (*query.RawAnalysis, error) {
	return query.DefaultRaw(), nil
}
