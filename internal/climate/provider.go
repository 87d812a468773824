package climate

import (
	"context"
	"time"
)

// Sampler reads a 24-hour series for one variable at the grid cell nearest to
// pt from the granule at loc. Every failure must satisfy
// errors.Is(err, ErrUnavailable); a returned series is always complete.
type Sampler interface {
	Sample(ctx context.Context, loc Location, variableID string, pt GridPoint) (HourlySeries, error)
}

// SamplerFunc adapts a plain function to Sampler.
type SamplerFunc func(ctx context.Context, loc Location, variableID string, pt GridPoint) (HourlySeries, error)

func (f SamplerFunc) Sample(ctx context.Context, loc Location, variableID string, pt GridPoint) (HourlySeries, error) {
	return f(ctx, loc, variableID, pt)
}

// ProbeStore is the contract the in-memory store (and any future persistent store) must satisfy.
type ProbeStore interface {
	SaveProbe(result ProbeResult)
	GetLatest() (ProbeResult, error)
	GetRange(from, to time.Time) ([]ProbeResult, error)
}
