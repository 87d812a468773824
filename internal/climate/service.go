package climate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// ProbeConfig describes the reference sample used to check archive availability.
type ProbeConfig struct {
	Point    GridPoint
	Variable string
	// Lag is how far behind now the probed day is; MERRA-2 publishes with a delay of weeks.
	Lag     time.Duration
	Timeout time.Duration
}

// DefaultProbeConfig probes T2M at 0,0 for the day 45 days ago.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Variable: "T2M",
		Lag:      45 * 24 * time.Hour,
		Timeout:  60 * time.Second,
	}
}

// Service orchestrates predictions for request kinds and archive probes.
type Service struct {
	predictor *Predictor
	sampler   Sampler
	resolver  Resolver
	store     ProbeStore
	probe     ProbeConfig
	now       func() time.Time
}

// NewService creates a new Service.
func NewService(predictor *Predictor, sampler Sampler, resolver Resolver, store ProbeStore, probe ProbeConfig) *Service {
	return &Service{
		predictor: predictor,
		sampler:   sampler,
		resolver:  resolver,
		store:     store,
		probe:     probe,
		now:       predictor.now,
	}
}

// Estimate predicts every known kind concurrently, keyed by response key.
// Kinds outside the fixed set are omitted from the result rather than failing the call.
func (s *Service) Estimate(ctx context.Context, pt GridPoint, date time.Time, kinds []Kind) (map[string]Prediction, error) {
	var (
		mu      sync.Mutex
		results = make(map[string]Prediction, len(kinds))
	)

	g, gCtx := errgroup.WithContext(ctx)
	seen := make(map[string]bool, len(kinds))

	for _, k := range kinds {
		variableID, key, ok := VariableFor(k)
		if !ok {
			log.Printf("DEBUG: ignoring unknown kind %q", k)
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		k := k
		g.Go(func() error {
			p, err := s.predictor.Predict(gCtx, variableID, pt, date)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}

			mu.Lock()
			results[key] = p
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Probe samples the reference point for a recent day and records the outcome.
func (s *Service) Probe(ctx context.Context) ProbeResult {
	day := s.now().UTC().Add(-s.probe.Lag)
	result := ProbeResult{Timestamp: s.now().UTC()}

	v, err := Resolve(s.probe.Variable)
	if err != nil {
		result.Error = err.Error()
		s.store.SaveProbe(result)
		return result
	}

	loc := s.resolver.Locate(v.Family, day.Year(), int(day.Month()), day.Day())
	result.Location = loc.URL

	if s.probe.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.probe.Timeout)
		defer cancel()
	}

	start := time.Now()
	_, err = s.sampler.Sample(ctx, loc, v.ID, s.probe.Point)
	result.Latency = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		if !errors.Is(err, ErrUnavailable) {
			log.Printf("ERROR: sampler returned unclassified error for %s: %v", loc.URL, err)
		}
	} else {
		result.Available = true
	}

	s.store.SaveProbe(result)
	return result
}

// GetLatestProbe delegates to the underlying store.
func (s *Service) GetLatestProbe() (ProbeResult, error) {
	return s.store.GetLatest()
}

// GetProbeRange delegates to the underlying store.
func (s *Service) GetProbeRange(from, to time.Time) ([]ProbeResult, error) {
	return s.store.GetRange(from, to)
}
