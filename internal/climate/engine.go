package climate

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// EngineConfig controls the year windows and the per-year fetch pool.
type EngineConfig struct {
	// Baseline is the long-run climatology window.
	Baseline YearWindow

	// RecentYears is the number of years before the current one used for the anomaly.
	RecentYears int

	// Concurrency bounds in-flight fetches per window.
	Concurrency int

	// FetchTimeout applies to each fetch individually (0 = none).
	FetchTimeout time.Duration
}

// DefaultEngineConfig returns the 1995-2024 baseline with a 5-year recent window.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Baseline:     YearWindow{First: 1995, Last: 2024},
		RecentYears:  5,
		Concurrency:  8,
		FetchTimeout: 60 * time.Second,
	}
}

// Engine computes baseline and anomaly profiles from per-year samples.
type Engine struct {
	sampler  Sampler
	resolver Resolver
	cfg      EngineConfig
}

// NewEngine creates an Engine. A non-positive concurrency is treated as 1.
func NewEngine(sampler Sampler, resolver Resolver, cfg EngineConfig) *Engine {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Engine{
		sampler:  sampler,
		resolver: resolver,
		cfg:      cfg,
	}
}

// Baseline averages the hourly series of every available year in the baseline window.
func (e *Engine) Baseline(ctx context.Context, v Variable, pt GridPoint, key DateKey) (Profile, error) {
	return e.collect(ctx, v, pt, key, e.cfg.Baseline.Years(), func(acc *accumulator, s HourlySeries) {
		acc.add(s)
	})
}

// Anomaly averages the deviation from baseline over the RecentYears years before now.
func (e *Engine) Anomaly(ctx context.Context, v Variable, pt GridPoint, key DateKey, baseline HourlySeries, now time.Time) (Profile, error) {
	years := RecentWindow(now, e.cfg.RecentYears).Years()
	return e.collect(ctx, v, pt, key, years, func(acc *accumulator, s HourlySeries) {
		acc.addDeviation(s, baseline)
	})
}

// collect samples every year concurrently and folds available samples into an
// accumulator. Unavailable years are skipped; only cancellation of ctx is an error.
func (e *Engine) collect(
	ctx context.Context,
	v Variable,
	pt GridPoint,
	key DateKey,
	years []int,
	add func(*accumulator, HourlySeries),
) (Profile, error) {
	var (
		mu  sync.Mutex
		acc = accumulator{attempted: len(years)}
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for _, year := range years {
		if gCtx.Err() != nil {
			break
		}
		loc := e.resolver.Locate(v.Family, year, int(key.Month), key.Day)

		g.Go(func() error {
			fetchCtx := gCtx
			if e.cfg.FetchTimeout > 0 {
				var cancel context.CancelFunc
				fetchCtx, cancel = context.WithTimeout(gCtx, e.cfg.FetchTimeout)
				defer cancel()
			}

			s, err := e.sampler.Sample(fetchCtx, loc, v.ID, pt)
			if err != nil {
				// Skip the year; the others still count.
				log.Printf("DEBUG: %s %d unavailable at %s: %v", v.ID, loc.Year, pt, err)
				return nil
			}

			mu.Lock()
			add(&acc, s)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	return acc.profile(), nil
}
