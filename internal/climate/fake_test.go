package climate

import (
	"context"
	"errors"
	"sync"
	"time"
)

// fakeSampler answers from a per-year table; missing years are unavailable.
type fakeSampler struct {
	mu     sync.Mutex
	series map[int]HourlySeries
	calls  []Location
}

func newFakeSampler() *fakeSampler {
	return &fakeSampler{series: make(map[int]HourlySeries)}
}

func (f *fakeSampler) set(year int, s HourlySeries) {
	f.series[year] = s
}

func (f *fakeSampler) setRange(first, last int, s HourlySeries) {
	for y := first; y <= last; y++ {
		f.series[y] = s
	}
}

func (f *fakeSampler) Sample(ctx context.Context, loc Location, variableID string, pt GridPoint) (HourlySeries, error) {
	f.mu.Lock()
	f.calls = append(f.calls, loc)
	s, ok := f.series[loc.Year]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return HourlySeries{}, Unavailable(loc, err)
	}
	if !ok {
		return HourlySeries{}, Unavailable(loc, errors.New("no granule"))
	}
	return s, nil
}

func (f *fakeSampler) years() map[int]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[int]bool, len(f.calls))
	for _, c := range f.calls {
		out[c.Year] = true
	}
	return out
}

func constant(v float64) HourlySeries {
	var s HourlySeries
	for i := range s {
		s[i] = v
	}
	return s
}

func ramp(start float64) HourlySeries {
	var s HourlySeries
	for i := range s {
		s[i] = start + float64(i)
	}
	return s
}

func fixedClock(year int) func() time.Time {
	return func() time.Time {
		return time.Date(year, time.June, 1, 12, 0, 0, 0, time.UTC)
	}
}

func testEngine(s Sampler) *Engine {
	cfg := DefaultEngineConfig()
	cfg.Concurrency = 4
	cfg.FetchTimeout = time.Second
	return NewEngine(s, NewResolver("http://archive.test/MERRA2"), cfg)
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

func seriesEqual(a, b HourlySeries) bool {
	for i := range a {
		if !nearlyEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
