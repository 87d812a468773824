package climate

import (
	"errors"
	"fmt"
	"time"
)

// HoursPerDay is the length of every hourly series moved through the pipeline.
const HoursPerDay = 24

// HourlySeries holds one value per hour of day, 00:00 to 23:00.
type HourlySeries [HoursPerDay]float64

// Slice returns the series as a slice, convenient for JSON encoding.
func (s HourlySeries) Slice() []float64 {
	out := make([]float64, HoursPerDay)
	copy(out, s[:])
	return out
}

// GridPoint is a caller-supplied coordinate. Ranges are checked at the HTTP boundary only.
type GridPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func (p GridPoint) String() string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lon)
}

// DateKey is the day-of-year part of a requested date. The year is dropped on purpose.
type DateKey struct {
	Month time.Month
	Day   int
}

// KeyOf extracts the month and day from t.
func KeyOf(t time.Time) DateKey {
	return DateKey{Month: t.Month(), Day: t.Day()}
}

// YearWindow is an inclusive range of years.
type YearWindow struct {
	First int
	Last  int
}

// Years lists the window's years in ascending order.
func (w YearWindow) Years() []int {
	if w.Last < w.First {
		return nil
	}
	years := make([]int, 0, w.Last-w.First+1)
	for y := w.First; y <= w.Last; y++ {
		years = append(years, y)
	}
	return years
}

// RecentWindow returns the n years immediately preceding now's year.
func RecentWindow(now time.Time, n int) YearWindow {
	current := now.Year()
	return YearWindow{First: current - n, Last: current - 1}
}

// Profile is an averaged hourly series together with how many years fed it.
// Years == 0 means no data was available and Series is all zeros.
type Profile struct {
	Series    HourlySeries
	Years     int
	Attempted int
}

// Available reports whether at least one year contributed.
func (p Profile) Available() bool {
	return p.Years > 0
}

// Prediction is the final estimate for one variable.
type Prediction struct {
	Variable      string       `json:"variable"`
	Hourly        HourlySeries `json:"-"`
	BaselineYears int          `json:"baselineYears"`
	AnomalyYears  int          `json:"anomalyYears"`
	Coverage      float64      `json:"coverage"`
}

// Available reports whether the baseline had any data behind it.
func (p Prediction) Available() bool {
	return p.BaselineYears > 0
}

// ProbeResult records one availability check against the remote archive.
type ProbeResult struct {
	Timestamp time.Time     `json:"timestamp"` // always UTC
	Location  string        `json:"location"`
	Available bool          `json:"available"`
	Latency   time.Duration `json:"latencyNs"`
	Error     string        `json:"error,omitempty"`
}

var (
	// ErrUnknownVariable is returned when a variable identifier is not in the catalog.
	ErrUnknownVariable = errors.New("unknown variable")

	// ErrUnavailable classifies every failure to produce a sample.
	ErrUnavailable = errors.New("sample unavailable")
)

// UnavailableError is the single failure outcome of a sampler. Cause keeps the
// underlying network, format or lookup problem for logging.
type UnavailableError struct {
	Location string
	Cause    error
}

func (e *UnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", ErrUnavailable, e.Location)
	}
	return fmt.Sprintf("%s: %s: %v", ErrUnavailable, e.Location, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

// Unavailable wraps cause as an *UnavailableError for loc.
func Unavailable(loc Location, cause error) error {
	return &UnavailableError{Location: loc.URL, Cause: cause}
}
