package archive

import (
	"errors"
	"fmt"
	"math"

	"github.com/i474232898/merra-climatology/internal/climate"
	"github.com/i474232898/merra-climatology/internal/common"
)

var (
	errEmptyAxis   = errors.New("empty coordinate axis")
	errShortSeries = errors.New("fewer than 24 time steps")
	errOutOfGrid   = errors.New("cell index outside variable grid")
)

// coordValues converts a decoded 1-D coordinate variable to float64.
func coordValues(v interface{}) ([]float64, error) {
	switch c := v.(type) {
	case []float64:
		return c, nil
	case []float32:
		out := make([]float64, len(c))
		for i, x := range c {
			out[i] = float64(x)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported coordinate type %T", v)
	}
}

// nearestIndex returns the index of the axis value closest to x.
// Ties resolve to the lowest index.
func nearestIndex(axis []float64, x float64) (int, error) {
	if len(axis) == 0 {
		return 0, errEmptyAxis
	}
	best, bestDist := 0, math.Inf(1)
	for i, a := range axis {
		if d := math.Abs(a - x); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// nearestCell picks the grid cell nearest pt. The requested longitude is
// wrapped onto the convention the grid uses (-180..180 or 0..360).
func nearestCell(lats, lons []float64, pt climate.GridPoint) (int, int, error) {
	i, err := nearestIndex(lats, pt.Lat)
	if err != nil {
		return 0, 0, fmt.Errorf("lat: %w", err)
	}

	lon := common.WrapLon180(pt.Lon)
	if len(lons) > 0 && lons[len(lons)-1] > 180 {
		lon = common.WrapLon360(pt.Lon)
	}
	j, err := nearestIndex(lons, lon)
	if err != nil {
		return 0, 0, fmt.Errorf("lon: %w", err)
	}
	return i, j, nil
}

// seriesAt reads the first 24 time steps at cell (i, j) of a decoded
// [time][lat][lon] variable.
func seriesAt(v interface{}, i, j int) (climate.HourlySeries, error) {
	switch data := v.(type) {
	case [][][]float32:
		return pick(data, i, j, func(x float32) float64 { return float64(x) })
	case [][][]float64:
		return pick(data, i, j, func(x float64) float64 { return x })
	default:
		return climate.HourlySeries{}, fmt.Errorf("unsupported variable type %T", v)
	}
}

func pick[T float32 | float64](data [][][]T, i, j int, conv func(T) float64) (climate.HourlySeries, error) {
	var s climate.HourlySeries
	if len(data) < climate.HoursPerDay {
		return s, fmt.Errorf("%w: got %d", errShortSeries, len(data))
	}
	for t := 0; t < climate.HoursPerDay; t++ {
		if i < 0 || i >= len(data[t]) || j < 0 || j >= len(data[t][i]) {
			return s, fmt.Errorf("%w: (%d, %d) at step %d", errOutOfGrid, i, j, t)
		}
		s[t] = conv(data[t][i][j])
	}
	return s, nil
}
