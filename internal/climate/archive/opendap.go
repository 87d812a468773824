package archive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/sony/gobreaker"

	"github.com/i474232898/merra-climatology/internal/climate"
)

// defaultMaxBytes caps a single granule download. A full-day single-variable
// subset of a MERRA-2 2-D collection is about 20 MB.
const defaultMaxBytes = 256 << 20

// OPeNDAPSampler implements climate.Sampler against a Hyrax OPeNDAP server.
// It asks for a NetCDF4 subset holding only the variable and its lat/lon axes,
// then decodes it locally.
type OPeNDAPSampler struct {
	name     string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	tmpDir   string
	maxBytes int64
}

// breakerSettings sizes the half-open trial budget to the per-window fetch
// limit so no year of a window is turned away while the archive recovers.
func breakerSettings(concurrency int) gobreaker.Settings {
	if concurrency <= 0 {
		concurrency = 1
	}
	return gobreaker.Settings{
		Name:         "merra2-opendap",
		MaxRequests:  uint32(concurrency),
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: breakerSuccess,
	}
}

// NewOPeNDAPSampler creates a sampler sharing client across all fetches.
// concurrency is the per-window fetch limit.
func NewOPeNDAPSampler(client *http.Client, backoff BackoffConfig, concurrency int) *OPeNDAPSampler {
	cb := gobreaker.NewCircuitBreaker(breakerSettings(concurrency))

	return &OPeNDAPSampler{
		name: "merra2-opendap",
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit:  cb,
		tmpDir:   os.TempDir(),
		maxBytes: defaultMaxBytes,
	}
}

func (p *OPeNDAPSampler) Name() string {
	return p.name
}

// SubsetURL is the NetCDF4 response URL for variableID plus its coordinates.
func SubsetURL(loc climate.Location, variableID string) string {
	return fmt.Sprintf("%s.nc4?%s,lat,lon", loc.URL, variableID)
}

// Sample implements climate.Sampler. Every failure comes back as *climate.UnavailableError.
func (p *OPeNDAPSampler) Sample(ctx context.Context, loc climate.Location, variableID string, pt climate.GridPoint) (climate.HourlySeries, error) {
	s, err := p.sample(ctx, loc, variableID, pt)
	if err != nil {
		return climate.HourlySeries{}, climate.Unavailable(loc, err)
	}
	return s, nil
}

func (p *OPeNDAPSampler) sample(ctx context.Context, loc climate.Location, variableID string, pt climate.GridPoint) (climate.HourlySeries, error) {
	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, SubsetURL(loc, variableID), nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return climate.HourlySeries{}, err
	}
	defer resp.Body.Close()

	path, err := p.spool(resp.Body)
	if path != "" {
		defer os.Remove(path)
	}
	if err != nil {
		return climate.HourlySeries{}, err
	}

	return decodeGranule(path, variableID, pt)
}

// spool writes the body to a temporary file; the NetCDF reader needs a path.
func (p *OPeNDAPSampler) spool(body io.Reader) (string, error) {
	f, err := os.CreateTemp(p.tmpDir, "merra2-*.nc4")
	if err != nil {
		return "", err
	}
	path := f.Name()

	n, err := io.Copy(f, io.LimitReader(body, p.maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return path, fmt.Errorf("download: %w", err)
	}
	if n > p.maxBytes {
		return path, fmt.Errorf("granule exceeds %d bytes", p.maxBytes)
	}
	return path, nil
}

// decodeGranule opens a NetCDF4 file and reads the series at the cell nearest pt.
func decodeGranule(path, variableID string, pt climate.GridPoint) (s climate.HourlySeries, err error) {
	// The decoder is third-party; a malformed file must not take the process down.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode %s: %v", path, r)
		}
	}()

	nc, err := netcdf.Open(path)
	if err != nil {
		return s, fmt.Errorf("open: %w", err)
	}
	defer nc.Close()

	lats, err := axis(nc, "lat")
	if err != nil {
		return s, err
	}
	lons, err := axis(nc, "lon")
	if err != nil {
		return s, err
	}
	i, j, err := nearestCell(lats, lons, pt)
	if err != nil {
		return s, err
	}

	vg, err := nc.GetVarGetter(variableID)
	if err != nil {
		return s, fmt.Errorf("variable %s: %w", variableID, err)
	}
	if vg.Len() < climate.HoursPerDay {
		return s, fmt.Errorf("%w: got %d", errShortSeries, vg.Len())
	}
	data, err := vg.GetSlice(0, climate.HoursPerDay)
	if err != nil {
		return s, fmt.Errorf("variable %s: %w", variableID, err)
	}
	return seriesAt(data, i, j)
}

// axis reads a 1-D coordinate variable as float64.
func axis(nc api.Group, name string) ([]float64, error) {
	vg, err := nc.GetVarGetter(name)
	if err != nil {
		return nil, fmt.Errorf("axis %s: %w", name, err)
	}
	v, err := vg.Values()
	if err != nil {
		return nil, fmt.Errorf("axis %s: %w", name, err)
	}
	return coordValues(v)
}
