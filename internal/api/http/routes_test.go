package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/merra-climatology/internal/climate"
	"github.com/i474232898/merra-climatology/internal/store"
)

// constantSampler returns the same value for every year, or nothing at all when empty is set.
func constantSampler(v float64, empty bool) climate.Sampler {
	return climate.SamplerFunc(func(ctx context.Context, loc climate.Location, variableID string, pt climate.GridPoint) (climate.HourlySeries, error) {
		if empty {
			return climate.HourlySeries{}, climate.Unavailable(loc, errors.New("missing"))
		}
		var s climate.HourlySeries
		for i := range s {
			s[i] = v
		}
		return s, nil
	})
}

func newTestApp(sampler climate.Sampler) (*fiber.App, *climate.Service) {
	resolver := climate.NewResolver("http://archive.test")
	engine := climate.NewEngine(sampler, resolver, climate.DefaultEngineConfig())
	now := func() time.Time { return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC) }
	predictor := climate.NewPredictor(engine, now)
	svc := climate.NewService(predictor, sampler, resolver, store.NewMemoryStore(10, time.Hour), climate.DefaultProbeConfig())

	app := fiber.New()
	RegisterRoutes(app, svc)
	return app, svc
}

func post(t *testing.T, app *fiber.App, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

// TestEstimateValidation verifies that malformed estimate requests are rejected.
func TestEstimateValidation(t *testing.T) {
	app, _ := newTestApp(constantSampler(1, false))

	bodies := []string{
		`{"lat": 10, "lon": 10, "types": ["Temperature"]}`,
		`{"lat": 10, "lon": 10, "date": "07/04/2030", "types": ["Temperature"]}`,
		`{"lat": 95, "lon": 10, "date": "2030-07-04", "types": ["Temperature"]}`,
		`{"lat": 10, "lon": 10, "date": "2030-07-04", "types": []}`,
		`not json`,
	}
	for _, b := range bodies {
		resp := post(t, app, "/get_weather", b)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("body %s: expected status %d, got %d", b, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestGetWeather(t *testing.T) {
	app, _ := newTestApp(constantSampler(10, false))

	resp := post(t, app, "/get_weather", `{"lat": 48.85, "lon": 2.35, "date": "2030-07-04", "types": ["Temperature", "Vulcanism", "Rainfall"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var out map[string][]float64
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected temperature and rainfall only, got %v", out)
	}
	temp := out["temperature"]
	if len(temp) != 24 || math.Abs(temp[0]-(10-273.15)) > 1e-9 {
		t.Fatalf("unexpected temperature %v", temp)
	}
	rain := out["rainfall"]
	if len(rain) != 24 || math.Abs(rain[23]-36000) > 1e-6 {
		t.Fatalf("unexpected rainfall %v", rain)
	}
}

func TestGetWeatherNoDataIsNull(t *testing.T) {
	app, _ := newTestApp(constantSampler(0, true))

	resp := post(t, app, "/get_weather", `{"lat": 0, "lon": 0, "date": "2030-01-01", "types": ["Dust"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var out map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(out["dust"]) != "null" {
		t.Fatalf("expected null dust, got %s", out["dust"])
	}
}

func TestEstimateV1(t *testing.T) {
	app, _ := newTestApp(constantSampler(5, false))

	resp := post(t, app, "/api/v1/estimate", `{"lat": -33.9, "lon": 151.2, "date": "2027-12-25", "types": ["Wind"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var out struct {
		Results map[string]struct {
			Variable      string    `json:"variable"`
			Hourly        []float64 `json:"hourly"`
			BaselineYears int       `json:"baselineYears"`
			AnomalyYears  int       `json:"anomalyYears"`
			Coverage      float64   `json:"coverage"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	wind, ok := out.Results["wind"]
	if !ok {
		t.Fatalf("missing wind result: %+v", out)
	}
	if wind.Variable != "V50M" || len(wind.Hourly) != 24 || wind.Hourly[0] != 5 {
		t.Fatalf("unexpected wind result %+v", wind)
	}
	if wind.BaselineYears != 30 || wind.AnomalyYears != 5 || wind.Coverage != 1 {
		t.Fatalf("unexpected coverage %+v", wind)
	}
}

func TestVariables(t *testing.T) {
	app, _ := newTestApp(constantSampler(0, true))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/variables", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out struct {
		Variables []climate.Variable `json:"variables"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Variables) != 6 {
		t.Fatalf("expected 6 variables, got %d", len(out.Variables))
	}
}

func TestArchiveStatus(t *testing.T) {
	app, svc := newTestApp(constantSampler(280, false))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/archive/status", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d before any probe, got %d", http.StatusNotFound, resp.StatusCode)
	}

	svc.Probe(context.Background())

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/archive/status", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var latest climate.ProbeResult
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !latest.Available {
		t.Fatalf("expected available probe, got %+v", latest)
	}
}

// TestArchiveHistoryValidation verifies that the history endpoint requires an ordered range.
func TestArchiveHistoryValidation(t *testing.T) {
	app, _ := newTestApp(constantSampler(0, true))

	// Missing range should return 400.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/archive/history", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// Reversed range should also return 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/archive/history?from=2000&to=1000", nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}
