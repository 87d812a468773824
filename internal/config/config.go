package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/merra-climatology/internal/climate"
)

type AppConfig struct {
	// ArchiveBaseURL is the OPeNDAP root holding the MERRA-2 collections.
	ArchiveBaseURL string

	// Per-year fetch pool.
	FetchConcurrency int
	FetchTimeout     time.Duration
	FetchMaxRetries  int

	// Year windows.
	Baseline    climate.YearWindow
	RecentYears int

	// Archive probe.
	ProbeInterval time.Duration
	ProbePoint    climate.GridPoint

	// In-memory probe history retention.
	StoreMaxHistory int           // max number of probe results (0 = unlimited)
	StoreMaxAge     time.Duration // max age of probe results (0 = unlimited)

	CORSAllowOrigins string
	Port             string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.ArchiveBaseURL = getenvDefault("ARCHIVE_BASE_URL", climate.DefaultArchiveRoot)

	cfg.FetchConcurrency = getenvInt("FETCH_CONCURRENCY", 8)
	if cfg.FetchConcurrency <= 0 {
		return nil, fmt.Errorf("invalid FETCH_CONCURRENCY: must be positive")
	}
	cfg.FetchMaxRetries = getenvInt("FETCH_MAX_RETRIES", 2)
	if cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("invalid FETCH_MAX_RETRIES: must not be negative")
	}

	timeout, err := time.ParseDuration(getenvDefault("FETCH_TIMEOUT", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT: %w", err)
	}
	cfg.FetchTimeout = timeout

	cfg.Baseline = climate.YearWindow{
		First: getenvInt("BASELINE_FIRST_YEAR", 1995),
		Last:  getenvInt("BASELINE_LAST_YEAR", 2024),
	}
	if cfg.Baseline.Last < cfg.Baseline.First {
		return nil, fmt.Errorf("invalid baseline window %d-%d", cfg.Baseline.First, cfg.Baseline.Last)
	}
	cfg.RecentYears = getenvInt("RECENT_YEARS", 5)
	if cfg.RecentYears < 0 {
		return nil, fmt.Errorf("invalid RECENT_YEARS: must not be negative")
	}

	// Probe interval: default one hour; "0" disables probing.
	interval, err := time.ParseDuration(getenvDefault("PROBE_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROBE_INTERVAL: %w", err)
	}
	cfg.ProbeInterval = interval

	cfg.ProbePoint.Lat, err = getenvFloat("PROBE_LAT", 0)
	if err != nil {
		return nil, err
	}
	cfg.ProbePoint.Lon, err = getenvFloat("PROBE_LON", 0)
	if err != nil {
		return nil, err
	}

	// Store retention.
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", 168) // a week of hourly probes

	maxAge, err := time.ParseDuration(getenvDefault("STORE_MAX_AGE", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid STORE_MAX_AGE: %w", err)
	}
	cfg.StoreMaxAge = maxAge

	cfg.CORSAllowOrigins = strings.TrimSpace(getenvDefault("CORS_ALLOW_ORIGINS", "*"))
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// EngineConfig projects the fetch and window settings for the climate engine.
func (c *AppConfig) EngineConfig() climate.EngineConfig {
	return climate.EngineConfig{
		Baseline:     c.Baseline,
		RecentYears:  c.RecentYears,
		Concurrency:  c.FetchConcurrency,
		FetchTimeout: c.FetchTimeout,
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
