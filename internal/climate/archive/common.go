package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff retries twice, starting at half a second.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		MaxRetries:      2,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
}

// HTTPClientConfig bundles HTTP client and resilience settings.
type HTTPClientConfig struct {
	Client  *http.Client
	Backoff BackoffConfig
}

// NewHTTPClient returns a client whose transport allows maxConns parallel
// connections to the archive host.
func NewHTTPClient(maxConns int, timeout time.Duration) *http.Client {
	if maxConns <= 0 {
		maxConns = 1
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        maxConns,
			IdleConnTimeout:     30 * time.Second,
			MaxIdleConnsPerHost: maxConns,
			MaxConnsPerHost:     maxConns,
		},
	}
}

var (
	errNotFound      = errors.New("granule not found")
	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errCircuitOpen   = errors.New("circuit breaker open")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// callerAborted reports whether err is the caller's own cancellation or deadline
// rather than a fault of the archive.
func callerAborted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// breakerSuccess counts caller aborts as successes so that one abandoned request
// cannot open the breaker shared by every other request.
func breakerSuccess(err error) bool {
	return err == nil || callerAborted(err)
}

// retryable reports whether another attempt may succeed.
func retryable(err error) bool {
	return !errors.Is(err, errNotFound) && !errors.Is(err, errUnexpected)
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}

// doRequestWithResilience executes the HTTP request with retries, exponential backoff,
// and a circuit breaker. A missing granule is returned as errNotFound right away
// and does not count against the breaker: gaps in the archive are expected.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 || cfg.Backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	var lastErr error

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}

		// Ensure the request obeys context cancellation.
		req = req.WithContext(ctx)

		var missing bool
		result, err := cb.Execute(func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, execErr
			}

			switch {
			case resp.StatusCode == http.StatusNotFound:
				discard(resp)
				missing = true
				return nil, nil
			case resp.StatusCode == http.StatusTooManyRequests:
				discard(resp)
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				discard(resp)
				return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
			case resp.StatusCode < 200 || resp.StatusCode >= 300:
				discard(resp)
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}

			return resp, nil
		})

		if err == nil {
			if missing {
				return nil, fmt.Errorf("%w: %s", errNotFound, req.URL.Path)
			}
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err
		if !retryable(err) || attempt >= cfg.Backoff.MaxRetries {
			return nil, lastErr
		}

		// Backoff with exponential delay.
		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// continue to next attempt
		}

		attempt++
	}
}
