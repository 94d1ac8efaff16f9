package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-now/internal/weather"
)

// BreakerConfig controls the circuit breaker in front of the provider.
type BreakerConfig struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// Failures is the number of consecutive failures that opens the circuit.
	Failures uint32
}

// HTTPClientConfig bundles the HTTP client and its guards.
type HTTPClientConfig struct {
	Client  *http.Client
	Breaker BreakerConfig
	// RatePerSecond limits outgoing calls; zero disables limiting.
	RatePerSecond float64
	Burst         int
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errCircuitOpen  = errors.New("circuit breaker open")
)

// statusError carries a non-2xx status out of the breaker.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func newBreaker(name string, cfg BreakerConfig) *gobreaker.CircuitBreaker {
	failures := cfg.Failures
	if failures == 0 {
		failures = 5
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= failures
		},
		// Client errors are the caller's fault, not the provider's.
		IsSuccessful: func(err error) bool {
			var se *statusError
			if errors.As(err, &se) {
				return se.code < 500
			}
			return err == nil
		},
	})
}

func newLimiter(cfg HTTPClientConfig) *rate.Limiter {
	if cfg.RatePerSecond <= 0 {
		return nil
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
}

// doSingleRequest executes exactly one HTTP attempt through the breaker and
// classifies the result. The returned response always has a 2xx status.
func doSingleRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	limiter *rate.Limiter,
	req *http.Request,
) (*http.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &weather.ClientError{Kind: weather.FailureTransport, Reason: "rate limit: " + err.Error()}
		}
	}

	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, &statusError{code: resp.StatusCode}
		}
		return resp, nil
	})

	if err == nil {
		resp, ok := result.(*http.Response)
		if !ok {
			return nil, &weather.ClientError{Kind: weather.FailureGenericServerError, Reason: "unexpected result type from circuit breaker"}
		}
		return resp, nil
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var se *statusError
	switch {
	case errors.As(err, &se):
		return nil, &weather.ClientError{
			Kind:       weather.ClassifyStatus(se.code),
			StatusCode: se.code,
			Reason:     http.StatusText(se.code),
		}
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, &weather.ClientError{Kind: weather.FailureTransport, Reason: fmt.Sprintf("%v: %v", errCircuitOpen, err)}
	default:
		return nil, &weather.ClientError{Kind: weather.FailureTransport, Reason: err.Error()}
	}
}
