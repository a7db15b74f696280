package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/cache"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 4 << 20

// HTTPClientConfig bundles the outbound HTTP client with caching settings.
type HTTPClientConfig struct {
	Client   *http.Client
	Cache    *cache.ResponseCache
	CacheTTL time.Duration
}

var (
	errNoHTTPClient = errors.New("http client not configured")
	errNoCache      = errors.New("response cache not configured")
)

func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing city is the caller's problem, not a sign of an unhealthy provider.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, weather.ErrLocationNotFound)
		},
	})
}

// fetchCached returns the payload for key from the cache, fetching it through
// the circuit breaker on a miss.
func fetchCached(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	key string,
	buildRequest func() (*http.Request, error),
) (json.RawMessage, error) {
	if cfg.Cache == nil {
		return nil, errNoCache
	}
	return cfg.Cache.GetOrFetch(key, func() (json.RawMessage, error) {
		return doRequest(ctx, cfg, cb, buildRequest)
	}, cfg.CacheTTL)
}

// doRequest executes one HTTP request through the circuit breaker and returns
// the body of a successful response. Status codes map onto the weather error
// taxonomy; retrying is the caller's decision.
func doRequest(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	buildRequest func() (*http.Request, error),
) (json.RawMessage, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, fmt.Errorf("%w: %v", weather.ErrUpstream, execErr)
		}
		defer resp.Body.Close()

		if statusErr := statusError(resp.StatusCode); statusErr != nil {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
			return nil, statusErr
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", weather.ErrUpstream, readErr)
		}
		if !json.Valid(body) {
			return nil, fmt.Errorf("%w: response is not JSON", weather.ErrMalformedPayload)
		}
		return json.RawMessage(body), nil
	})
	if err != nil {
		return nil, breakerError(cb, err)
	}

	body, ok := result.(json.RawMessage)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return body, nil
}

// breakerError reports an open breaker as ErrUpstream and passes other errors through.
func breakerError(cb *gobreaker.CircuitBreaker, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: circuit breaker %s: %v", weather.ErrUpstream, cb.Name(), err)
	}
	return err
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return weather.ErrLocationNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return weather.ErrUnauthorized
	case code == http.StatusTooManyRequests:
		return weather.ErrRateLimited
	default:
		return fmt.Errorf("%w: status %d", weather.ErrUpstream, code)
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", weather.ErrMalformedPayload, err)
	}
	return nil
}

func newGetRequest(base string, query string) (*http.Request, error) {
	return http.NewRequest(http.MethodGet, base+"?"+query, nil)
}
