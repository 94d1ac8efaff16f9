package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/i474232898/weather-now/internal/device"
	"github.com/i474232898/weather-now/internal/weather"
)

const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// requestUnits is fixed: the display symbol is chosen by region, never by the request.
const requestUnits = "metric"

var validate = validator.New()

// OpenWeatherConfig is the provider configuration supplied at construction.
type OpenWeatherConfig struct {
	BaseURL string
	APIKey  string
}

// OpenWeatherClient fetches current weather by coordinates from OpenWeatherMap.
// Every call is a single attempt; there are no retries.
type OpenWeatherClient struct {
	name    string
	cfg     OpenWeatherConfig
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	network device.Reachability
}

var _ weather.Client = (*OpenWeatherClient)(nil)

func NewOpenWeatherClient(cfg OpenWeatherConfig, httpCfg HTTPClientConfig, network device.Reachability) *OpenWeatherClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenWeatherURL
	}
	if network == nil {
		network = device.AlwaysReachable{}
	}

	return &OpenWeatherClient{
		name:    "openweathermap",
		cfg:     cfg,
		httpCfg: httpCfg,
		circuit: newBreaker("openweather", httpCfg.Breaker),
		limiter: newLimiter(httpCfg),
		network: network,
	}
}

func (c *OpenWeatherClient) Name() string {
	return c.name
}

// FetchCurrent returns the raw provider payload for coords. Failures are
// weather.ErrNetworkUnavailable, a *weather.ClientError, or the context error.
func (c *OpenWeatherClient) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.RawWeatherResponse, error) {
	if !c.network.NetworkAvailable(ctx) {
		if err := ctx.Err(); err != nil {
			return weather.RawWeatherResponse{}, err
		}
		return weather.RawWeatherResponse{}, weather.ErrNetworkUnavailable
	}

	req, err := http.NewRequest(http.MethodGet, c.requestURL(coords), nil)
	if err != nil {
		return weather.RawWeatherResponse{}, &weather.ClientError{Kind: weather.FailureBadRequest, Reason: err.Error()}
	}

	slog.Debug("requesting current weather", "provider", c.name, "coords", coords.String())

	resp, err := doSingleRequest(ctx, c.httpCfg, c.circuit, c.limiter, req)
	if err != nil {
		return weather.RawWeatherResponse{}, err
	}
	defer resp.Body.Close()

	var payload weather.RawWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.RawWeatherResponse{}, &weather.ClientError{
			Kind:       weather.FailureGenericServerError,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("decode response: %v", err),
		}
	}
	if err := validate.Struct(payload); err != nil {
		return weather.RawWeatherResponse{}, &weather.ClientError{
			Kind:       weather.FailureGenericServerError,
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("malformed response: %v", err),
		}
	}

	return payload, nil
}

func (c *OpenWeatherClient) requestURL(coords weather.Coordinates) string {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	values.Set("units", requestUnits)
	values.Set("appid", c.cfg.APIKey)

	return fmt.Sprintf("%s?%s", c.cfg.BaseURL, values.Encode())
}
