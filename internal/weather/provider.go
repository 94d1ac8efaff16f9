package weather

import "context"

// Client abstracts a current-weather source queried by coordinates.
type Client interface {
	FetchCurrent(ctx context.Context, coords Coordinates) (RawWeatherResponse, error)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, coords Coordinates) (RawWeatherResponse, error)

func (f ClientFunc) FetchCurrent(ctx context.Context, coords Coordinates) (RawWeatherResponse, error) {
	return f(ctx, coords)
}
