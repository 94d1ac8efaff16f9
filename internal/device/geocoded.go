package device

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-now/internal/weather"
)

// GeocodedPosition serves a configured city as the last-known position.
// The address is geocoded once, on first use, and the result is cached for
// the lifetime of the process like an OS location cache would be.
type GeocodedPosition struct {
	City    string
	Country string

	once   sync.Once
	coords *weather.Coordinates
	err    error

	geocode func(geocoder.Address) (geocoder.Location, error)
}

// NewGeocodedPosition configures the Google geocoding key and returns a source
// for the given city.
func NewGeocodedPosition(apiKey, city, country string) *GeocodedPosition {
	geocoder.ApiKey = apiKey
	return &GeocodedPosition{
		City:    city,
		Country: country,
		geocode: geocoder.Geocoding,
	}
}

func (g *GeocodedPosition) LastKnownPosition(ctx context.Context) (*weather.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.once.Do(func() {
		if g.City == "" {
			return
		}
		loc, err := g.geocode(geocoder.Address{City: g.City, Country: g.Country})
		if err != nil {
			g.err = fmt.Errorf("geocode %s,%s: %w", g.City, g.Country, err)
			return
		}
		g.coords = &weather.Coordinates{Lat: loc.Latitude, Lon: loc.Longitude}
		slog.Debug("geocoded last known position", "city", g.City, "coords", g.coords.String())
	})

	if g.err != nil {
		return nil, g.err
	}
	if g.coords == nil {
		return nil, nil
	}
	c := *g.coords
	return &c, nil
}
