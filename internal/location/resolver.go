// Package location resolves the device's current position from the OS
// last-known-location cache.
package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/i474232898/weather-now/internal/device"
	"github.com/i474232898/weather-now/internal/weather"
)

// DisabledAdvisory is shown once when no location provider is switched on.
const DisabledAdvisory = "Your location provider is turned off. Please turn it on"

// Resolver is a single-shot wrapper over the last-known-position query.
// It never falls back to an active fix request.
type Resolver struct {
	providers device.ProviderStatus
	positions device.PositionSource
	advise    func(msg string)

	adviseOnce sync.Once
}

// NewResolver creates a Resolver. advise receives the provider-disabled
// advisory at most once per Resolver; it may be nil.
func NewResolver(providers device.ProviderStatus, positions device.PositionSource, advise func(msg string)) *Resolver {
	return &Resolver{
		providers: providers,
		positions: positions,
		advise:    advise,
	}
}

// CurrentPosition returns weather.ErrLocationDisabled when neither the GPS nor
// the network provider is enabled, and weather.ErrLocationUnavailable when the
// OS has no cached position.
func (r *Resolver) CurrentPosition(ctx context.Context) (weather.Coordinates, error) {
	if !r.providers.GPSEnabled() && !r.providers.NetworkEnabled() {
		r.adviseOnce.Do(func() {
			if r.advise != nil {
				r.advise(DisabledAdvisory)
			}
		})
		return weather.Coordinates{}, weather.ErrLocationDisabled
	}

	pos, err := r.positions.LastKnownPosition(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return weather.Coordinates{}, ctxErr
		}
		slog.Warn("last known position query failed", "error", err)
		return weather.Coordinates{}, fmt.Errorf("%w: %v", weather.ErrLocationUnavailable, err)
	}
	if pos == nil {
		return weather.Coordinates{}, weather.ErrLocationUnavailable
	}

	slog.Info("resolved last known position", "lat", pos.Lat, "lon", pos.Lon)
	return *pos, nil
}
