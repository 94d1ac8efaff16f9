// Package device describes the operating-system capabilities the weather
// pipeline depends on, and ships host implementations of them.
package device

import (
	"context"

	"github.com/i474232898/weather-now/internal/weather"
)

// Permission identifies a location permission tier.
type Permission string

const (
	FineLocation   Permission = "fine-location"
	CoarseLocation Permission = "coarse-location"
)

// LocationPermissions are always requested together.
var LocationPermissions = []Permission{FineLocation, CoarseLocation}

// PermissionSnapshot is the OS view of both location permissions at one instant.
type PermissionSnapshot struct {
	Granted       map[Permission]bool
	ShowRationale map[Permission]bool
}

// PermissionSource reports the current permission state.
type PermissionSource interface {
	PermissionSnapshot() PermissionSnapshot
}

// PermissionRequester dispatches the OS permission prompt. The callback fires
// at most once, asynchronously, with the per-permission result.
type PermissionRequester interface {
	RequestPermissions(perms []Permission, callback func(grants map[Permission]bool)) error
}

// ProviderStatus reports which location providers are switched on.
type ProviderStatus interface {
	GPSEnabled() bool
	NetworkEnabled() bool
}

// PositionSource returns the cached last-known position. A nil position
// with a nil error means the OS has none.
type PositionSource interface {
	LastKnownPosition(ctx context.Context) (*weather.Coordinates, error)
}

// Reachability reports whether the network can currently be used.
type Reachability interface {
	NetworkAvailable(ctx context.Context) bool
}

// SettingsOpener opens the application's OS settings screen.
type SettingsOpener interface {
	OpenAppSettings() error
}
