package device

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/i474232898/weather-now/internal/weather"
)

// ErrSettingsUnavailable is returned when the host has no settings screen.
var ErrSettingsUnavailable = errors.New("app settings screen unavailable")

// HostState is the configurable device state of a Host.
type HostState struct {
	Granted        map[Permission]bool
	ShowRationale  map[Permission]bool
	GPS            bool
	Network        bool
	Position       *weather.Coordinates
	GrantOnRequest bool
	SettingsURL    string
}

// Host is an in-process device used when the pipeline runs outside a phone.
// Granted permissions persist across runs the way the OS would keep them.
type Host struct {
	mu    sync.Mutex
	state HostState
	pos   PositionSource
}

// NewHost creates a Host. When pos is nil, the configured Position is served.
func NewHost(state HostState, pos PositionSource) *Host {
	if state.Granted == nil {
		state.Granted = make(map[Permission]bool)
	}
	if state.ShowRationale == nil {
		state.ShowRationale = make(map[Permission]bool)
	}
	return &Host{state: state, pos: pos}
}

func (h *Host) PermissionSnapshot() PermissionSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := PermissionSnapshot{
		Granted:       make(map[Permission]bool, len(LocationPermissions)),
		ShowRationale: make(map[Permission]bool, len(LocationPermissions)),
	}
	for _, p := range LocationPermissions {
		snap.Granted[p] = h.state.Granted[p]
		snap.ShowRationale[p] = h.state.ShowRationale[p]
	}
	return snap
}

// RequestPermissions answers the prompt according to GrantOnRequest.
func (h *Host) RequestPermissions(perms []Permission, callback func(map[Permission]bool)) error {
	h.mu.Lock()
	grant := h.state.GrantOnRequest
	h.mu.Unlock()

	grants := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		grants[p] = grant
	}

	go func() {
		h.ApplyGrants(grants)
		if callback != nil {
			callback(grants)
		}
	}()
	return nil
}

// ApplyGrants records a user's answer to the permission prompt. A denied
// permission asks for a rationale on the next prompt.
func (h *Host) ApplyGrants(grants map[Permission]bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for p, ok := range grants {
		h.state.Granted[p] = ok
		h.state.ShowRationale[p] = !ok
	}
}

func (h *Host) GPSEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.GPS
}

func (h *Host) NetworkEnabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Network
}

// SetProviders switches the location providers on or off.
func (h *Host) SetProviders(gps, network bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.GPS = gps
	h.state.Network = network
}

func (h *Host) LastKnownPosition(ctx context.Context) (*weather.Coordinates, error) {
	if h.pos != nil {
		return h.pos.LastKnownPosition(ctx)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state.Position == nil {
		return nil, nil
	}
	c := *h.state.Position
	return &c, nil
}

func (h *Host) OpenAppSettings() error {
	h.mu.Lock()
	url := h.state.SettingsURL
	h.mu.Unlock()

	if url == "" {
		return ErrSettingsUnavailable
	}
	slog.Info("open application settings", "url", url)
	return nil
}
