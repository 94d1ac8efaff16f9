// Package permission decides whether the pipeline may query the device
// location, and how to react to the user's answer to the permission prompt.
package permission

import (
	"fmt"
	"log/slog"

	"github.com/i474232898/weather-now/internal/device"
)

// State is derived from the OS permission flags on every run.
type State int

const (
	Unknown State = iota
	GrantedBoth
	DeniedShowRationale
	DeniedPermanently
	NotYetRequested
)

func (s State) String() string {
	switch s {
	case GrantedBoth:
		return "granted_both"
	case DeniedShowRationale:
		return "denied_show_rationale"
	case DeniedPermanently:
		return "denied_permanently"
	case NotYetRequested:
		return "not_yet_requested"
	default:
		return "unknown"
	}
}

const (
	RationaleMessage = "It looks like you have turned off the location permission required for this feature. It can be enabled under the application settings."
	SettingsLabel    = "GO TO SETTINGS"
	CancelLabel      = "Cancel"

	DeniedNotice            = "Location permission was only partially granted. Both fine and coarse location are needed."
	PermanentlyDeniedNotice = "Location permission denied. Enable it from the application settings to see the weather."
)

// Dialog is the rationale prompt handed to the presentation layer. Exactly
// one of the two actions is expected to be invoked by the user.
type Dialog struct {
	Message       string
	SettingsLabel string
	CancelLabel   string
	GoToSettings  func()
	Cancel        func()
}

// Gate holds no state between runs.
type Gate struct {
	settings device.SettingsOpener
}

func NewGate(settings device.SettingsOpener) *Gate {
	return &Gate{settings: settings}
}

// Evaluate applies, in order: both granted, rationale for both, otherwise prompt.
func (g *Gate) Evaluate(snap device.PermissionSnapshot) State {
	switch {
	case snap.Granted[device.FineLocation] && snap.Granted[device.CoarseLocation]:
		return GrantedBoth
	case snap.ShowRationale[device.FineLocation] && snap.ShowRationale[device.CoarseLocation]:
		return DeniedShowRationale
	default:
		return NotYetRequested
	}
}

// OnUserResponse maps the prompt result to the next state. An empty result
// means the prompt was interrupted.
func (g *Gate) OnUserResponse(grants map[device.Permission]bool) State {
	if len(grants) == 0 {
		return Unknown
	}

	granted := 0
	for _, p := range device.LocationPermissions {
		if grants[p] {
			granted++
		}
	}

	switch granted {
	case len(device.LocationPermissions):
		return GrantedBoth
	case 0:
		return DeniedPermanently
	default:
		return DeniedShowRationale
	}
}

// Notices lists the one-shot advisories for a prompt result.
func (g *Gate) Notices(grants map[device.Permission]bool) []string {
	var notices []string
	for _, p := range device.LocationPermissions {
		if grants[p] {
			notices = append(notices, fmt.Sprintf("Permission %s is granted", p))
		}
	}

	switch g.OnUserResponse(grants) {
	case DeniedShowRationale:
		notices = append(notices, DeniedNotice)
	case DeniedPermanently:
		notices = append(notices, PermanentlyDeniedNotice)
	}
	return notices
}

// Rationale builds the dialog shown for DeniedShowRationale. Failing to open
// the settings screen is logged and otherwise ignored.
func (g *Gate) Rationale(onDismiss func()) Dialog {
	return Dialog{
		Message:       RationaleMessage,
		SettingsLabel: SettingsLabel,
		CancelLabel:   CancelLabel,
		GoToSettings: func() {
			if g.settings == nil {
				slog.Warn("no settings opener configured")
				return
			}
			if err := g.settings.OpenAppSettings(); err != nil {
				slog.Warn("failed to open application settings", "error", err)
			}
		},
		Cancel: func() {
			if onDismiss != nil {
				onDismiss()
			}
		},
	}
}

// Request asks for both location permissions at once. callback receives the
// result asynchronously and is not invoked if dispatch fails.
func (g *Gate) Request(req device.PermissionRequester, callback func(map[device.Permission]bool)) error {
	if err := req.RequestPermissions(device.LocationPermissions, callback); err != nil {
		return fmt.Errorf("request location permissions: %w", err)
	}
	return nil
}
