package pipeline

import (
	"github.com/i474232898/weather-now/internal/permission"
	"github.com/i474232898/weather-now/internal/weather"
)

// Kind tags the terminal outcome of a pipeline run.
type Kind string

const (
	KindSuccess               Kind = "success"
	KindNeedsPermissionPrompt Kind = "needs_permission_prompt"
	KindNeedsRationale        Kind = "needs_rationale"
	KindLocationDisabled      Kind = "location_disabled"
	KindNetworkUnavailable    Kind = "network_unavailable"
	KindRequestFailed         Kind = "request_failed"
	KindCancelled             Kind = "cancelled"
)

// Outcome is produced exactly once per run. View is set only for KindSuccess
// and Failure only for KindRequestFailed.
type Outcome struct {
	RunID   string               `json:"runId"`
	Kind    Kind                 `json:"kind"`
	View    *weather.WeatherView `json:"view,omitempty"`
	Failure weather.FailureKind  `json:"failure,omitempty"`
	Reason  string               `json:"reason,omitempty"`
}

// Message is the user-facing advisory for the outcome.
func (o Outcome) Message() string {
	switch o.Kind {
	case KindSuccess:
		return ""
	case KindNeedsPermissionPrompt:
		return "Location permission is needed to show the weather for your position."
	case KindNeedsRationale:
		return permission.RationaleMessage
	case KindLocationDisabled:
		return "Your location provider is turned off. Please turn it on"
	case KindNetworkUnavailable:
		return "No internet connection available."
	case KindCancelled:
		return "Weather request cancelled."
	}

	switch o.Failure {
	case weather.FailureLocationUnavailable:
		return "Your current location is not available yet. Please try again."
	case weather.FailureBadRequest:
		return "The weather request was rejected."
	case weather.FailureNotFound:
		return "No weather data found for your location."
	case weather.FailureTransport:
		return "Could not reach the weather service."
	case weather.FailurePermissionRequest:
		return "Could not ask for location permission."
	default:
		return "The weather service returned an error."
	}
}

// Presenter renders pipeline output. Notify may be called from a permission
// callback goroutine, so implementations must be safe for concurrent use.
type Presenter interface {
	Render(out Outcome)
	ShowProgress(visible bool)
	Notify(msg string)
	ShowRationale(d permission.Dialog)
}
