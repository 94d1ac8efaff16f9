// Package presenter holds presentation collaborators for pipeline outcomes.
package presenter

import (
	"fmt"
	"io"
	"sync"

	"github.com/i474232898/weather-now/internal/permission"
	"github.com/i474232898/weather-now/internal/pipeline"
)

// RationaleChoice is how a non-interactive presenter answers the rationale dialog.
type RationaleChoice string

const (
	ChooseCancel   RationaleChoice = "cancel"
	ChooseSettings RationaleChoice = "settings"
)

// Terminal renders outcomes as plain text.
type Terminal struct {
	mu     sync.Mutex
	w      io.Writer
	choice RationaleChoice
}

func NewTerminal(w io.Writer, choice RationaleChoice) *Terminal {
	return &Terminal{w: w, choice: choice}
}

func (t *Terminal) Render(out pipeline.Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if out.Kind != pipeline.KindSuccess || out.View == nil {
		fmt.Fprintf(t.w, "%s\n", out.Message())
		return
	}

	v := out.View
	fmt.Fprintf(t.w, "%s, %s\n", v.LocationName, v.CountryCode)
	fmt.Fprintf(t.w, "  %s (%s) [%s]\n", v.ConditionMain, v.ConditionDescription, v.IconKey)
	fmt.Fprintf(t.w, "  temperature  %s (feels like %s)\n", v.TemperatureText, v.FeelsLikeText)
	fmt.Fprintf(t.w, "  min / max    %s / %s\n", v.MinTemperatureText, v.MaxTemperatureText)
	fmt.Fprintf(t.w, "  humidity     %s\n", v.HumidityText)
	fmt.Fprintf(t.w, "  wind         %s\n", v.WindSpeedText)
	fmt.Fprintf(t.w, "  sunrise      %s\n", v.SunriseText)
	fmt.Fprintf(t.w, "  sunset       %s\n", v.SunsetText)
}

func (t *Terminal) ShowProgress(visible bool) {
	if !visible {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, "Please wait...")
}

func (t *Terminal) Notify(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "! %s\n", msg)
}

func (t *Terminal) ShowRationale(d permission.Dialog) {
	t.mu.Lock()
	fmt.Fprintf(t.w, "%s\n  [%s] [%s]\n", d.Message, d.SettingsLabel, d.CancelLabel)
	t.mu.Unlock()

	if t.choice == ChooseSettings {
		d.GoToSettings()
		return
	}
	d.Cancel()
}
