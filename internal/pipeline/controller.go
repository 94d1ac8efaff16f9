// Package pipeline turns a "screen ready" trigger into exactly one rendered
// outcome: permission check, location lookup, weather fetch, display model.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"

	"github.com/i474232898/weather-now/internal/device"
	"github.com/i474232898/weather-now/internal/location"
	"github.com/i474232898/weather-now/internal/metrics"
	"github.com/i474232898/weather-now/internal/permission"
	"github.com/i474232898/weather-now/internal/weather"
)

// State is the controller's position in a run.
type State string

const (
	StateIdle               State = "idle"
	StateCheckingPermission State = "checking_permission"
	StateResolvingLocation  State = "resolving_location"
	StateAwaitingUserGrant  State = "awaiting_user_grant"
	StateShowingRationale   State = "showing_rationale"
	StateFetchingWeather    State = "fetching_weather"
	StateDone               State = "done"
)

// ErrRunInProgress is returned when a trigger arrives while a run is active.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Deps are the collaborators a Controller drives.
type Deps struct {
	Permissions device.PermissionSource
	Requester   device.PermissionRequester
	Settings    device.SettingsOpener
	Providers   device.ProviderStatus
	Positions   device.PositionSource
	Client      weather.Client
	Presenter   Presenter
}

// Options tune how the display model is rendered.
type Options struct {
	Units  weather.UnitPolicy
	Region string
	Clock  weather.Clock
}

// Controller runs the pipeline once per trigger. It keeps no data between
// runs; granted permissions live in the OS.
type Controller struct {
	deps     Deps
	opts     Options
	gate     *permission.Gate
	resolver *location.Resolver

	inFlight *atomic.Bool
	state    *atomic.String
}

func NewController(deps Deps, opts Options) *Controller {
	if len(opts.Units.FahrenheitRegions) == 0 {
		opts.Units = weather.NewUnitPolicy(nil)
	}

	return &Controller{
		deps:     deps,
		opts:     opts,
		gate:     permission.NewGate(deps.Settings),
		resolver: location.NewResolver(deps.Providers, deps.Positions, deps.Presenter.Notify),
		inFlight: atomic.NewBool(false),
		state:    atomic.NewString(string(StateIdle)),
	}
}

// State reports where the current (or last) run is.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Run executes one trigger and renders its outcome. It returns
// ErrRunInProgress without rendering anything if another run is active.
func (c *Controller) Run(ctx context.Context) (Outcome, error) {
	if !c.inFlight.CAS(false, true) {
		metrics.PipelineRejected.Inc()
		return Outcome{}, ErrRunInProgress
	}
	defer c.inFlight.Store(false)

	runID := uuid.NewString()
	log := slog.With("run", runID)
	log.Info("pipeline triggered")

	out := c.run(ctx, log)
	out.RunID = runID

	c.setState(StateDone)
	metrics.PipelineOutcomes.WithLabelValues(string(out.Kind), string(out.Failure)).Inc()
	log.Info("pipeline finished", "outcome", out.Kind, "failure", out.Failure)

	c.deps.Presenter.Render(out)
	return out, nil
}

func (c *Controller) run(ctx context.Context, log *slog.Logger) Outcome {
	c.setState(StateCheckingPermission)

	switch st := c.gate.Evaluate(c.deps.Permissions.PermissionSnapshot()); st {
	case permission.GrantedBoth:
	case permission.DeniedShowRationale:
		c.setState(StateShowingRationale)
		c.deps.Presenter.ShowRationale(c.gate.Rationale(func() {
			log.Info("rationale dismissed")
		}))
		return Outcome{Kind: KindNeedsRationale}
	default:
		c.setState(StateAwaitingUserGrant)
		if err := c.gate.Request(c.deps.Requester, func(grants map[device.Permission]bool) {
			c.HandlePermissionResponse(grants)
		}); err != nil {
			log.Warn("permission prompt not dispatched", "error", err)
			out := Outcome{Kind: KindRequestFailed, Failure: weather.FailurePermissionRequest, Reason: err.Error()}
			c.deps.Presenter.Notify(out.Message())
			return out
		}
		return Outcome{Kind: KindNeedsPermissionPrompt}
	}

	if ctx.Err() != nil {
		return Outcome{Kind: KindCancelled}
	}

	c.setState(StateResolvingLocation)
	coords, err := c.resolver.CurrentPosition(ctx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Outcome{Kind: KindCancelled}
		case errors.Is(err, weather.ErrLocationDisabled):
			return Outcome{Kind: KindLocationDisabled}
		default:
			log.Warn("location unavailable", "error", err)
			return Outcome{Kind: KindRequestFailed, Failure: weather.FailureLocationUnavailable, Reason: err.Error()}
		}
	}

	c.setState(StateFetchingWeather)
	c.deps.Presenter.ShowProgress(true)
	start := time.Now()
	raw, err := c.deps.Client.FetchCurrent(ctx, coords)
	metrics.ObserveFetch(start)
	c.deps.Presenter.ShowProgress(false)

	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Outcome{Kind: KindCancelled}
		case errors.Is(err, weather.ErrNetworkUnavailable):
			return Outcome{Kind: KindNetworkUnavailable}
		default:
			log.Warn("weather fetch failed", "error", err)
			return Outcome{Kind: KindRequestFailed, Failure: weather.FailureOf(err), Reason: err.Error()}
		}
	}

	view := weather.ToView(raw, c.opts.Units.SymbolFor(c.opts.Region), c.opts.Clock)
	return Outcome{Kind: KindSuccess, View: &view}
}

// HandlePermissionResponse is the grant callback of the permission prompt.
// It surfaces notices and returns the new state; it never starts a run.
func (c *Controller) HandlePermissionResponse(grants map[device.Permission]bool) permission.State {
	st := c.gate.OnUserResponse(grants)
	slog.Info("permission response", "state", st.String(), "grants", grants)

	for _, msg := range c.gate.Notices(grants) {
		c.deps.Presenter.Notify(msg)
	}
	return st
}

func (c *Controller) setState(s State) {
	c.state.Store(string(s))
}
