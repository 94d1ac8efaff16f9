package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-now/internal/device"
	"github.com/i474232898/weather-now/internal/permission"
	"github.com/i474232898/weather-now/internal/pipeline"
	"github.com/i474232898/weather-now/internal/presenter"
	"github.com/i474232898/weather-now/internal/store"
	"github.com/i474232898/weather-now/internal/weather"
)

var validate = validator.New()

// Runner is the pipeline as seen by the HTTP layer.
type Runner interface {
	Run(ctx context.Context) (pipeline.Outcome, error)
	HandlePermissionResponse(grants map[device.Permission]bool) permission.State
}

// GrantSink persists a permission answer on the device.
type GrantSink interface {
	ApplyGrants(grants map[device.Permission]bool)
}

// Handlers bundles what the routes need.
type Handlers struct {
	Runner   Runner
	Grants   GrantSink
	Recorder *presenter.Recorder
	Store    *store.MemoryStore
	// RunTimeout bounds a single triggered run; zero means no bound.
	RunTimeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, h Handlers) {
	v1 := app.Group("/api/v1")

	// notices only carries what was raised during the run. The device answers
	// a permission prompt on its own goroutine, so the grant notices usually
	// land later and are collected from /notices.
	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if h.RunTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, h.RunTimeout)
			defer cancel()
		}

		// A new trigger replaces any dialog left from the previous run.
		h.Recorder.TakeRationale()

		out, err := h.Runner.Run(ctx)
		if err != nil {
			if errors.Is(err, pipeline.ErrRunInProgress) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to run weather pipeline")
		}

		body := fiber.Map{
			"outcome": out,
			"message": out.Message(),
			"notices": h.Recorder.DrainNotices(),
		}
		if d, ok := h.Recorder.PendingRationale(); ok {
			body["rationale"] = fiber.Map{
				"message": d.Message,
				"actions": []string{d.SettingsLabel, d.CancelLabel},
			}
		}

		return c.Status(statusFor(out)).JSON(body)
	})

	v1.Get("/notices", func(c *fiber.Ctx) error {
		notices := h.Recorder.DrainNotices()
		if notices == nil {
			notices = []string{}
		}
		return c.JSON(fiber.Map{"notices": notices})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		entries, err := h.Store.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather outcomes for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"from":     req.From,
			"to":       req.To,
			"outcomes": entries,
		})
	})

	v1.Post("/permissions/response", func(c *fiber.Ctx) error {
		var req grantRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid permission response body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		grants := req.grants()
		if h.Grants != nil {
			h.Grants.ApplyGrants(grants)
		}
		st := h.Runner.HandlePermissionResponse(grants)

		return c.JSON(fiber.Map{
			"state":   st.String(),
			"notices": h.Recorder.DrainNotices(),
		})
	})

	v1.Post("/rationale/:action", func(c *fiber.Ctx) error {
		req := rationaleAction{Action: c.Params("action")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "action must be settings or cancel")
		}

		d, ok := h.Recorder.TakeRationale()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no rationale dialog is showing")
		}
		if req.Action == "settings" {
			d.GoToSettings()
		} else {
			d.Cancel()
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// statusFor maps a terminal outcome onto an HTTP status.
func statusFor(out pipeline.Outcome) int {
	switch out.Kind {
	case pipeline.KindSuccess:
		return fiber.StatusOK
	case pipeline.KindNeedsPermissionPrompt, pipeline.KindNeedsRationale:
		return fiber.StatusForbidden
	case pipeline.KindLocationDisabled:
		return fiber.StatusUnprocessableEntity
	case pipeline.KindNetworkUnavailable:
		return fiber.StatusServiceUnavailable
	case pipeline.KindCancelled:
		return fiber.StatusRequestTimeout
	}

	switch out.Failure {
	case weather.FailureNotFound:
		return fiber.StatusNotFound
	case weather.FailureLocationUnavailable:
		return fiber.StatusUnprocessableEntity
	case weather.FailureTransport:
		return fiber.StatusGatewayTimeout
	case weather.FailurePermissionRequest:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadGateway
	}
}

// grantRequest is the body of a permission prompt answer.
type grantRequest struct {
	Fine   *bool `json:"fine" validate:"required"`
	Coarse *bool `json:"coarse" validate:"required"`
}

func (g grantRequest) grants() map[device.Permission]bool {
	return map[device.Permission]bool{
		device.FineLocation:   *g.Fine,
		device.CoarseLocation: *g.Coarse,
	}
}

type rationaleAction struct {
	Action string `validate:"required,oneof=settings cancel"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
