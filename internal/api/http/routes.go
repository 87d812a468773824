package httpapi

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/i474232898/merra-climatology/internal/climate"
	"github.com/i474232898/merra-climatology/internal/store"
)

var validate = validator.New()

// estimateTimeout bounds one request including every per-year fetch it starts.
const estimateTimeout = 5 * time.Minute

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *climate.Service) {
	// Legacy endpoint: kind -> hourly values, null when there is no data.
	app.Post("/get_weather", func(c *fiber.Ctx) error {
		results, err := estimate(c, service)
		if err != nil {
			return err
		}

		out := make(map[string][]float64, len(results))
		for key, p := range results {
			if !p.Available() {
				out[key] = nil
				continue
			}
			out[key] = p.Hourly.Slice()
		}
		return c.JSON(out)
	})

	v1 := app.Group("/api/v1")

	v1.Post("/estimate", func(c *fiber.Ctx) error {
		results, err := estimate(c, service)
		if err != nil {
			return err
		}

		out := make(map[string]estimateResult, len(results))
		for key, p := range results {
			r := estimateResult{Prediction: p}
			if p.Available() {
				r.Hourly = p.Hourly.Slice()
			}
			out[key] = r
		}
		return c.JSON(fiber.Map{"results": out})
	})

	v1.Get("/variables", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"variables": climate.Variables()})
	})

	v1.Get("/archive/status", func(c *fiber.Ctx) error {
		latest, err := service.GetLatestProbe()
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "archive has not been probed yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read archive status")
		}
		return c.JSON(latest)
	})

	v1.Get("/archive/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		results, err := service.GetProbeRange(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no archive probes for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read archive history")
		}

		return c.JSON(fiber.Map{
			"from":   req.From,
			"to":     req.To,
			"probes": results,
		})
	})
}

// estimateRequest is the body shared by both estimate endpoints.
type estimateRequest struct {
	Lat   float64  `json:"lat" validate:"gte=-90,lte=90"`
	Lon   float64  `json:"lon" validate:"gte=-180,lte=360"`
	Date  string   `json:"date" validate:"required,datetime=2006-01-02"`
	Types []string `json:"types" validate:"required,min=1"`
}

type estimateResult struct {
	climate.Prediction
	Hourly []float64 `json:"hourly"`
}

func estimate(c *fiber.Ctx, service *climate.Service) (map[string]climate.Prediction, error) {
	var req estimateRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid date; use YYYY-MM-DD")
	}

	kinds := make([]climate.Kind, len(req.Types))
	for i, t := range req.Types {
		kinds[i] = climate.Kind(t)
	}

	reqID := uuid.NewString()
	pt := climate.GridPoint{Lat: req.Lat, Lon: req.Lon}
	log.Printf("DEBUG: estimate %s at %s for %s types=%v", reqID, pt, req.Date, req.Types)

	ctx, cancel := context.WithTimeout(c.UserContext(), estimateTimeout)
	defer cancel()

	start := time.Now()
	results, err := service.Estimate(ctx, pt, date, kinds)
	if err != nil {
		log.Printf("ERROR: estimate %s failed: %v", reqID, err)
		switch {
		case errors.Is(err, climate.ErrUnknownVariable):
			return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
		case errors.Is(err, context.DeadlineExceeded):
			return nil, fiber.NewError(fiber.StatusGatewayTimeout, "estimate timed out")
		default:
			return nil, fiber.NewError(fiber.StatusInternalServerError, "failed to compute estimate")
		}
	}

	log.Printf("DEBUG: estimate %s done in %s (%d variables)", reqID, time.Since(start).Round(time.Millisecond), len(results))
	return results, nil
}

// historyQuery holds query parameters for the archive history endpoint.
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
