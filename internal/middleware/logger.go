package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"

	"github.com/arzan03/CampusKart/internal/logging"
	"github.com/arzan03/CampusKart/internal/metrics"
)

// RequestLogger logs one line per request and records the HTTP metrics.
// It must run after requestid so the id is available.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Let the app error handler write the response so the status is final.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)
		route := c.Route().Path

		metrics.RecordAPIRequest(c.Method(), route, status, latency)

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logging.Error()
		case status >= fiber.StatusBadRequest:
			event = logging.Warn()
		default:
			event = logging.Info()
		}
		event.
			Str("request_id", requestID(c)).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.IP()).
			Str("username", Username(c)).
			Msg("request")
		return nil
	}
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok {
		return id
	}
	return c.GetRespHeader(fiber.HeaderXRequestID)
}
