package httpapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/etranslation/server/internal/logging"
)

// NewServer builds the echo instance with panic recovery and request
// logging, and registers all routes.
func NewServer(h *Handler, logger logging.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware(logger))

	h.Register(e)
	return e
}

// RequestLoggerMiddleware logs one line per request. Server errors log at
// error level, client errors at warn, the rest at info.
func RequestLoggerMiddleware(logger logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			args := []any{
				"method", req.Method,
				"path", req.URL.Path,
				"status", status,
				"duration", time.Since(start).String(),
			}

			switch {
			case status >= 500:
				logger.Error(req.Context(), "request", args...)
			case status >= 400:
				logger.Warn(req.Context(), "request", args...)
			default:
				logger.Info(req.Context(), "request", args...)
			}
			return err
		}
	}
}
