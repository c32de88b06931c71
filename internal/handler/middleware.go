package handler

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/trainsearch/internal/logging"
)

// RequestID tags each request with a UUID unless the caller sent one.
func RequestID() echo.MiddlewareFunc {
	return middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// RequestLogger stores base, tagged with the request ID, in the request
// context. Register it after RequestID.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Response().Header().Get(echo.HeaderXRequestID)
			if id == "" {
				id = c.Request().Header.Get(echo.HeaderXRequestID)
			}

			logger := base.With(slog.String("request_id", id))
			req := c.Request()
			c.SetRequest(req.WithContext(logging.WithLogger(req.Context(), logger)))
			return next(c)
		}
	}
}
