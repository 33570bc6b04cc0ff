// Package middleware provides Echo middleware for logging, metrics and
// response headers.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"via-proxy-go/internal/apperr"
)

// RequestLogger returns an Echo middleware that logs each request with slog.
// Server errors are logged at error level, client errors at warn and
// everything else at info.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			// A returned error is written later by the central error handler,
			// so resolve its status the same way that handler will.
			status := res.Status
			if err != nil && !res.Committed {
				status = apperr.Describe(err).Status
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(context.Background(), level, "request",
				slog.String("method", req.Method),
				slog.String("uri", req.RequestURI),
				slog.Int("status", status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
				slog.String("remote_ip", c.RealIP()),
				slog.String("location", res.Header().Get(echo.HeaderLocation)),
				slog.String("cache_control", res.Header().Get(echo.HeaderCacheControl)),
			)

			return err
		}
	}
}
