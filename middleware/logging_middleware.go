// ABOUTME: Access log middleware for the serve mode endpoints
// ABOUTME: One structured record per request with status, size and duration
package middleware

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/TheStalwart/phoronix-rss-augmented/utils/logger"
)

// LoggingMiddleware logs completed requests. Paths in quiet are logged at
// debug level so health probes do not flood the output.
func LoggingMiddleware(log *slog.Logger, quiet ...string) echo.MiddlewareFunc {
	quietPaths := make(map[string]struct{}, len(quiet))
	for _, p := range quiet {
		quietPaths[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			ctx := logger.WithOperation(req.Context(), req.Method+" "+req.URL.Path)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final.
				c.Error(err)
			}

			res := c.Response()
			level := slog.LevelInfo
			if _, ok := quietPaths[req.URL.Path]; ok {
				level = slog.LevelDebug
			}
			if res.Status >= 500 {
				level = slog.LevelError
			}

			log.Log(ctx, level, "request completed",
				"log_type", "access",
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", res.Status,
				"response_size", res.Size,
				"ip_address", c.RealIP(),
				"user_agent", req.UserAgent(),
				"duration_ms", time.Since(start).Milliseconds())

			return nil
		}
	}
}
