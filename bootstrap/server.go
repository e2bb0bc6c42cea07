package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	appmiddleware "github.com/TheStalwart/phoronix-rss-augmented/middleware"
)

const (
	healthPath = "/health"
	feedPath   = "/feed.xml"
)

// NewHTTPServer creates and configures the Echo HTTP server.
func NewHTTPServer(deps *Dependencies, otelEnabled bool, otelServiceName string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	e.HTTPErrorHandler = appmiddleware.CustomHTTPErrorHandler(deps.Logger)

	if otelEnabled {
		e.Use(otelecho.Middleware(otelServiceName))
		e.Use(appmiddleware.OTelStatusMiddleware())
	}

	e.Use(appmiddleware.RequestIDMiddleware())
	e.Use(appmiddleware.LoggingMiddleware(deps.Logger, healthPath, deps.Config.Metrics.Path))
	e.Use(middleware.Recover())

	e.GET(feedPath, deps.FeedHandler.ServeFeed)
	e.GET(healthPath, deps.HealthHandler.CheckHealth)
	if deps.Config.Metrics.Enabled {
		e.GET(deps.Config.Metrics.Path, echo.WrapHandler(deps.Metrics.Handler()))
	}

	return e
}

// StartHTTPServer starts the HTTP server in a goroutine. Listen errors are
// sent on the returned channel.
func StartHTTPServer(e *echo.Echo, port int, log *slog.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", port)
		log.Info("starting HTTP server", "port", port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}
