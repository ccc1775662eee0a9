// Package server exposes conversions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/itsmostafa/bomfold/internal/bomerr"
	"github.com/itsmostafa/bomfold/internal/metrics"
	"github.com/itsmostafa/bomfold/internal/pipeline"
	"github.com/itsmostafa/bomfold/internal/rules"
)

// EnvAddr overrides the default listen address.
const EnvAddr = "BOMFOLD_ADDR"

// DefaultAddr is used when neither --addr nor $BOMFOLD_ADDR is set.
const DefaultAddr = ":8080"

// Config configures the HTTP surface.
type Config struct {
	Rules   *rules.Rules
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// BodyLimit caps uploads, e.g. "32M".
	BodyLimit string
	// Hub receives server errors; nil disables reporting.
	Hub *sentry.Hub
}

// New builds the echo instance with routes and middleware registered.
func New(config Config) *echo.Echo {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.New()
	}
	if config.BodyLimit == "" {
		config.BodyLimit = "32M"
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger, config.Hub)

	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(config.BodyLimit))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))

	h := NewHandler(&pipeline.Runner{Logger: logger, Metrics: config.Metrics}, config.Rules)
	h.RegisterRoutes(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(config.Metrics.Registry, promhttp.HandlerOpts{})))

	return e
}

// Serve runs e on addr until ctx is canceled, then shuts down gracefully.
func Serve(ctx context.Context, e *echo.Echo, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// StatusOf maps an error code to an HTTP status.
func StatusOf(err error) int {
	switch bomerr.CodeOf(err) {
	case bomerr.CodeInvalidArgument:
		return http.StatusBadRequest
	case bomerr.CodeUnimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorHandler(logger *zap.Logger, hub *sentry.Hub) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusOf(err)
		body := errorBody{Code: string(bomerr.CodeOf(err)), Message: err.Error()}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			body = errorBody{Code: http.StatusText(he.Code), Message: http.StatusText(he.Code)}
			if msg, ok := he.Message.(string); ok {
				body.Message = msg
			}
		}

		if status >= http.StatusInternalServerError {
			logger.Error("request failed", zap.Error(err))
			if hub != nil {
				hub.Clone().CaptureException(err)
			}
		}
		if err := c.JSON(status, body); err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}
