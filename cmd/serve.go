package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/itsmostafa/bomfold/internal/logging"
	"github.com/itsmostafa/bomfold/internal/metrics"
	"github.com/itsmostafa/bomfold/internal/rules"
	"github.com/itsmostafa/bomfold/internal/server"
	"github.com/itsmostafa/bomfold/internal/version"
)

// EnvSentryDSN enables error reporting for the server when set.
const EnvSentryDSN = "BOMFOLD_SENTRY_DSN"

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP",
	Long:  `Start an HTTP server exposing POST /v1/fold, GET /healthz and GET /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(logging.Server())
		defer logger.Sync()

		r, err := rules.Load(rulesFile)
		if err != nil {
			return err
		}

		var hub *sentry.Hub
		if dsn := os.Getenv(EnvSentryDSN); dsn != "" {
			if err := sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: version.Version}); err != nil {
				logger.Warn("failed to initialize error reporting", zap.Error(err))
			} else {
				hub = sentry.CurrentHub()
				defer sentry.Flush(2 * time.Second)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		e := server.New(server.Config{
			Rules:   r,
			Logger:  logger,
			Metrics: metrics.New().WithRuntime(),
			Hub:     hub,
		})
		return server.Serve(ctx, e, serveAddr, logger)
	},
}

func init() {
	// Address flag with env var fallback
	defaultAddr := server.DefaultAddr
	if envAddr := os.Getenv(server.EnvAddr); envAddr != "" {
		defaultAddr = envAddr
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "Address to listen on")

	rootCmd.AddCommand(serveCmd)
}
