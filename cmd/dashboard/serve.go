package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/config"
	"github.com/coachtui/woflo/internal/telemetry"
	"github.com/coachtui/woflo/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard",
	RunE:  runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "listen address ("+config.EnvPrefix+"_DASH_ADDR)")
	flags.Duration("render-wait", 0, "how long a page waits for its fetch before showing loading ("+config.EnvPrefix+"_RENDER_WAIT)")
	mustBind(config.KeyDashAddr, flags, "addr")
	mustBind(config.KeyRenderWait, flags, "render-wait")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{ServiceName: "woflo-dashboard", Stdout: cfg.TraceStdout})
	if err != nil {
		return err
	}
	defer flushTracing(shutdownTracing)

	dash := web.New(web.Options{
		Client:      newClient(cfg),
		Log:         log,
		RenderWait:  cfg.RenderWait,
		SessionTTL:  cfg.SessionTTL,
		MaxSessions: cfg.MaxSessions,
	})
	defer closeDashboard(dash)

	log.Info("dashboard starting",
		zap.String("addr", cfg.DashAddr),
		zap.String("api_url", cfg.APIURL),
		zap.Bool("api_token", cfg.APIToken != ""),
	)
	return web.Serve(ctx, &http.Server{
		Addr:              cfg.DashAddr,
		Handler:           dash.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}, log)
}

func closeDashboard(dash *web.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dash.Close(ctx); err != nil {
		log.Warn("dashboard fetches still running at exit", zap.Error(err))
	}
}

func flushTracing(shutdown telemetry.ShutdownFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn("trace shutdown", zap.Error(err))
	}
}
