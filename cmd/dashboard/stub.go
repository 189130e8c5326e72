package main

import (
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/config"
	"github.com/coachtui/woflo/internal/store"
	"github.com/coachtui/woflo/internal/stubapi"
	"github.com/coachtui/woflo/internal/telemetry"
	"github.com/coachtui/woflo/internal/web"
)

var stubSeed bool

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a stand-in scheduling backend backed by SQLite",
	Long: `Serve the backend /v1 surface from a local SQLite file so the dashboard
can run without the real backend. Schedule runs are recorded and queued but
never solved.`,
	RunE: runStub,
}

func init() {
	flags := stubCmd.Flags()
	flags.String("addr", "", "listen address ("+config.EnvPrefix+"_STUB_ADDR)")
	flags.String("data-dir", "", "directory for stub.db ("+config.EnvPrefix+"_STUB_DATA_DIR)")
	flags.String("token", "", "require this bearer token ("+config.EnvPrefix+"_STUB_TOKEN)")
	flags.BoolVar(&stubSeed, "seed", false, "fill an empty store with sample data")
	mustBind(config.KeyStubAddr, flags, "addr")
	mustBind(config.KeyStubDataDir, flags, "data-dir")
	mustBind(config.KeyStubToken, flags, "token")
}

func runStub(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.StubDataDir, 0o755); err != nil {
		return errors.Wrap(err, "mkdir data dir")
	}
	dbPath := filepath.Join(cfg.StubDataDir, "stub.db")
	st, err := store.Open(dbPath)
	if err != nil {
		return errors.Wrap(err, "open stub store")
	}
	defer st.Close()

	if stubSeed {
		if err := stubapi.Seed(ctx, st, time.Now()); err != nil {
			return err
		}
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Options{ServiceName: "woflo-stub", Stdout: cfg.TraceStdout})
	if err != nil {
		return err
	}
	defer flushTracing(shutdownTracing)

	srv := stubapi.Server{Store: st, Token: cfg.StubToken, Log: log.Named("stub")}
	log.Info("stub backend starting",
		zap.String("addr", cfg.StubAddr),
		zap.String("db", dbPath),
		zap.Bool("token", cfg.StubToken != ""),
	)
	return web.Serve(ctx, &http.Server{
		Addr:              cfg.StubAddr,
		Handler:           otelhttp.NewHandler(srv.Router(), "woflo-stub"),
		ReadHeaderTimeout: 10 * time.Second,
	}, log)
}
