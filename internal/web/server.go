// Package web serves the dashboard as server-rendered HTML. Every browser
// gets a session holding its own page controllers; handlers activate the
// focused page, wait briefly for its fetch and render whatever state it is
// in.
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/logging"
	"github.com/coachtui/woflo/internal/page"
	"github.com/coachtui/woflo/internal/view"
)

type Options struct {
	Client *apiclient.Client
	Log    *zap.Logger
	// RenderWait bounds how long a page request waits for its fetch before
	// rendering the loading state.
	RenderWait  time.Duration
	SessionTTL  time.Duration
	MaxSessions int
	Now         func() time.Time
}

type Server struct {
	client     *apiclient.Client
	log        *zap.Logger
	renderWait time.Duration
	now        func() time.Time
	sessions   *sessions
	html       view.HTML
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("web")
	if opts.MaxSessions < 1 {
		opts.MaxSessions = 256
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 30 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Server{
		client:     opts.Client,
		log:        log,
		renderWait: opts.RenderWait,
		now:        opts.Now,
		sessions:   newSessions(opts.Client, opts.MaxSessions, opts.SessionTTL, log),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.Requests(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessions.middleware)
		r.Get(page.PathOverview, s.handleOverview)
		r.Get(page.PathSchedule, s.handleSchedule)
		r.Post(page.PathScheduleRuns, s.handleCreateRun)
		r.Get(page.PathSchedule+"/{id}", s.handleScheduleRun)
		r.Get(page.PathWorkOrders, s.handleWorkOrders)
		r.Post(page.PathWorkOrders, s.handleCreateWorkOrder)
		r.Get(page.PathTasks, s.handleTasks)
		r.Post(page.PathTasks+"/{id}/lock", s.handleLock(true))
		r.Post(page.PathTasks+"/{id}/unlock", s.handleLock(false))
		r.Get(page.PathJobs, s.handleJobs)
		r.Post(page.PathCredential, s.handleCredential)
		r.Post(page.PathDismiss, s.handleDismiss)
	})

	return r
}

// Handler is Router instrumented with OpenTelemetry.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.Router(), "woflo-dashboard")
}

// Close deactivates every session's controllers.
// Close ends every session and waits, up to ctx, for their fetches to
// return.
func (s *Server) Close(ctx context.Context) error {
	s.sessions.purge()
	return s.sessions.drain(ctx)
}

// Serve runs srv until ctx is done, then shuts it down gracefully.
func Serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down", zap.String("addr", srv.Addr))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "graceful shutdown")
		}
		return nil
	}
}
