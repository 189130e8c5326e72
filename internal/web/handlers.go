package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/page"
)

func wantsRefresh(r *http.Request) bool {
	return r.URL.Query().Get(page.RefreshParam) != ""
}

func retryHref(r *http.Request) string {
	return page.RetryHref(r.URL.Path, r.URL.Query())
}

// activate starts a fetch when the page was not active or a refresh was
// asked for. Otherwise the request re-attaches to the current generation.
func activate[T any](r *http.Request, c *page.Controller[T]) {
	if !c.Active() || wantsRefresh(r) {
		c.Activate(r.Context())
	}
}

// settle waits up to the render budget for c to leave loading.
func settle[T any](s *Server, r *http.Request, c *page.Controller[T]) page.Snapshot[T] {
	ctx, cancel := context.WithTimeout(r.Context(), s.renderWait)
	defer cancel()
	return c.Wait(ctx)
}

func optsFor[T any](section string, snap page.Snapshot[T]) renderOpts {
	opts := renderOpts{section: section, loading: snap.State == page.StateLoading}
	if snap.State == page.StateError {
		opts.status = http.StatusBadGateway
	}
	return opts
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return page.PathOverview
	}
	return next
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusOverview)

	o := page.LoadOverview(r.Context(), sess.apiClient())
	opts := renderOpts{section: page.PathOverview}
	if o.Err != nil {
		s.log.Warn("overview fetch failed", zap.Error(o.Err))
		opts.status = http.StatusBadGateway
	}
	s.render(w, r, sess, page.OverviewView(s.html, o, retryHref(r)), opts)
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusSchedule)
	schedule, _, _, _ := sess.pages()

	activate(r, schedule.Controller)
	snap := settle(s, r, schedule.Controller)
	s.render(w, r, sess, page.ScheduleView(s.html, snap, retryHref(r)), optsFor(page.PathSchedule, snap))
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusSchedule)
	schedule, _, _, _ := sess.pages()

	sess.flash(schedule.CreateDefaultRun(r.Context(), s.now()))
	s.redirect(w, r, page.PathSchedule)
}

func (s *Server) handleScheduleRun(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusRun)
	id := chi.URLParam(r, "id")

	d := page.LoadScheduleRun(r.Context(), sess.apiClient(), id)
	opts := renderOpts{section: page.PathSchedule}
	switch {
	case apiclient.IsNotFound(d.Err):
		opts.status = http.StatusNotFound
	case d.Err != nil:
		s.log.Warn("schedule run fetch failed", zap.String("schedule_run_id", id), zap.Error(d.Err))
		opts.status = http.StatusBadGateway
	}
	s.render(w, r, sess, page.ScheduleDetailView(s.html, d.Run, d.Items, d.Err, retryHref(r)), opts)
}

func (s *Server) handleWorkOrders(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusWorkOrders)
	_, orders, _, _ := sess.pages()

	filter := strings.TrimSpace(r.URL.Query().Get("status"))
	if filter == "" {
		filter = page.FilterAll
	}
	switch {
	case !orders.Active() || orders.Filter() != filter:
		orders.SetFilter(r.Context(), filter)
	case wantsRefresh(r):
		orders.Refresh(r.Context())
	}

	snap := settle(s, r, orders.Controller)
	v := page.WorkOrdersView(s.html, snap, orders.Filter(), retryHref(r), s.now())
	s.render(w, r, sess, v, optsFor(page.PathWorkOrders, snap))
}

// draftFromForm checks only that fields have the right shape; the backend
// validates the rest.
func draftFromForm(form url.Values) (model.WorkOrderDraft, error) {
	draft := model.WorkOrderDraft{
		UnitID:    strings.TrimSpace(form.Get("unit_id")),
		AssetType: strings.TrimSpace(form.Get("asset_type")),
		Location:  strings.TrimSpace(form.Get("location")),
		Notes:     strings.TrimSpace(form.Get("notes")),
	}
	if raw := strings.TrimSpace(form.Get("priority")); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			return draft, errors.Newf("priority must be a whole number, got %q", raw)
		}
		draft.Priority = p
	}
	if raw := strings.TrimSpace(form.Get("due_date")); raw != "" {
		d, err := model.ParseDate(raw)
		if err != nil {
			return draft, errors.Newf("due date must be YYYY-MM-DD, got %q", raw)
		}
		draft.DueDate = &d
	}
	switch strings.ToLower(strings.TrimSpace(form.Get("parts_required"))) {
	case "yes", "on", "true", "1":
		draft.PartsRequired = true
	}
	return draft, nil
}

func (s *Server) handleCreateWorkOrder(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusWorkOrders)
	_, orders, _, _ := sess.pages()
	back := page.WorkOrdersFilterHref(orders.Filter())

	if err := r.ParseForm(); err != nil {
		sess.flash(page.Failure("Failed to create work order", err))
		s.redirect(w, r, back)
		return
	}
	draft, err := draftFromForm(r.PostForm)
	if err != nil {
		sess.flash(page.Failure("Failed to create work order", err))
		s.redirect(w, r, back)
		return
	}
	sess.flash(orders.CreateWorkOrder(r.Context(), draft))
	s.redirect(w, r, back)
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusTasks)
	_, _, tasks, _ := sess.pages()

	activate(r, tasks.Controller)
	snap := settle(s, r, tasks.Controller)
	s.render(w, r, sess, page.TasksView(s.html, snap, retryHref(r)), optsFor(page.PathTasks, snap))
}

func (s *Server) handleLock(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r.Context())
		sess.enter(focusTasks)
		_, _, tasks, _ := sess.pages()

		sess.flash(tasks.SetLock(r.Context(), chi.URLParam(r, "id"), locked))
		s.redirect(w, r, page.PathTasks)
	}
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	sess.enter(focusJobs)
	_, _, _, jobs := sess.pages()

	activate(r, jobs.Controller)
	snap := settle(s, r, jobs.Controller)
	s.render(w, r, sess, page.JobsView(s.html, snap, retryHref(r)), optsFor(page.PathJobs, snap))
}

// handleCredential swaps the session's bearer token. An empty token goes
// back to the configured one.
func (s *Server) handleCredential(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if err := r.ParseForm(); err != nil {
		sess.flash(page.Failure("Failed to update credential", err))
		s.redirect(w, r, page.PathOverview)
		return
	}
	token := strings.TrimSpace(r.PostForm.Get("token"))
	if token == "" {
		sess.rebind(s.client)
		sess.flash(page.Success("Credential reset to the configured default"))
	} else {
		sess.rebind(s.client.WithCredential(token))
		sess.flash(page.Success("Credential updated"))
	}
	s.redirect(w, r, safeNext(r.PostForm.Get("next")))
}

func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	sessionFrom(r.Context()).dismiss()
	s.redirect(w, r, safeNext(r.URL.Query().Get("next")))
}
