package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/model"
	"github.com/coachtui/woflo/internal/page"
	"github.com/coachtui/woflo/internal/store"
	"github.com/coachtui/woflo/internal/stubapi"
)

var fixedNow = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type dashboard struct {
	url     string
	browser *http.Client
	server  *Server
}

func newBackendClient(t *testing.T, baseURL, token string) *apiclient.Client {
	t.Helper()
	transport := &http.Transport{}
	t.Cleanup(transport.CloseIdleConnections)
	return apiclient.New(apiclient.Config{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Transport: transport, Timeout: 5 * time.Second},
		Logger:     zaptest.NewLogger(t),
	})
}

func newStubBackend(t *testing.T, token string) string {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, stubapi.Seed(context.Background(), st, fixedNow))

	srv := httptest.NewServer(stubapi.Server{Store: st, Token: token, Log: zaptest.NewLogger(t), Now: func() time.Time { return fixedNow }}.Router())
	t.Cleanup(srv.Close)
	return srv.URL
}

func newDashboard(t *testing.T, client *apiclient.Client, renderWait time.Duration) *dashboard {
	t.Helper()
	srv := New(Options{
		Client:      client,
		Log:         zaptest.NewLogger(t),
		RenderWait:  renderWait,
		SessionTTL:  time.Hour,
		MaxSessions: 8,
		Now:         func() time.Time { return fixedNow },
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, srv.Close(ctx))
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &dashboard{url: ts.URL, browser: &http.Client{Jar: jar, Timeout: 10 * time.Second}, server: srv}
}

func (d *dashboard) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := d.browser.Get(d.url + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (d *dashboard) post(t *testing.T, path string, form url.Values) (int, string) {
	t.Helper()
	resp, err := d.browser.PostForm(d.url+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestOverviewSummarizesSeededShop(t *testing.T) {
	d := newDashboard(t, newBackendClient(t, newStubBackend(t, ""), ""), 5*time.Second)

	status, body := d.get(t, "/")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Schedule Board")
	assert.Contains(t, body, "High Priority")
	assert.Contains(t, body, `aria-current="page"`)
	assert.NotContains(t, body, `data-region="error"`)
}

func TestCreateScheduleRunShowsNoticeAndNewRun(t *testing.T) {
	d := newDashboard(t, newBackendClient(t, newStubBackend(t, ""), ""), 5*time.Second)

	status, body := d.get(t, page.PathSchedule)
	require.Equal(t, http.StatusOK, status)
	before := strings.Count(body, "Run #")
	assert.Equal(t, 1, before)

	status, body = d.post(t, page.PathScheduleRuns, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `data-notice="success"`)
	assert.Contains(t, body, "queued")
	assert.Equal(t, before+1, strings.Count(body, "Run #"))

	// The notice is shown once.
	_, body = d.get(t, page.PathSchedule)
	assert.NotContains(t, body, "data-notice")
}

func TestScheduleRunDetail(t *testing.T) {
	backendURL := newStubBackend(t, "")
	client := newBackendClient(t, backendURL, "")
	d := newDashboard(t, client, 5*time.Second)

	runs, err := client.ListScheduleRuns(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)

	status, body := d.get(t, page.RunPath(runs[0].ID))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Ana Ruiz")
	assert.Contains(t, body, "Bay 2 (heavy)")

	status, body = d.get(t, page.RunPath("missing"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body, "Not found.")
}

func TestBackendFailureRendersErrorRegion(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"detail":"database unavailable"}`)
	}))
	t.Cleanup(backend.Close)
	d := newDashboard(t, newBackendClient(t, backend.URL, ""), 5*time.Second)

	for _, path := range []string{page.PathTasks, page.PathSchedule, page.PathWorkOrders, page.PathJobs, page.PathOverview} {
		status, body := d.get(t, path)
		assert.Equal(t, http.StatusBadGateway, status, path)
		assert.Contains(t, body, `data-region="error"`, path)
		assert.Contains(t, body, "database unavailable", path)
		assert.Contains(t, body, "refresh=1", path)
	}
}

func TestTaskLockRoundTrip(t *testing.T) {
	backendURL := newStubBackend(t, "")
	client := newBackendClient(t, backendURL, "")
	d := newDashboard(t, client, 5*time.Second)

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	var unlocked model.Task
	for _, task := range tasks {
		if !task.LockFlag {
			unlocked = task
			break
		}
	}
	require.NotEmpty(t, unlocked.ID)

	status, body := d.get(t, page.PathTasks)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, strings.Count(body, ">Locked<"))

	status, body = d.post(t, page.TaskLockPath(unlocked.ID, true), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "#"+page.ShortID(unlocked.ID)+" locked")
	assert.Equal(t, 2, strings.Count(body, ">Locked<"))

	_, body = d.post(t, page.TaskLockPath("missing", true), nil)
	assert.Contains(t, body, `data-notice="danger"`)
	assert.Contains(t, body, "Failed to lock task")
	assert.Equal(t, 2, strings.Count(body, ">Locked<"), "failed action leaves data alone")
}

func TestWorkOrderFilterAndCreate(t *testing.T) {
	d := newDashboard(t, newBackendClient(t, newStubBackend(t, ""), ""), 5*time.Second)

	status, body := d.get(t, page.WorkOrdersFilterHref("completed"))
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "TRK-0977")
	assert.NotContains(t, body, "TRL-2201")

	_, body = d.post(t, page.PathWorkOrders, url.Values{
		"unit_id":        {"TRK-5000"},
		"asset_type":     {"tractor"},
		"priority":       {"4"},
		"due_date":       {"2025-03-10"},
		"parts_required": {"yes"},
	})
	assert.Contains(t, body, `data-notice="success"`)
	assert.Contains(t, body, "created")
	assert.NotContains(t, body, "TRK-5000", "new orders are todo, the completed filter stays")

	_, body = d.get(t, page.PathWorkOrders)
	assert.Contains(t, body, "TRK-5000")

	_, body = d.post(t, page.PathWorkOrders, url.Values{"unit_id": {"X"}, "asset_type": {"y"}, "priority": {"high"}})
	assert.Contains(t, body, "priority must be a whole number")

	_, body = d.post(t, page.PathWorkOrders, url.Values{"priority": {"3"}})
	assert.Contains(t, body, `data-notice="danger"`)
	assert.Contains(t, body, "unit_id: field required")
}

func TestSlowFetchRendersLoadingThenReattaches(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(backend.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})
	d := newDashboard(t, newBackendClient(t, backend.URL, ""), 20*time.Millisecond)

	status, body := d.get(t, page.PathJobs)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `data-region="loading"`)
	assert.Contains(t, body, `http-equiv="refresh"`)

	close(release)
	require.Eventually(t, func() bool {
		_, body = d.get(t, page.PathJobs)
		return strings.Contains(body, `data-region="empty"`)
	}, 5*time.Second, 20*time.Millisecond)
	assert.EqualValues(t, 1, calls.Load(), "reloads attach to the running fetch")
}

func TestCredentialPerSession(t *testing.T) {
	backendURL := newStubBackend(t, "s3cret")
	d := newDashboard(t, newBackendClient(t, backendURL, ""), 5*time.Second)

	status, body := d.get(t, page.PathTasks)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body, "Unauthorized")

	status, body = d.post(t, page.PathCredential, url.Values{"token": {"s3cret"}, "next": {page.PathTasks}})
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "Credential updated")
	assert.NotContains(t, body, `data-region="error"`)

	other := newDashboard(t, newBackendClient(t, backendURL, ""), 5*time.Second)
	status, _ = other.get(t, page.PathTasks)
	assert.Equal(t, http.StatusBadGateway, status, "credential stays in its session")
}

func TestDismissNotice(t *testing.T) {
	d := newDashboard(t, newBackendClient(t, newStubBackend(t, ""), ""), 5*time.Second)

	sessID := startSession(t, d)
	sess, ok := d.server.sessions.lru.Peek(sessID)
	require.True(t, ok)
	sess.flash(page.Success("hello"))

	status, body := d.post(t, page.PathDismiss+"?next="+url.QueryEscape(page.PathJobs), nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "hello")
	assert.Contains(t, body, "<title>Jobs")
}

func startSession(t *testing.T, d *dashboard) string {
	t.Helper()
	_, _ = d.get(t, "/healthz")
	_, _ = d.get(t, page.PathJobs)
	u, err := url.Parse(d.url)
	require.NoError(t, err)
	for _, c := range d.browser.Jar.Cookies(u) {
		if c.Name == sessionCookie {
			return c.Value
		}
	}
	t.Fatal("no session cookie")
	return ""
}

func TestSessionEvictionDeactivates(t *testing.T) {
	client := newBackendClient(t, "http://127.0.0.1:1", "")
	reg := newSessions(client, 1, time.Hour, zaptest.NewLogger(t))

	first, created := reg.lookup("")
	require.True(t, created)
	first.tasks.Activate(context.Background())
	require.True(t, first.tasks.Active())

	again, created := reg.lookup(first.id)
	assert.False(t, created)
	assert.Same(t, first, again)

	_, created = reg.lookup("unknown")
	require.True(t, created)
	assert.Equal(t, 1, reg.Len())
	assert.False(t, first.tasks.Active())

	// The evicted session's fetch still runs until the backend answers.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, reg.drain(ctx))
	assert.Equal(t, page.StateIdle, first.tasks.Snapshot().State)
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/tasks", safeNext("/tasks"))
	assert.Equal(t, "/work-orders?status=todo", safeNext("/work-orders?status=todo"))
	assert.Equal(t, "/", safeNext("https://evil.example"))
	assert.Equal(t, "/", safeNext("//evil.example"))
	assert.Equal(t, "/", safeNext(""))
}

func TestDraftFromForm(t *testing.T) {
	draft, err := draftFromForm(url.Values{
		"unit_id":        {" TRK-1 "},
		"asset_type":     {"tractor"},
		"priority":       {"5"},
		"due_date":       {"2025-04-01"},
		"parts_required": {"no"},
	})
	require.NoError(t, err)
	assert.Equal(t, "TRK-1", draft.UnitID)
	assert.Equal(t, 5, draft.Priority)
	require.NotNil(t, draft.DueDate)
	assert.Equal(t, "2025-04-01", draft.DueDate.String())
	assert.False(t, draft.PartsRequired)

	_, err = draftFromForm(url.Values{"due_date": {"tomorrow"}})
	assert.Error(t, err)
}

func TestStandaloneDocument(t *testing.T) {
	doc, err := Standalone(page.View{Title: "Tasks", Body: "<p>ok</p>"}, page.PathTasks)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<title>Tasks · Woflo</title>")
	assert.Contains(t, string(doc), "<p>ok</p>")
	assert.Contains(t, string(doc), `href="/tasks" class="font-semibold underline"`)
	assert.NotContains(t, string(doc), "http-equiv")
}
