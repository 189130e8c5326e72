package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/apiclient"
	"github.com/coachtui/woflo/internal/page"
)

const sessionCookie = "woflo_session"

// Focus keys. Only the focused page keeps its controller active.
const (
	focusOverview   = "overview"
	focusSchedule   = "schedule"
	focusRun        = "schedule-run"
	focusWorkOrders = "work-orders"
	focusTasks      = "tasks"
	focusJobs       = "jobs"
)

// session is one browser's dashboard: its own client credential, its own
// page controllers and a pending flash notice.
type session struct {
	id      string
	log     *zap.Logger
	fetches *sync.WaitGroup

	mu         sync.Mutex
	client     *apiclient.Client
	focus      string
	notice     *page.Notice
	schedule   *page.Schedule
	workOrders *page.WorkOrders
	tasks      *page.Tasks
	jobs       *page.Jobs
}

func newSession(id string, client *apiclient.Client, fetches *sync.WaitGroup, log *zap.Logger) *session {
	s := &session{id: id, log: log.With(zap.String("session", shortSession(id))), fetches: fetches}
	s.bindLocked(client)
	return s
}

func shortSession(id string) string { return page.ShortID(id) }

func (s *session) bindLocked(client *apiclient.Client) {
	s.client = client
	s.schedule = page.NewSchedule(client, s.log)
	s.workOrders = page.NewWorkOrders(client, s.log)
	s.tasks = page.NewTasks(client, s.log)
	s.jobs = page.NewJobs(client, s.log)
	s.schedule.Track(s.fetches)
	s.workOrders.Track(s.fetches)
	s.tasks.Track(s.fetches)
	s.jobs.Track(s.fetches)
}

type deactivator interface{ Deactivate() }

func (s *session) controllersLocked() map[string]deactivator {
	return map[string]deactivator{
		focusSchedule:   s.schedule,
		focusWorkOrders: s.workOrders,
		focusTasks:      s.tasks,
		focusJobs:       s.jobs,
	}
}

// enter makes key the focused page, deactivating every other page. It
// reports whether focus moved.
func (s *session) enter(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.focus == key {
		return false
	}
	for name, c := range s.controllersLocked() {
		if name != key {
			c.Deactivate()
		}
	}
	s.focus = key
	return true
}

// pages returns the current controllers. They are replaced when the
// credential changes, so handlers must not hold them across requests.
func (s *session) pages() (*page.Schedule, *page.WorkOrders, *page.Tasks, *page.Jobs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule, s.workOrders, s.tasks, s.jobs
}

func (s *session) apiClient() *apiclient.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client
}

// rebind swaps the client and starts every page from idle.
func (s *session) rebind(client *apiclient.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.controllersLocked() {
		c.Deactivate()
	}
	s.focus = ""
	s.bindLocked(client)
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.controllersLocked() {
		c.Deactivate()
	}
}

func (s *session) flash(n page.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = &n
}

// takeNotice returns the pending notice once.
func (s *session) takeNotice() *page.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.notice
	s.notice = nil
	return n
}

func (s *session) dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = nil
}

// sessions maps cookie ids to sessions. Idle sessions expire after the TTL
// and the least recently used one is dropped at capacity; either way its
// controllers are deactivated.
type sessions struct {
	client *apiclient.Client
	log    *zap.Logger
	ttl    time.Duration
	mu     sync.Mutex
	lru    *expirable.LRU[string, *session]

	// fetches counts every controller fetch still running, including those
	// of evicted sessions and replaced controllers.
	fetches sync.WaitGroup
}

func newSessions(client *apiclient.Client, size int, ttl time.Duration, log *zap.Logger) *sessions {
	reg := &sessions{client: client, log: log, ttl: ttl}
	reg.lru = expirable.NewLRU[string, *session](size, func(id string, s *session) {
		log.Debug("session evicted", zap.String("session", shortSession(id)))
		s.close()
	}, ttl)
	return reg
}

// lookup returns the session for id, creating one when id is unknown. The
// session's expiry is pushed back on every lookup.
func (reg *sessions) lookup(id string) (*session, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if id != "" {
		if s, ok := reg.lru.Get(id); ok {
			reg.lru.Add(id, s)
			return s, false
		}
	}
	id = uuid.NewString()
	s := newSession(id, reg.client, &reg.fetches, reg.log)
	reg.lru.Add(id, s)
	return s, true
}

func (reg *sessions) Len() int { return reg.lru.Len() }

func (reg *sessions) purge() { reg.lru.Purge() }

// drain waits for every fetch the registry's sessions started.
func (reg *sessions) drain(ctx context.Context) error {
	return page.DrainGroup(ctx, &reg.fetches)
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey{}).(*session)
	return s
}

func (reg *sessions) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(sessionCookie); err == nil {
			id = c.Value
		}
		s, created := reg.lookup(id)
		if created {
			reg.log.Debug("session started", zap.String("session", shortSession(s.id)))
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(reg.ttl / time.Second),
		})
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	})
}
