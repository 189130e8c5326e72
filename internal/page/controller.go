package page

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/coachtui/woflo/internal/view"
)

// State of a controller's list region.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// FetchFunc loads one collection. query is the controller's current filter,
// empty when unfiltered.
type FetchFunc[T any] func(ctx context.Context, query string) ([]T, error)

// Snapshot is a read-only copy of a controller's view state.
type Snapshot[T any] struct {
	State      State
	Items      []T
	Err        error
	Query      string
	Generation uint64
}

// Region picks which placeholder, if any, the list area shows.
func (s Snapshot[T]) Region() view.Region {
	switch s.State {
	case StateReady:
		if len(s.Items) == 0 {
			return view.RegionEmpty
		}
		return view.RegionContent
	case StateError:
		return view.RegionError
	default:
		return view.RegionLoading
	}
}

// Controller runs the idle → loading → ready|error cycle for one page.
//
// Every fetch is tagged with the generation current when it started. A
// result is applied only if no activation, refresh, query change or
// deactivation happened since; otherwise it is dropped. Fetches are not
// cancelled.
type Controller[T any] struct {
	name  string
	fetch FetchFunc[T]
	log   *zap.Logger

	mu      sync.Mutex
	gen     uint64
	active  bool
	query   string
	state   State
	items   []T
	err     error
	settled chan struct{}

	inflight sync.WaitGroup
	group    *sync.WaitGroup
}

func NewController[T any](name string, fetch FetchFunc[T], log *zap.Logger) *Controller[T] {
	if log == nil {
		log = zap.NewNop()
	}
	settled := make(chan struct{})
	close(settled)
	return &Controller[T]{
		name:    name,
		fetch:   fetch,
		log:     log.With(zap.String("page", name)),
		settled: settled,
	}
}

func (c *Controller[T]) Name() string { return c.name }

// Track counts c's fetches in wg too, so one owner can drain many
// controllers, including ones it has since replaced.
func (c *Controller[T]) Track(wg *sync.WaitGroup) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.group = wg
}

// Drain waits until no fetch started by c is running or ctx is done.
// Abandoned fetches count until they return.
func (c *Controller[T]) Drain(ctx context.Context) error {
	return DrainGroup(ctx, &c.inflight)
}

// DrainGroup waits for wg or ctx, whichever comes first.
func DrainGroup(ctx context.Context, wg *sync.WaitGroup) error {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Activate starts a fetch. The fetch outlives ctx's cancellation but keeps
// its values.
func (c *Controller[T]) Activate(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = true
	c.startLocked(ctx)
}

// Active reports whether the page is activated.
func (c *Controller[T]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Deactivate abandons any in-flight fetch and clears view state.
func (c *Controller[T]) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active && c.state == StateIdle {
		return
	}
	c.active = false
	c.gen++
	c.state = StateIdle
	c.items = nil
	c.err = nil
	c.settleLocked()
}

// Refresh re-enters loading with the current query. It is also the manual
// retry after an error.
func (c *Controller[T]) Refresh(ctx context.Context) {
	c.Activate(ctx)
}

// SetQuery changes the filter and re-fetches. Previous data is discarded.
func (c *Controller[T]) SetQuery(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = query
	c.active = true
	c.startLocked(ctx)
}

func (c *Controller[T]) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until the controller leaves loading or ctx is done, and
// returns the snapshot at that point.
func (c *Controller[T]) Wait(ctx context.Context) Snapshot[T] {
	for {
		c.mu.Lock()
		snap := c.snapshotLocked()
		settled := c.settled
		c.mu.Unlock()

		if snap.State != StateLoading {
			return snap
		}
		select {
		case <-settled:
		case <-ctx.Done():
			return c.Snapshot()
		}
	}
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		State:      c.state,
		Items:      items,
		Err:        c.err,
		Query:      c.query,
		Generation: c.gen,
	}
}

func (c *Controller[T]) startLocked(ctx context.Context) {
	c.gen++
	gen := c.gen
	query := c.query

	c.settleLocked()
	c.settled = make(chan struct{})
	c.state = StateLoading
	c.items = nil
	c.err = nil

	group := c.group
	c.inflight.Add(1)
	if group != nil {
		group.Add(1)
	}
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			c.inflight.Done()
			if group != nil {
				group.Done()
			}
		}()
		items, err := c.fetch(fetchCtx, query)
		c.apply(gen, items, err)
	}()
}

func (c *Controller[T]) apply(gen uint64, items []T, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.log.Debug("discarding stale fetch result", zap.Uint64("generation", gen), zap.Uint64("current", c.gen))
		return
	}
	if err != nil {
		c.state = StateError
		c.err = err
		c.log.Warn("fetch failed", zap.Uint64("generation", gen), zap.Error(err))
	} else {
		c.state = StateReady
		c.items = items
		c.log.Debug("fetch applied", zap.Uint64("generation", gen), zap.Int("items", len(items)))
	}
	c.settleLocked()
}

func (c *Controller[T]) settleLocked() {
	select {
	case <-c.settled:
	default:
		close(c.settled)
	}
}
