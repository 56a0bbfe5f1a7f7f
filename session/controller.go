// Package session owns the client-side view of the todo list: the current
// view parameters, the loaded page, the global aggregate counts and the
// pending-delete buffer. It is the only component that mutates this state;
// renderers observe it through snapshots.
package session

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/taskleaf/taskleaf/models"
)

// Repository is the boundary to the remote todo store. *client.Client
// satisfies it; tests substitute an in-memory fake.
type Repository interface {
	QueryPage(ctx context.Context, query models.Query) (*models.Page, error)
	Create(ctx context.Context, title string) (*models.Todo, error)
	Toggle(ctx context.Context, id string, completed bool) (*models.Todo, error)
	Remove(ctx context.Context, id string) error
	ClearCompleted(ctx context.Context, q string) (int, error)
}

// Snapshot is an immutable copy of the controller state handed to
// observers. Items is only the current page; the Total* fields cover the
// whole search-scoped set and must never be recomputed from Items.
type Snapshot struct {
	View           models.ViewState
	Items          []models.Todo
	TotalItems     int
	TotalPages     int
	TotalActive    int
	TotalCompleted int
	Loading        bool
	Adding         bool
	DeletingID     string       // row in its leaving delay, still visible
	PendingDelete  *models.Todo // soft-deleted, undo window open
	Err            string       // dismissible error notice, empty when none
}

// Options configures a Controller. Zero values select the defaults; the
// delays are configurable so tests can run with short timers.
type Options struct {
	PageSize      int
	DebounceDelay time.Duration // search inactivity before the query term takes effect
	SettleDelay   time.Duration // delay before a removed row leaves the list
	UndoWindow    time.Duration // how long a soft delete can be undone

	// OnChange is invoked after every observable state change.
	OnChange func(Snapshot)

	// OnViewChange receives the URL form of the view state whenever it
	// changes. It is not invoked for the state the controller was created
	// with, so restoring from a URL does not immediately rewrite it.
	OnViewChange func(url.Values)
}

const (
	defaultDebounceDelay = 300 * time.Millisecond
	defaultSettleDelay   = 200 * time.Millisecond
	defaultUndoWindow    = 5 * time.Second
)

// Controller drives all reads and writes for one todo session
type Controller struct {
	repo Repository
	opts Options

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	view       models.ViewState
	effectiveQ string // debounced search term actually used for loads

	items          []models.Todo
	totalItems     int
	totalPages     int
	totalActive    int
	totalCompleted int

	loading bool
	adding  bool
	errMsg  string

	debounceTimer *time.Timer
	settleTimer   *time.Timer
	undoTimer     *time.Timer
	deleting      *models.Todo // in settle delay, still visible
	pending       *models.Todo // single-slot soft-delete buffer

	// loadSeq tags the most recent load; responses carrying an older tag
	// are discarded so a slow superseded reload can't clobber fresh state.
	loadSeq uint64
}

// New creates a controller starting from the given view state (typically
// parsed from the URL). Call Start to issue the initial load.
func New(repo Repository, view models.ViewState, opts Options) *Controller {
	if opts.PageSize < 1 {
		opts.PageSize = models.DefaultPageSize
	}
	if opts.DebounceDelay <= 0 {
		opts.DebounceDelay = defaultDebounceDelay
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = defaultSettleDelay
	}
	if opts.UndoWindow <= 0 {
		opts.UndoWindow = defaultUndoWindow
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		repo:       repo,
		opts:       opts,
		ctx:        ctx,
		cancel:     cancel,
		view:       view,
		effectiveQ: strings.TrimSpace(view.Q),
		items:      []models.Todo{},
		totalPages: 1,
	}
}

// Start issues the initial page load
func (c *Controller) Start() {
	c.mu.Lock()
	c.loadLocked()
	c.mu.Unlock()
	c.notify()
}

// Close stops all timers and commits any still-pending delete so it is
// not silently lost on exit.
func (c *Controller) Close() {
	c.mu.Lock()
	stopTimer(&c.debounceTimer)
	stopTimer(&c.settleTimer)
	stopTimer(&c.undoTimer)
	pending := c.pending
	c.pending = nil
	c.deleting = nil
	c.mu.Unlock()

	if pending != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		c.repo.Remove(ctx, pending.ID)
		cancel()
	}
	c.cancel()
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		View:           c.view,
		Items:          append([]models.Todo(nil), c.items...),
		TotalItems:     c.totalItems,
		TotalPages:     c.totalPages,
		TotalActive:    c.totalActive,
		TotalCompleted: c.totalCompleted,
		Loading:        c.loading,
		Adding:         c.adding,
		Err:            c.errMsg,
	}
	if c.deleting != nil {
		snap.DeletingID = c.deleting.ID
	}
	if c.pending != nil {
		p := *c.pending
		snap.PendingDelete = &p
	}
	return snap
}

// ----------------------------------------------------------------------
// View-parameter changes
// ----------------------------------------------------------------------

// SetFilter switches the status filter tab and resets to page 1
func (c *Controller) SetFilter(filter models.Filter) {
	c.mu.Lock()
	filter = models.NormalizeFilter(string(filter))
	if c.view.Filter == filter {
		c.mu.Unlock()
		return
	}
	c.view.Filter = filter
	c.view.Page = 1
	c.loadLocked()
	c.mu.Unlock()
	c.viewChanged()
	c.notify()
}

// SetSort changes the sort key and order and resets to page 1
func (c *Controller) SetSort(sortBy models.SortBy, sortOrder models.SortOrder) {
	c.mu.Lock()
	sortBy = models.NormalizeSortBy(string(sortBy))
	sortOrder = models.NormalizeSortOrder(string(sortOrder))
	if c.view.SortBy == sortBy && c.view.SortOrder == sortOrder {
		c.mu.Unlock()
		return
	}
	c.view.SortBy = sortBy
	c.view.SortOrder = sortOrder
	c.view.Page = 1
	c.loadLocked()
	c.mu.Unlock()
	c.viewChanged()
	c.notify()
}

// SetSearch records a search keystroke. The view state (and URL) update
// immediately; the term only becomes effective, resetting to page 1 and
// reloading, after the debounce delay passes without further keystrokes.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.view.Q = q
	stopTimer(&c.debounceTimer)
	c.debounceTimer = time.AfterFunc(c.opts.DebounceDelay, func() {
		c.applyDebouncedSearch(q)
	})
	c.mu.Unlock()
	c.viewChanged()
	c.notify()
}

func (c *Controller) applyDebouncedSearch(q string) {
	c.mu.Lock()
	if c.view.Q != q {
		// A newer keystroke restarted the timer
		c.mu.Unlock()
		return
	}
	c.effectiveQ = strings.TrimSpace(q)
	c.view.Page = 1
	c.loadLocked()
	c.mu.Unlock()
	c.viewChanged()
	c.notify()
}

// SetPage navigates to the given page, clamped to the known range
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	if page < 1 {
		page = 1
	}
	if page > c.totalPages {
		page = c.totalPages
	}
	if page == c.view.Page {
		c.mu.Unlock()
		return
	}
	c.view.Page = page
	c.loadLocked()
	c.mu.Unlock()
	c.viewChanged()
	c.notify()
}

// NextPage advances one page if possible
func (c *Controller) NextPage() {
	c.mu.Lock()
	page := c.view.Page + 1
	c.mu.Unlock()
	c.SetPage(page)
}

// PrevPage goes back one page if possible
func (c *Controller) PrevPage() {
	c.mu.Lock()
	page := c.view.Page - 1
	c.mu.Unlock()
	c.SetPage(page)
}

// Reload refetches the current page without changing view parameters
func (c *Controller) Reload() {
	c.mu.Lock()
	c.loadLocked()
	c.mu.Unlock()
	c.notify()
}

// ClearError dismisses the current error notice
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()
}

// loadLocked issues an asynchronous page load tagged with a fresh
// sequence number. Must be called with the lock held.
func (c *Controller) loadLocked() {
	c.loadSeq++
	seq := c.loadSeq
	c.loading = true

	query := c.view.Query(c.opts.PageSize)
	query.Q = c.effectiveQ

	go func() {
		page, err := c.repo.QueryPage(c.ctx, query)

		c.mu.Lock()
		if seq != c.loadSeq {
			// Superseded by a newer load; drop this response
			c.mu.Unlock()
			return
		}
		c.loading = false
		if err != nil {
			// Keep the last good state on screen
			c.errMsg = "Failed to load todos"
		} else {
			c.items = page.Items
			c.totalItems = page.TotalItems
			c.totalPages = page.TotalPages
			c.totalActive = page.TotalActive
			c.totalCompleted = page.TotalCompleted
		}
		c.mu.Unlock()
		c.notify()
	}()
}

// ----------------------------------------------------------------------
// Mutations
// ----------------------------------------------------------------------

// Add creates a new todo and, on success, jumps to page 1 and reloads so
// the new item is visible under the default newest-first sort. The page
// list is not patched locally.
func (c *Controller) Add(title string) {
	c.mu.Lock()
	c.adding = true
	c.mu.Unlock()
	c.notify()

	go func() {
		_, err := c.repo.Create(c.ctx, title)

		c.mu.Lock()
		c.adding = false
		if err != nil {
			c.errMsg = "Failed to add todo"
			c.mu.Unlock()
			c.notify()
			return
		}
		c.view.Page = 1
		c.loadLocked()
		c.mu.Unlock()
		c.viewChanged()
		c.notify()
	}()
}

// Toggle flips the completion state of an item on the current page. On
// success the item is replaced in place and the aggregate counts are
// adjusted by one in each direction; no reload is issued.
func (c *Controller) Toggle(id string) {
	c.mu.Lock()
	var prior *models.Todo
	for i := range c.items {
		if c.items[i].ID == id {
			prior = &c.items[i]
			break
		}
	}
	if prior == nil {
		c.mu.Unlock()
		return
	}
	next := !prior.Completed
	c.mu.Unlock()

	go func() {
		updated, err := c.repo.Toggle(c.ctx, id, next)

		c.mu.Lock()
		if err != nil {
			if isNotFound(err) {
				// Already gone remotely; drop it locally
				c.dropItemLocked(id)
			} else {
				c.errMsg = "Failed to update todo"
			}
			c.mu.Unlock()
			c.notify()
			return
		}

		for i := range c.items {
			if c.items[i].ID != id {
				continue
			}
			if c.items[i].Completed != updated.Completed {
				if updated.Completed {
					c.totalActive--
					c.totalCompleted++
				} else {
					c.totalActive++
					c.totalCompleted--
				}
			}
			c.items[i] = *updated
			break
		}
		c.mu.Unlock()
		c.notify()
	}()
}

// Remove starts a soft delete: after the settle delay the item leaves the
// visible list and sits in the single-slot pending buffer for the undo
// window, then the remote delete commits. A second delete request while
// one is pending force-commits the earlier one immediately.
func (c *Controller) Remove(id string) {
	c.mu.Lock()
	var target *models.Todo
	for i := range c.items {
		if c.items[i].ID == id {
			item := c.items[i]
			target = &item
			break
		}
	}
	if target == nil || (c.deleting != nil && c.deleting.ID == id) {
		c.mu.Unlock()
		return
	}

	// Single-slot buffer: displace whatever is already on its way out
	if c.deleting != nil {
		stopTimer(&c.settleTimer)
		displaced := c.deleting
		c.deleting = nil
		c.removeItemLocked(displaced.ID)
		c.subtractCountsLocked(displaced)
		go c.commitRemove(displaced)
	}
	if c.pending != nil {
		c.forceCommitPendingLocked()
	}

	c.deleting = target
	c.settleTimer = time.AfterFunc(c.opts.SettleDelay, func() {
		c.onSettle(id)
	})
	c.mu.Unlock()
	c.notify()
}

// onSettle moves the item from the visible list into the pending buffer
// and arms the undo timer.
func (c *Controller) onSettle(id string) {
	c.mu.Lock()
	if c.deleting == nil || c.deleting.ID != id {
		c.mu.Unlock()
		return
	}
	item := c.deleting
	c.deleting = nil

	c.removeItemLocked(id)
	c.subtractCountsLocked(item)
	c.pending = item

	c.undoTimer = time.AfterFunc(c.opts.UndoWindow, func() {
		c.onUndoExpired(id)
	})
	c.mu.Unlock()
	c.notify()
}

// onUndoExpired commits the pending delete once the undo window closes
func (c *Controller) onUndoExpired(id string) {
	c.mu.Lock()
	if c.pending == nil || c.pending.ID != id {
		c.mu.Unlock()
		return
	}
	item := c.pending
	c.pending = nil
	c.mu.Unlock()

	c.commitRemove(item)
}

// commitRemove performs the remote delete. The buffer is already cleared;
// on failure an error notice is raised and no retry is attempted.
func (c *Controller) commitRemove(item *models.Todo) {
	err := c.repo.Remove(c.ctx, item.ID)
	if err != nil && !isNotFound(err) && !errors.Is(err, context.Canceled) {
		c.mu.Lock()
		c.errMsg = "Failed to delete todo"
		c.mu.Unlock()
	}
	c.notify()
}

// Undo cancels the pending delete, reinstates the item at the front of
// the visible list and rolls back the count subtraction. It is a no-op
// when nothing is pending.
func (c *Controller) Undo() {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return
	}
	stopTimer(&c.undoTimer)
	item := c.pending
	c.pending = nil

	c.items = append([]models.Todo{*item}, c.items...)
	c.totalItems++
	if item.Completed {
		c.totalCompleted++
	} else {
		c.totalActive++
	}
	c.mu.Unlock()
	c.notify()
}

// ClearCompleted removes every completed todo in the current search scope
// server-side, then resets to page 1 and reloads. No-op when the global
// completed count is zero.
func (c *Controller) ClearCompleted() {
	c.mu.Lock()
	if c.totalCompleted == 0 {
		c.mu.Unlock()
		return
	}
	q := c.effectiveQ
	c.mu.Unlock()

	go func() {
		_, err := c.repo.ClearCompleted(c.ctx, q)

		c.mu.Lock()
		if err != nil {
			c.errMsg = "Failed to clear completed todos"
			c.mu.Unlock()
			c.notify()
			return
		}
		c.view.Page = 1
		c.loadLocked()
		c.mu.Unlock()
		c.viewChanged()
		c.notify()
	}()
}

// ----------------------------------------------------------------------
// Internals
// ----------------------------------------------------------------------

// forceCommitPendingLocked commits the current pending delete right away.
// Must be called with the lock held.
func (c *Controller) forceCommitPendingLocked() {
	stopTimer(&c.undoTimer)
	item := c.pending
	c.pending = nil
	go c.commitRemove(item)
}

// removeItemLocked drops an item from the visible list
func (c *Controller) removeItemLocked(id string) {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// subtractCountsLocked removes one item's contribution from the counts
func (c *Controller) subtractCountsLocked(item *models.Todo) {
	c.totalItems--
	if item.Completed {
		c.totalCompleted--
	} else {
		c.totalActive--
	}
}

// dropItemLocked removes an item that turned out to be gone remotely
func (c *Controller) dropItemLocked(id string) {
	for i := range c.items {
		if c.items[i].ID == id {
			item := c.items[i]
			c.removeItemLocked(id)
			c.subtractCountsLocked(&item)
			return
		}
	}
}

func (c *Controller) notify() {
	if c.opts.OnChange == nil {
		return
	}
	c.opts.OnChange(c.Snapshot())
}

func (c *Controller) viewChanged() {
	if c.opts.OnViewChange == nil {
		return
	}
	c.mu.Lock()
	values := c.view.Values()
	c.mu.Unlock()
	c.opts.OnViewChange(values)
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// isNotFound reports whether err is the repository's "already gone" error
func isNotFound(err error) bool {
	var nf interface{ NotFound() bool }
	return errors.As(err, &nf) && nf.NotFound()
}
