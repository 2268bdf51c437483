package hxbind

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pthm/hxbind/lib/encoding"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Container is one independently-managed bound region of the document. It
// owns its template, pagination state, page cache, controls, and error
// handling; nothing is shared across containers.
//
// All exported methods are safe for concurrent use. Provider fetches run in
// the calling goroutine with the container lock released, guarded by a
// generation token so superseded responses are discarded on arrival.
type Container struct {
	id       string
	node     *html.Node
	cfg      *ContainerConfig
	opts     Options
	provider Provider
	hydrate  *hydrator
	retry    *retryPolicy
	tokens   *encoding.Encoder
	log      *zap.Logger
	onEvent  func(Event)

	// ctx is the scan context, used by debounce-timer reloads that have no
	// caller to supply one.
	ctx context.Context

	mu        sync.Mutex
	pager     *pager
	binder    *binder
	tmpl      *html.Node
	emptyNode *html.Node
	rendered  []*html.Node
	// generation is bumped for every accepted request; a response only
	// applies when its generation still matches.
	generation uint64
	lastErr    error
	released   bool
}

// newContainer builds a container from a discovered element. Configuration
// and template errors abort this container only.
func newContainer(ctx context.Context, node *html.Node, provider Provider, opts Options, tokens *encoding.Encoder, onEvent func(Event)) (*Container, error) {
	cfg, err := parseContainerConfig(node)
	if err != nil {
		return nil, err
	}

	id := attrVal(node, "id")
	if id == "" {
		id = uuid.NewString()
	}

	c := &Container{
		id:       id,
		node:     node,
		cfg:      cfg,
		opts:     opts,
		provider: provider,
		hydrate:  newHydrator(opts),
		retry:    newRetryPolicy(opts),
		tokens:   tokens,
		log:      opts.Logger.With(zap.String("container", id), zap.String("program", cfg.ProgramID)),
		onEvent:  onEvent,
		ctx:      ctx,
		pager:    newPager(cfg, opts.MaxCachedPages),
	}

	c.restoreState()

	c.tmpl, err = captureTemplate(node)
	if err != nil {
		return nil, err
	}
	if empties := findAllAttr(node, attrEmpty, true); len(empties) > 0 {
		c.emptyNode = empties[0]
		setVisible(c.emptyNode, false)
	}
	c.binder = newBinder(c)
	return c, nil
}

// restoreState rehydrates filters and sort from a previously written
// hb-state token. Invalid or tampered tokens are logged and ignored; the
// per-key attribute mirrors already parsed by the config remain in force
// for any key the token does not carry.
func (c *Container) restoreState() {
	token, ok := Attr(c.node, attrState)
	if !ok || token == "" {
		return
	}
	var snap stateSnapshot
	if err := wrapTokenError(c.tokens.Decode(token, &snap)); err != nil {
		c.log.Warn("ignoring invalid state token", zap.Error(err))
		return
	}
	for k, v := range snap.Filters {
		c.cfg.Filters[k] = v
	}
	if snap.Sort != "" {
		c.cfg.Sort = snap.Sort
	}
	mirrorFilters(c.node, c.cfg.Filters)
}

// ID returns the container's identity (the element id, or a generated one).
func (c *Container) ID() string { return c.id }

// Node returns the live container element.
func (c *Container) Node() *html.Node { return c.node }

// Program returns the bound program identifier.
func (c *Container) Program() string { return c.cfg.ProgramID }

// State reports the pagination state machine's current state: "idle",
// "loading", "error", or "exhausted".
func (c *Container) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.state.String()
}

// Page returns the current 1-based page.
func (c *Container) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.page
}

// TotalPages returns the navigable page count, 0 before the first response.
func (c *Container) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.totalPages()
}

// LoadedCount returns the number of currently rendered records.
func (c *Container) LoadedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rendered)
}

// HasMore reports whether further pages exist under the current filters.
func (c *Container) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pager.hasMore
}

// Err returns the terminal error from the last failed load, nil when the
// container is healthy.
func (c *Container) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Filters returns a copy of the current filter snapshot.
func (c *Container) Filters() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyFilters(c.cfg.Filters)
}

// SetFilter writes one filter value and schedules the debounced reload.
// A nil value deletes the key. Rapid successive calls coalesce into a
// single fetch.
func (c *Container) SetFilter(key string, value any) {
	c.setFilterDebounced(key, value, c.binder.debounce)
}

func (c *Container) setFilterDebounced(key string, value any, d *debouncer) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	if value == nil {
		delete(c.cfg.Filters, key)
	} else {
		c.cfg.Filters[key] = value
	}
	mirrorFilters(c.node, c.cfg.Filters)
	ev := Event{
		Name:      EventFilterChange,
		Container: c.id,
		Data:      map[string]any{"key": key, "value": value},
	}
	c.mu.Unlock()

	c.emit(ev)
	d.Trigger(func() { c.load(c.ctx, triggerFilter, 0) })
}

// SetSort changes the sort key and reloads immediately, resetting to the
// first page like any filter change.
func (c *Container) SetSort(ctx context.Context, sort string) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.cfg.Sort = sort
	SetAttr(c.node, attrSort, sort)
	c.mu.Unlock()
	c.load(ctx, triggerFilter, 0)
}

// Reload re-fetches the first page under the current filters, clearing the
// loaded set.
func (c *Container) Reload(ctx context.Context) {
	c.load(ctx, triggerFilter, 0)
}

// Next advances one page (traditional/hybrid navigation), clamped to the
// last available page.
func (c *Container) Next(ctx context.Context) {
	c.load(ctx, triggerNext, 0)
}

// Prev retreats one page, clamped to page 1.
func (c *Container) Prev(ctx context.Context) {
	c.load(ctx, triggerPrev, 0)
}

// GoToPage navigates to a specific page, clamped to the valid range.
func (c *Container) GoToPage(ctx context.Context, page int) {
	c.load(ctx, triggerPage, page)
}

// LoadMore appends the next page in infinite or post-threshold hybrid mode.
// Dropped while a fetch is in flight or when exhausted.
func (c *Container) LoadMore(ctx context.Context) {
	c.load(ctx, triggerMore, 0)
}

// Scroll reports the viewport's distance, in pixels, from the end of the
// container's rendered content. Crossing the configured trigger distance
// starts an infinite load; re-entrant triggers while loading are dropped.
func (c *Container) Scroll(ctx context.Context, distanceFromEnd int) {
	if distanceFromEnd > c.opts.ScrollDistance {
		return
	}
	c.load(ctx, triggerScroll, 0)
}

// Retry clears the error state and re-issues the exact request that failed.
func (c *Container) Retry(ctx context.Context) {
	c.mu.Lock()
	if c.pager.state != stateError {
		c.mu.Unlock()
		return
	}
	c.lastErr = nil
	removeClass(c.node, c.opts.ErrorClass)
	c.mu.Unlock()
	c.load(ctx, triggerRetry, 0)
}

// ControlChanged notifies the container that a bound filter control's value
// changed. The control must have been present at scan time.
func (c *Container) ControlChanged(n *html.Node) {
	c.binder.controlChanged(n)
}

// ActionTriggered notifies the container that a bound action control was
// activated.
func (c *Container) ActionTriggered(ctx context.Context, n *html.Node) {
	c.binder.actionTriggered(ctx, n)
}

// ShowDetail replaces the container's content with a single record fetched
// through the provider's id lookup.
func (c *Container) ShowDetail(ctx context.Context, recordID string) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.generation++
	gen := c.generation
	program := c.cfg.ProgramID
	addClass(c.node, c.opts.LoadingClass)
	c.mu.Unlock()

	c.emit(Event{Name: EventLoadStart, Container: c.id, Data: map[string]any{"record": recordID}})

	var rec Record
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		r, lerr := c.provider.Lookup(ctx, program, recordID)
		if lerr != nil {
			return lerr
		}
		rec = r
		return nil
	})

	c.mu.Lock()
	if c.released || gen != c.generation {
		c.mu.Unlock()
		return
	}
	removeClass(c.node, c.opts.LoadingClass)
	if err != nil {
		c.lastErr = err
		c.pager.fail()
		addClass(c.node, c.opts.ErrorClass)
		ev := c.errorEvent(err, "detail lookup")
		c.mu.Unlock()
		c.emit(ev)
		return
	}
	c.clearRenderedLocked()
	item := c.hydrate.Hydrate(c.tmpl, rec)
	c.node.AppendChild(item)
	c.rendered = append(c.rendered, item)
	c.setEmptyLocked(false)
	ev := Event{
		Name:      EventLoadSuccess,
		Container: c.id,
		Data:      map[string]any{"count": 1, "record": recordID},
	}
	c.mu.Unlock()
	c.emit(ev)
}

// load is the single entry point for every fetch trigger. It stages a query
// through the pager (which enforces clamping and the single-flight guard),
// consults the page cache, and otherwise fetches with the lock released.
func (c *Container) load(ctx context.Context, trigger loadTrigger, targetPage int) {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}

	if trigger == triggerFilter {
		// Filter changes invalidate everything before the fetch resolves.
		c.pager.reset()
		c.clearRenderedLocked()
		removeClass(c.node, c.opts.ErrorClass)
		c.lastErr = nil
	}

	q, ok := c.pager.request(trigger, targetPage)
	if !ok {
		c.mu.Unlock()
		return
	}
	q.Filters = copyFilters(c.cfg.Filters)
	q.Sort = c.cfg.Sort

	c.generation++
	gen := c.generation

	if res, hit := c.pager.cache.get(q); hit {
		evs := c.applyLocked(q, res)
		c.mu.Unlock()
		c.emitAll(evs)
		return
	}

	addClass(c.node, c.opts.LoadingClass)
	startEv := Event{
		Name:      EventLoadStart,
		Container: c.id,
		Data:      map[string]any{"page": q.Page},
	}
	program := c.cfg.ProgramID
	c.mu.Unlock()

	c.emit(startEv)

	var res *FetchResult
	err := c.retry.Do(ctx, func(ctx context.Context) error {
		r, ferr := c.provider.Fetch(ctx, program, q)
		if ferr != nil {
			return ferr
		}
		if r == nil {
			return errors.New("provider returned nil result")
		}
		res = r
		return nil
	})

	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	if gen != c.generation {
		// A newer trigger superseded this request while it was in flight.
		c.log.Debug("discarding superseded response", zap.Int("page", q.Page))
		c.mu.Unlock()
		return
	}
	removeClass(c.node, c.opts.LoadingClass)

	if err != nil {
		c.pager.fail()
		c.lastErr = err
		addClass(c.node, c.opts.ErrorClass)
		ev := c.errorEvent(err, fmt.Sprintf("fetch page %d", q.Page))
		c.mu.Unlock()
		c.emit(ev)
		return
	}

	c.pager.cache.put(q, res)
	evs := c.applyLocked(q, res)
	c.mu.Unlock()
	c.emitAll(evs)
}

// applyLocked folds a successful response into container state and the
// document. Caller holds the lock.
func (c *Container) applyLocked(q Query, res *FetchResult) []Event {
	p := c.pager.apply(q, res)
	removeClass(c.node, c.opts.LoadingClass)
	removeClass(c.node, c.opts.ErrorClass)
	c.lastErr = nil

	if p.op == opReplace {
		c.clearRenderedLocked()
	}
	for _, rec := range p.records {
		item := c.hydrate.Hydrate(c.tmpl, rec)
		c.node.AppendChild(item)
		c.rendered = append(c.rendered, item)
	}
	c.setEmptyLocked(p.empty)
	c.writeStateLocked()

	return []Event{{
		Name:      EventLoadSuccess,
		Container: c.id,
		Data: map[string]any{
			"count":   len(p.records),
			"total":   res.TotalCount,
			"page":    q.Page,
			"filters": copyFilters(c.cfg.Filters),
		},
	}}
}

// clearRenderedLocked detaches every rendered record clone.
func (c *Container) clearRenderedLocked() {
	for _, n := range c.rendered {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	c.rendered = c.rendered[:0]
}

// setEmptyLocked toggles the explicit empty state: the configured class on
// the container plus the declared hb-empty element, if any.
func (c *Container) setEmptyLocked(empty bool) {
	if empty {
		addClass(c.node, c.opts.EmptyClass)
	} else {
		removeClass(c.node, c.opts.EmptyClass)
	}
	if c.emptyNode != nil {
		setVisible(c.emptyNode, empty)
	}
}

// writeStateLocked refreshes the hb-state snapshot token.
func (c *Container) writeStateLocked() {
	snap := stateSnapshot{
		Filters: copyFilters(c.cfg.Filters),
		Page:    c.pager.page,
		Sort:    c.cfg.Sort,
	}
	token, err := c.tokens.Encode(snap)
	if err != nil {
		c.log.Warn("failed to encode state token", zap.Error(err))
		return
	}
	SetAttr(c.node, attrState, token)
}

func (c *Container) errorEvent(err error, context string) Event {
	return Event{
		Name:      EventLoadError,
		Container: c.id,
		Data: map[string]any{
			"message": "failed to load records",
			"context": context,
			"error":   err,
		},
	}
}

func (c *Container) emit(ev Event) {
	if c.onEvent != nil {
		c.onEvent(ev)
	}
}

func (c *Container) emitAll(evs []Event) {
	for _, ev := range evs {
		c.emit(ev)
	}
}

// release tears the container down: pending debounced reloads are cancelled
// and any in-flight response is discarded on arrival.
func (c *Container) release() {
	c.mu.Lock()
	c.released = true
	c.generation++
	c.mu.Unlock()
	c.binder.release()
}

func copyFilters(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
