package hxbind

import "fmt"

// pagerState tracks the per-container fetch lifecycle.
type pagerState int

const (
	stateIdle pagerState = iota
	stateLoading
	stateError
	stateExhausted
)

func (s pagerState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateLoading:
		return "loading"
	case stateError:
		return "error"
	case stateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("pagerState(%d)", int(s))
	}
}

// loadTrigger names what asked for a fetch. The trigger decides clamping,
// replace-versus-append, and whether the single-flight guard drops or queues.
type loadTrigger int

const (
	triggerInitial loadTrigger = iota
	triggerFilter
	triggerPage
	triggerNext
	triggerPrev
	triggerMore
	triggerScroll
	triggerRetry
)

// renderOp tells the container how to apply a page of records.
type renderOp int

const (
	opReplace renderOp = iota
	opAppend
)

// plan is the pager's decision for one successful response.
type plan struct {
	op      renderOp
	records []Record // deduplicated new records, in response order
	empty   bool     // the loaded set is empty after applying
}

// pager is the per-container pagination state machine. It is not safe for
// concurrent use; the owning container serializes access.
type pager struct {
	mode        Mode
	limit       int
	hybridAfter int

	state      pagerState
	page       int
	offset     int
	totalCount int
	hasMore    bool

	// loadedIDs dedups appended records across overlapping pages; loaded
	// is the rendered-count mirror, monotone between resets in append
	// modes.
	loadedIDs map[string]struct{}
	loaded    int

	// lastQuery is the most recently staged request, re-issued verbatim by
	// an explicit retry.
	lastQuery Query

	cache *pageCache
}

func newPager(cfg *ContainerConfig, maxCachedPages int) *pager {
	return &pager{
		mode:        cfg.Mode,
		limit:       cfg.Limit,
		hybridAfter: cfg.HybridAfter,
		page:        1,
		hasMore:     true,
		loadedIDs:   map[string]struct{}{},
		cache:       newPageCache(maxCachedPages),
	}
}

// appending reports whether the container is currently under infinite
// semantics: always for infinite mode, past the threshold for hybrid.
func (p *pager) appending() bool {
	switch p.mode {
	case ModeInfinite:
		return true
	case ModeHybrid:
		return p.page >= p.hybridAfter
	default:
		return false
	}
}

// totalPages derives the navigable page count, 0 while unknown.
func (p *pager) totalPages() int {
	if p.totalCount <= 0 || p.limit <= 0 {
		return 0
	}
	return (p.totalCount + p.limit - 1) / p.limit
}

// reset returns the pager to the first page with an empty loaded set and a
// purged cache. Called on every filter or sort change.
func (p *pager) reset() {
	p.state = stateIdle
	p.page = 1
	p.offset = 0
	p.totalCount = 0
	p.hasMore = true
	p.loaded = 0
	p.loadedIDs = map[string]struct{}{}
	p.lastQuery = Query{Page: 1, Limit: p.limit}
	p.cache.purge()
}

// request computes the next query for a trigger, or false when the trigger
// is rejected (clamped out of range, exhausted, or gated by the in-flight
// guard). On acceptance the pager enters loading.
func (p *pager) request(trigger loadTrigger, targetPage int) (Query, bool) {
	if p.state == stateLoading {
		// One fetch in flight per container. Filter triggers arrive here
		// only after the debounce queue, so everything else is dropped.
		if trigger != triggerFilter {
			return Query{}, false
		}
	}
	if p.state == stateError && trigger != triggerRetry && trigger != triggerFilter {
		return Query{}, false
	}

	if trigger == triggerRetry {
		p.state = stateLoading
		return p.lastQuery, true
	}

	next := p.page
	offset := p.offset
	switch trigger {
	case triggerInitial, triggerFilter:
		next, offset = 1, 0
	case triggerPage:
		next = p.clampPage(targetPage)
		offset = (next - 1) * p.limit
	case triggerNext:
		next = p.clampPage(p.page + 1)
		if next == p.page {
			return Query{}, false
		}
		offset = (next - 1) * p.limit
	case triggerPrev:
		next = p.clampPage(p.page - 1)
		if next == p.page {
			return Query{}, false
		}
		offset = (next - 1) * p.limit
	case triggerMore, triggerScroll:
		if p.state == stateExhausted || !p.hasMore || !p.appending() {
			return Query{}, false
		}
		next = p.page + 1
		offset = p.offset
	}

	p.state = stateLoading
	p.lastQuery = Query{Page: next, Offset: offset, Limit: p.limit}
	return p.lastQuery, true
}

// clampPage bounds a target page to [1, totalPages], tolerating an unknown
// total before the first response.
func (p *pager) clampPage(target int) int {
	if target < 1 {
		return 1
	}
	if tp := p.totalPages(); tp > 0 && target > tp {
		return tp
	}
	return target
}

// fail moves loading to the terminal error state.
func (p *pager) fail() {
	p.state = stateError
}

// apply folds a successful response into pager state and returns the render
// plan. In append modes the offset advances by the returned count and
// records already rendered are dropped by id; otherwise the set replaces.
func (p *pager) apply(q Query, res *FetchResult) plan {
	p.totalCount = res.TotalCount
	p.hasMore = res.more(q.Offset)
	p.page = q.Page

	appending := p.appending() && q.Page > 1
	if p.mode == ModeInfinite {
		appending = q.Offset > 0
	}

	var out plan
	if appending {
		out.op = opAppend
		for _, rec := range res.Data {
			id := rec.ID()
			if id != "" {
				if _, seen := p.loadedIDs[id]; seen {
					continue
				}
				p.loadedIDs[id] = struct{}{}
			}
			out.records = append(out.records, rec)
		}
		p.loaded += len(out.records)
		p.offset = q.Offset + len(res.Data)
	} else {
		out.op = opReplace
		p.loadedIDs = map[string]struct{}{}
		for _, rec := range res.Data {
			if id := rec.ID(); id != "" {
				p.loadedIDs[id] = struct{}{}
			}
		}
		out.records = res.Data
		p.loaded = len(res.Data)
		p.offset = q.Offset + len(res.Data)
	}
	out.empty = p.loaded == 0

	if p.hasMore {
		p.state = stateIdle
	} else {
		p.state = stateExhausted
	}
	return out
}

// pageCache is a bounded FIFO ring of responses keyed by page/offset. A hit
// short-circuits the network and goes straight to hydration.
type pageCache struct {
	cap     int
	order   []string
	entries map[string]*FetchResult
}

func newPageCache(capacity int) *pageCache {
	return &pageCache{cap: capacity, entries: map[string]*FetchResult{}}
}

func cacheKey(q Query) string {
	return fmt.Sprintf("p%d:o%d:s%s", q.Page, q.Offset, q.Sort)
}

func (c *pageCache) get(q Query) (*FetchResult, bool) {
	res, ok := c.entries[cacheKey(q)]
	return res, ok
}

func (c *pageCache) put(q Query, res *FetchResult) {
	key := cacheKey(q)
	if _, exists := c.entries[key]; exists {
		c.entries[key] = res
		return
	}
	if len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.order = append(c.order, key)
	c.entries[key] = res
}

func (c *pageCache) purge() {
	c.order = nil
	c.entries = map[string]*FetchResult{}
}

func (c *pageCache) len() int {
	return len(c.order)
}
