// Package hxbind binds declaratively-marked regions of an HTML document to
// remote, paginated, filterable record sources and keeps those regions
// synchronized with filter and pagination actions.
//
// hxbind operates on golang.org/x/net/html node trees. A region becomes a
// bound container by carrying hb-* attributes; the runtime discovers
// containers, captures each one's first child as an immutable template,
// fetches records through a user-supplied Provider, and renders one hydrated
// template clone per record.
//
// # Core Concepts
//
// A container declares its data source and pagination mode:
//
//	<div hb-container hb-program="design" hb-mode="infinite" hb-limit="20">
//	    <article>
//	        <h3 hb-field="name"></h3>
//	        <img hb-field="avatar_url">
//	        <span hb-field="hourly_rate" hb-format="currency"></span>
//	        <div hb-rating="rating"></div>
//	        <ul hb-repeat="samples" hb-repeat-max="3">
//	            <li><a hb-field="url"><img hb-field="thumbnail"></a></li>
//	        </ul>
//	        <span hb-if="available">Available now</span>
//	    </article>
//	    <p hb-empty>No matching profiles.</p>
//	</div>
//
// The template child is detached at scan time and never re-attached; every
// render clones it. Bindings resolve dotted paths against opaque records, and
// a binding whose field is absent from a record is left untouched rather than
// erroring.
//
// # Pagination Modes
//
// Three modes are supported, selected per container via hb-mode:
//   - traditional: each page replaces the rendered set; page numbers are
//     clamped to the range the provider's totalCount allows.
//   - infinite: successful fetches append, deduplicated by record id, and a
//     scroll position near the end of rendered content (or an explicit
//     load-more action) triggers the next fetch.
//   - hybrid: traditional until a configured page threshold, infinite after.
//
// Responses are cached in a bounded per-container ring so revisiting a recent
// page skips the network entirely.
//
// # Filters and Actions
//
// Controls inside a container bind with hb-filter and hb-action. Filter
// changes write through to the container's hb-filter-* attribute mirror and
// coalesce into a single debounced reload; actions (next, prev, page, sort,
// load-more, retry, detail) fire immediately. Changing any filter resets
// pagination to the first page and clears the loaded set before the new
// fetch resolves.
//
// # Isolation and Failure
//
// Each container owns its own state, cache, listeners, and error handling; a
// failure in one container never affects another. Provider failures are
// retried with bounded backoff and then surface as an error state (CSS class
// plus a load-error event). Stale responses - ones superseded by a newer
// trigger while in flight - are discarded by generation-token comparison, and
// at most one fetch is in flight per container at any time.
//
// # Lifecycle Events
//
// The runtime dispatches named events for host observation:
//
//	reg := hxbind.NewRegistry(provider, hxbind.Options{})
//	reg.OnEvent = func(e hxbind.Event) {
//	    if e.Name == hxbind.EventLoadError {
//	        log.Println("load failed:", e.Data["message"])
//	    }
//	}
//	if err := reg.Scan(ctx, doc); err != nil { ... }
//
// # Design Rationale
//
// The system favors explicitness over magic:
//   - Explicit discovery (Scan, no init() side effects)
//   - Explicit lifecycle (Scan/Teardown, per-container release)
//   - Explicit supersession (generation tokens, not closure state)
//   - Explicit binding dispatch (a static attribute table, no reflection)
//
// Transport, authentication, and caching above the page-cache ring belong to
// the Provider; hxbind only orchestrates requests and renders results.
package hxbind
