package hxbind

// Lifecycle event names dispatched by containers for host observation.
const (
	// EventLoadStart fires when a fetch is staged (after any cache check
	// misses). Data: "page".
	EventLoadStart = "hxbind:load-start"

	// EventLoadSuccess fires after records render. Data: "count" (records
	// applied), "total", "filters" (snapshot copy), "page".
	EventLoadSuccess = "hxbind:load-success"

	// EventLoadError fires when the retry policy exhausts. Data: "message"
	// (human-readable), "context" (which operation failed), "error".
	EventLoadError = "hxbind:load-error"

	// EventFilterChange fires when a filter control writes a new value,
	// before the debounced reload. Data: "key", "value".
	EventFilterChange = "hxbind:filter-change"
)

// Event is one lifecycle notification from a container.
type Event struct {
	// Name is one of the Event* constants.
	Name string

	// Container is the originating container's identity.
	Container string

	// Data carries event-specific payload fields.
	Data map[string]any
}

// EventHandler observes container lifecycle events. Handlers run on the
// goroutine that triggered the event (a debounce timer for filter reloads)
// and must not block.
type EventHandler func(Event)
