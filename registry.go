package hxbind

import (
	"context"
	"fmt"
	"sync"

	"github.com/pthm/hxbind/lib/encoding"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// Registry discovers declared containers on a document and owns one runtime
// instance per container. Container state is never shared: each container
// carries its own pagination, cache, controls, and error handling, and a
// failure in one cannot affect another.
type Registry struct {
	provider Provider
	opts     Options
	tokens   *encoding.Encoder
	log      *zap.Logger

	mu         sync.RWMutex
	containers map[string]*Container

	// OnEvent observes lifecycle events from every owned container. Set it
	// before Scan; events fire on the goroutine that triggered them.
	OnEvent EventHandler
}

// NewRegistry creates a registry bound to a provider. Options fields left
// zero fall back to documented defaults.
func NewRegistry(provider Provider, opts Options) *Registry {
	opts = opts.withDefaults()
	return &Registry{
		provider:   provider,
		opts:       opts,
		tokens:     newStateEncoder(opts),
		log:        opts.Logger,
		containers: make(map[string]*Container),
	}
}

// Scan walks the document, initializes every hb-container element, and
// loads each one's first page. Initialization failures are contained: a
// container with a ConfigError or TemplateError is skipped and reported in
// the aggregate error while its siblings proceed.
//
// ctx outlives Scan - debounce-timer reloads reuse it - so pass one tied to
// the document's lifetime, not a per-call deadline.
func (reg *Registry) Scan(ctx context.Context, doc *html.Node) error {
	var errs error
	var scanned []*Container

	walk(doc, func(n *html.Node) bool {
		if n.Type != html.ElementNode || !hasAttr(n, attrContainer) {
			return true
		}
		c, err := reg.initContainer(ctx, n)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else {
			scanned = append(scanned, c)
		}
		// Containers never nest; anything inside belongs to this one.
		return false
	})

	for _, c := range scanned {
		c.load(ctx, triggerInitial, 0)
	}
	return errs
}

// initContainer builds and registers a single container.
func (reg *Registry) initContainer(ctx context.Context, n *html.Node) (*Container, error) {
	c, err := newContainer(ctx, n, reg.provider, reg.opts, reg.tokens, reg.emit)
	if err != nil {
		if IsTemplateError(err) {
			reg.log.Warn("skipping container without template", zap.Error(err))
		}
		return nil, fmt.Errorf("container %q: %w", attrVal(n, attrProgram), err)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.containers[c.ID()]; exists {
		return nil, fmt.Errorf("%w: duplicate container id %q", ErrConfig, c.ID())
	}
	reg.containers[c.ID()] = c
	return c, nil
}

// Container returns the owned container with the given id.
func (reg *Registry) Container(id string) (*Container, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.containers[id]
	return c, ok
}

// Containers returns all owned containers in unspecified order.
func (reg *Registry) Containers() []*Container {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	out := make([]*Container, 0, len(reg.containers))
	for _, c := range reg.containers {
		out = append(out, c)
	}
	return out
}

// ControlChanged routes a filter-control change to its owning container by
// walking the control's ancestry. Unowned nodes are ignored.
func (reg *Registry) ControlChanged(n *html.Node) {
	if c := reg.owner(n); c != nil {
		c.ControlChanged(n)
	}
}

// ActionTriggered routes an action-control activation to its owning
// container.
func (reg *Registry) ActionTriggered(ctx context.Context, n *html.Node) {
	if c := reg.owner(n); c != nil {
		c.ActionTriggered(ctx, n)
	}
}

// owner finds the container whose element encloses n.
func (reg *Registry) owner(n *html.Node) *Container {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for p := n; p != nil; p = p.Parent {
		if p.Type != html.ElementNode || !hasAttr(p, attrContainer) {
			continue
		}
		for _, c := range reg.containers {
			if c.node == p {
				return c
			}
		}
		return nil
	}
	return nil
}

// Release tears down one container, cancelling pending reloads and
// releasing its listeners. Call when the container's element leaves the
// document.
func (reg *Registry) Release(id string) {
	reg.mu.Lock()
	c, ok := reg.containers[id]
	if ok {
		delete(reg.containers, id)
	}
	reg.mu.Unlock()
	if ok {
		c.release()
	}
}

// Teardown releases every owned container. The registry can be scanned
// again afterwards.
func (reg *Registry) Teardown() {
	reg.mu.Lock()
	containers := reg.containers
	reg.containers = make(map[string]*Container)
	reg.mu.Unlock()
	for _, c := range containers {
		c.release()
	}
}

// emit forwards a container event to the host hook. A panicking handler is
// contained so one observer cannot take down unrelated containers.
func (reg *Registry) emit(ev Event) {
	handler := reg.OnEvent
	if handler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			reg.log.Error("event handler panicked",
				zap.String("event", ev.Name),
				zap.String("container", ev.Container),
				zap.Any("panic", r))
		}
	}()
	handler(ev)
}
