package hxbind

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// Action names accepted on hb-action controls.
const (
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionPage     = "page"
	ActionSort     = "sort"
	ActionLoadMore = "load-more"
	ActionRetry    = "retry"
	ActionDetail   = "detail"
)

// binder wires a container's declared filter and action controls. Filter
// writes funnel through one debouncer so rapid successive edits coalesce
// into a single reload; action controls bypass it entirely.
type binder struct {
	c        *Container
	debounce *debouncer

	// filters maps discovered control nodes to their filter keys, fixed at
	// bind time.
	filters map[*html.Node]string
	actions map[*html.Node]string
}

func newBinder(c *Container) *binder {
	b := &binder{
		c:        c,
		debounce: newDebouncer(c.opts.DebounceDelay),
		filters:  map[*html.Node]string{},
		actions:  map[*html.Node]string{},
	}
	for _, n := range findAllAttr(c.node, attrFilter, true) {
		if key := attrVal(n, attrFilter); key != "" {
			b.filters[n] = key
		}
	}
	for _, n := range findAllAttr(c.node, attrAction, true) {
		if name := attrVal(n, attrAction); name != "" {
			b.actions[n] = name
		}
	}
	return b
}

// release cancels any pending debounced reload.
func (b *binder) release() {
	b.debounce.Cancel()
}

// controlChanged handles a change notification for a bound filter control.
// The control's current value is read per its type and written onto the
// container's filter state; the reload is debounced.
func (b *binder) controlChanged(n *html.Node) {
	key, ok := b.filters[n]
	if !ok {
		return
	}
	b.c.setFilterDebounced(key, controlValue(n), b.debounce)
}

// actionTriggered handles an activation of a bound action control. Actions
// are immediate: any pending debounced reload is dropped in favor of the
// explicit navigation.
func (b *binder) actionTriggered(ctx context.Context, n *html.Node) {
	name, ok := b.actions[n]
	if !ok {
		return
	}
	switch name {
	case ActionNext:
		b.debounce.Flush(func() { b.c.Next(ctx) })
	case ActionPrev:
		b.debounce.Flush(func() { b.c.Prev(ctx) })
	case ActionPage:
		page := intAttr(n, attrPage, 0)
		if page > 0 {
			b.debounce.Flush(func() { b.c.GoToPage(ctx, page) })
		}
	case ActionSort:
		b.debounce.Flush(func() { b.c.SetSort(ctx, controlString(n)) })
	case ActionLoadMore:
		b.debounce.Flush(func() { b.c.LoadMore(ctx) })
	case ActionRetry:
		b.debounce.Flush(func() { b.c.Retry(ctx) })
	case ActionDetail:
		if id := attrVal(n, attrRecord); id != "" {
			b.debounce.Flush(func() { b.c.ShowDetail(ctx, id) })
		}
	}
}

// controlValue reads a filter control's current value. Checkboxes yield a
// boolean, multi-selects a comma-joined set of selected option values, and
// everything else its literal value.
func controlValue(n *html.Node) any {
	if n.Data == "input" && attrVal(n, "type") == "checkbox" {
		return hasAttr(n, "checked")
	}
	if n.Data == "select" && hasAttr(n, "multiple") {
		var vals []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" && hasAttr(c, "selected") {
				vals = append(vals, optionValue(c))
			}
		}
		return strings.Join(vals, ",")
	}
	return controlString(n)
}

// controlString reads a control's literal value: hb-value wins, then the
// value attribute, then a single-select's selected option.
func controlString(n *html.Node) string {
	if v, ok := Attr(n, attrValue); ok {
		return v
	}
	if v, ok := Attr(n, "value"); ok {
		return v
	}
	if n.Data == "select" {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "option" && hasAttr(c, "selected") {
				return optionValue(c)
			}
		}
	}
	return ""
}

func optionValue(opt *html.Node) string {
	if v, ok := Attr(opt, "value"); ok {
		return v
	}
	return strings.TrimSpace(textContent(opt))
}
