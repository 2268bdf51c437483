package hxbind

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"golang.org/x/net/html"
)

// hydrator clones a container's template prototype and populates declared
// bindings from one record. The prototype is immutable once captured; every
// render works on a fresh clone, so hydration is idempotent by construction.
type hydrator struct {
	media     *mediaResolver
	sanitize  *bluemonday.Policy
	maxRepeat int
	log       *zap.Logger
}

func newHydrator(opts Options) *hydrator {
	return &hydrator{
		media:     newMediaResolver(opts),
		sanitize:  bluemonday.UGCPolicy(),
		maxRepeat: opts.MaxRepeatItems,
		log:       opts.Logger,
	}
}

// binding maps one declarative attribute to its hydration function. The
// table is static: dispatch is an attribute lookup, never reflection.
type binding struct {
	attr  string
	apply func(h *hydrator, n *html.Node, path string, rec Record)
}

// bindingTable is consulted in order for every element of a clone. Repeat is
// handled separately because it owns its subtree.
var bindingTable = []binding{
	{attrField, (*hydrator).applyField},
	{attrHTML, (*hydrator).applyHTML},
	{attrRating, (*hydrator).applyRating},
	{attrIf, (*hydrator).applyIf},
}

// captureTemplate detaches and returns the container's template prototype:
// its first element child that is not a declared empty state or a control.
// Returns a TemplateError when no such child exists.
func captureTemplate(container *html.Node) (*html.Node, error) {
	for c := container.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if hasAttr(c, attrEmpty) || hasAttr(c, attrFilter) || hasAttr(c, attrAction) {
			continue
		}
		container.RemoveChild(c)
		return c, nil
	}
	return nil, fmt.Errorf("%w: container has no template child", ErrTemplate)
}

// Hydrate returns a fresh clone of tmpl with every declared binding resolved
// against rec. The template itself is never mutated, and bindings whose
// field is absent from the record leave their node untouched.
func (h *hydrator) Hydrate(tmpl *html.Node, rec Record) *html.Node {
	clone := CloneNode(tmpl)
	h.hydrateNode(clone, rec)
	return clone
}

// hydrateNode applies bindings to n and recurses. A repeat binding consumes
// the whole subtree; nested containers are left alone entirely.
func (h *hydrator) hydrateNode(n *html.Node, rec Record) {
	if n.Type != html.ElementNode {
		return
	}
	if hasAttr(n, attrContainer) {
		return
	}
	if path, ok := Attr(n, attrRepeat); ok {
		h.applyRepeat(n, path, rec)
		if cond, hasIf := Attr(n, attrIf); hasIf {
			h.applyIf(n, cond, rec)
		}
		return
	}
	for _, b := range bindingTable {
		if path, ok := Attr(n, b.attr); ok {
			b.apply(h, n, path, rec)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h.hydrateNode(c, rec)
	}
}

// applyField resolves a scalar binding. Routing: a flagged or detected media
// value goes through the media resolver; images take src, anchors take href,
// everything else becomes text. Currency-formatted numerics render $N/hr.
func (h *hydrator) applyField(n *html.Node, path string, rec Record) {
	val, ok := rec.Field(path)
	if !ok || val == nil {
		return
	}

	if hasAttr(n, attrMedia) {
		h.media.apply(n, stringify(val))
		return
	}

	if attrVal(n, attrFormat) == "currency" {
		if f, numeric := toNumber(val); numeric {
			setText(n, formatCurrency(f))
			return
		}
	}

	s := stringify(val)
	switch n.Data {
	case "img":
		// An image slot whose value turns out to be a video is routed
		// through the resolver so it still renders a playable element.
		if ClassifyMedia(s) == MediaVideo {
			h.media.apply(n, s)
			return
		}
		SetAttr(n, "src", s)
		SetAttr(n, "onerror", "this.style.display='none'")
	case "video":
		h.media.apply(n, s)
	case "a":
		SetAttr(n, "href", s)
		if firstElementChild(n) == nil && strings.TrimSpace(textContent(n)) == "" {
			setText(n, s)
		}
	case "input", "textarea":
		SetAttr(n, "value", s)
	default:
		setText(n, s)
	}
}

// applyHTML resolves a rich-text binding. Remote markup is sanitized before
// it is parsed into the tree; records are opaque and never trusted.
func (h *hydrator) applyHTML(n *html.Node, path string, rec Record) {
	raw, ok := rec.String(path)
	if !ok {
		return
	}
	clean := h.sanitize.Sanitize(raw)
	nodes, err := html.ParseFragment(strings.NewReader(clean), n)
	if err != nil {
		h.log.Warn("discarding unparseable rich-text value", zap.String("path", path), zap.Error(err))
		return
	}
	removeChildren(n)
	for _, child := range nodes {
		n.AppendChild(child)
	}
}

// applyRating renders a fixed five-unit star row proportional to a 0-5
// score with half-unit granularity.
func (h *hydrator) applyRating(n *html.Node, path string, rec Record) {
	score, ok := rec.Number(path)
	if !ok {
		return
	}
	halves := int(math.Round(score * 2))
	if halves < 0 {
		halves = 0
	} else if halves > 10 {
		halves = 10
	}
	removeChildren(n)
	for i := 0; i < 5; i++ {
		cls := "hb-star hb-star-empty"
		switch {
		case halves >= (i+1)*2:
			cls = "hb-star hb-star-full"
		case halves == i*2+1:
			cls = "hb-star hb-star-half"
		}
		star := &html.Node{Type: html.ElementNode, Data: "span"}
		SetAttr(star, "class", cls)
		n.AppendChild(star)
	}
}

// applyRepeat captures the repeat container's first child as a sub-template,
// clears the container, and hydrates one clone per collection item up to the
// declared (or configured) maximum. An empty collection hides the container.
func (h *hydrator) applyRepeat(n *html.Node, path string, rec Record) {
	sub := firstElementChild(n)
	if sub == nil {
		h.log.Warn("repeat container has no sub-template", zap.String("path", path))
		return
	}
	n.RemoveChild(sub)
	removeChildren(n)

	items := rec.Items(path)
	if len(items) == 0 {
		setVisible(n, false)
		return
	}
	setVisible(n, true)

	max := intAttr(n, attrRepeatMax, h.maxRepeat)
	if len(items) > max {
		items = items[:max]
	}
	for _, item := range items {
		n.AppendChild(h.Hydrate(sub, item))
	}
}

// applyIf evaluates a conditional-display expression and toggles visibility.
// The node always stays in the tree.
func (h *hydrator) applyIf(n *html.Node, expr string, rec Record) {
	setVisible(n, evalCondition(expr, rec))
}

// evalCondition evaluates the hb-if grammar: bare existence/truthiness,
// negation, equality, inequality, and numeric comparisons. Unparseable
// expressions are false.
func evalCondition(expr string, rec Record) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return false
	}
	if rest, ok := strings.CutPrefix(expr, "!"); ok {
		return !evalCondition(rest, rec)
	}
	for _, op := range []string{">=", "<=", "!=", ">", "<", "="} {
		field, want, found := strings.Cut(expr, op)
		if !found {
			continue
		}
		field = strings.TrimSpace(field)
		want = strings.TrimSpace(want)
		switch op {
		case "=", "!=":
			got, ok := rec.String(field)
			eq := ok && got == want
			if op == "=" {
				return eq
			}
			return ok && !eq
		default:
			got, ok := rec.Number(field)
			if !ok {
				return false
			}
			threshold, err := strconv.ParseFloat(want, 64)
			if err != nil {
				return false
			}
			switch op {
			case ">":
				return got > threshold
			case ">=":
				return got >= threshold
			case "<":
				return got < threshold
			case "<=":
				return got <= threshold
			}
		}
	}
	return rec.Bool(expr)
}

// formatCurrency renders an hourly rate: whole values drop the cents.
func formatCurrency(f float64) string {
	if f == math.Trunc(f) {
		return "$" + strconv.FormatFloat(f, 'f', 0, 64) + "/hr"
	}
	return "$" + strconv.FormatFloat(f, 'f', 2, 64) + "/hr"
}
