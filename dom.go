package hxbind

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the named attribute on n, and whether it exists.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// attrVal returns the attribute value or "" when absent.
func attrVal(n *html.Node, key string) string {
	v, _ := Attr(n, key)
	return v
}

// hasAttr reports whether n carries the named attribute, regardless of value.
func hasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets or replaces the named attribute on n.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// removeAttr deletes the named attribute from n if present.
func removeAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// CloneNode returns a deep copy of n, detached from any parent or siblings.
// Attribute slices are copied so the clone never aliases the original.
func CloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(CloneNode(child))
	}
	return c
}

// walk visits n and every descendant in document order. Returning false from
// visit prunes that subtree.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

// findAllAttr collects elements under root (inclusive) carrying the named
// attribute. Nested containers are not descended into when skipNested is set,
// so one container's bindings never leak into an inner container's scope.
func findAllAttr(root *html.Node, key string, skipNested bool) []*html.Node {
	var out []*html.Node
	walk(root, func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return true
		}
		if skipNested && n != root && hasAttr(n, attrContainer) {
			return false
		}
		if hasAttr(n, key) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// firstElementChild returns the first child of n that is an element, or nil.
func firstElementChild(n *html.Node) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// setText replaces all children of n with a single text node.
func setText(n *html.Node, text string) {
	removeChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// textContent concatenates the text nodes under n.
func textContent(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
		return true
	})
	return b.String()
}

// removeChildren detaches every child of n.
func removeChildren(n *html.Node) {
	for n.FirstChild != nil {
		n.RemoveChild(n.FirstChild)
	}
}

// addClass appends class to n's class attribute if not already present.
func addClass(n *html.Node, class string) {
	cur := attrVal(n, "class")
	for _, c := range strings.Fields(cur) {
		if c == class {
			return
		}
	}
	if cur == "" {
		SetAttr(n, "class", class)
		return
	}
	SetAttr(n, "class", cur+" "+class)
}

// removeClass strips class from n's class attribute.
func removeClass(n *html.Node, class string) {
	cur, ok := Attr(n, "class")
	if !ok {
		return
	}
	fields := strings.Fields(cur)
	kept := fields[:0]
	for _, c := range fields {
		if c != class {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		removeAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(kept, " "))
}

// setVisible toggles an inline display:none on n. The node always stays in
// the tree; visibility is purely a style concern.
func setVisible(n *html.Node, visible bool) {
	style := attrVal(n, "style")
	decls := make([]string, 0, 4)
	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(strings.ReplaceAll(d, " ", ""), "display:none") {
			continue
		}
		decls = append(decls, d)
	}
	if !visible {
		decls = append(decls, "display:none")
	}
	if len(decls) == 0 {
		removeAttr(n, "style")
		return
	}
	SetAttr(n, "style", strings.Join(decls, "; "))
}

// isVisible reports whether n carries no inline display:none.
func isVisible(n *html.Node) bool {
	style := strings.ReplaceAll(attrVal(n, "style"), " ", "")
	return !strings.Contains(style, "display:none")
}
