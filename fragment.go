package hxbind

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"golang.org/x/net/html"
)

// Fragment wraps a node tree as a templ component so bound regions can be
// embedded in templ views:
//
//	@hxbind.Fragment(container.Node())
//
// Rendering serializes the node's current state; re-render after loads to
// reflect new content.
func Fragment(n *html.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return html.Render(w, n)
	})
}

// Component returns the container's live region as a templ component.
func (c *Container) Component() templ.Component {
	return Fragment(c.node)
}
