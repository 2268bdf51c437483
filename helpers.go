package hxbind

import (
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseDocument parses a full HTML document into a node tree suitable for
// Scan.
func ParseDocument(r io.Reader) (*html.Node, error) {
	return html.Parse(r)
}

// ParseDocumentString is ParseDocument over a string, for markup held in
// memory.
func ParseDocumentString(s string) (*html.Node, error) {
	return html.Parse(strings.NewReader(s))
}

// Bind is the one-call setup: build a registry, scan the document, and load
// every container's first page. The returned registry owns the containers;
// the returned error aggregates per-container initialization failures
// (siblings of a failed container still initialize).
func Bind(ctx context.Context, doc *html.Node, provider Provider, opts Options) (*Registry, error) {
	reg := NewRegistry(provider, opts)
	err := reg.Scan(ctx, doc)
	return reg, err
}

// RenderHTML serializes a node tree back to markup. Useful for server-side
// rendering of bound regions and in tests.
func RenderHTML(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
