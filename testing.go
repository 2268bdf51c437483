package hxbind

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// StubProvider is a scripted Provider for tests and demos. Responses come
// from FetchFunc/LookupFunc when set, otherwise from the Pages and Records
// tables. All calls are counted and their queries recorded.
type StubProvider struct {
	mu          sync.Mutex
	fetchCalls  int
	lookupCalls int
	queries     []Query

	// FetchFunc, when set, answers every Fetch.
	FetchFunc func(ctx context.Context, programID string, q Query) (*FetchResult, error)

	// LookupFunc, when set, answers every Lookup.
	LookupFunc func(ctx context.Context, programID, recordID string) (Record, error)

	// Pages maps 1-based page numbers to canned results.
	Pages map[int]*FetchResult

	// Records maps record ids for Lookup.
	Records map[string]Record
}

// Fetch implements Provider.
func (s *StubProvider) Fetch(ctx context.Context, programID string, q Query) (*FetchResult, error) {
	s.mu.Lock()
	s.fetchCalls++
	s.queries = append(s.queries, q)
	s.mu.Unlock()

	if s.FetchFunc != nil {
		return s.FetchFunc(ctx, programID, q)
	}
	if res, ok := s.Pages[q.Page]; ok {
		return res, nil
	}
	return &FetchResult{}, nil
}

// Lookup implements Provider.
func (s *StubProvider) Lookup(ctx context.Context, programID, recordID string) (Record, error) {
	s.mu.Lock()
	s.lookupCalls++
	s.mu.Unlock()

	if s.LookupFunc != nil {
		return s.LookupFunc(ctx, programID, recordID)
	}
	if rec, ok := s.Records[recordID]; ok {
		return rec, nil
	}
	return nil, fmt.Errorf("record %q not found", recordID)
}

// FetchCalls returns how many times Fetch was invoked.
func (s *StubProvider) FetchCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

// LookupCalls returns how many times Lookup was invoked.
func (s *StubProvider) LookupCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupCalls
}

// Queries returns a copy of every recorded fetch query, in call order.
func (s *StubProvider) Queries() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Query, len(s.queries))
	copy(out, s.queries)
	return out
}

// BoolPtr returns a pointer to v, for FetchResult.HasMore literals.
func BoolPtr(v bool) *bool {
	return &v
}

// ParseFragment parses a body fragment and returns its nodes' common
// parent, a detached body element. Panics on malformed input; intended for
// test fixtures.
func ParseFragment(markup string) *html.Node {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		panic(fmt.Sprintf("hxbind: unparseable fixture: %v", err))
	}
	var body *html.Node
	walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "body" {
			body = n
			return false
		}
		return true
	})
	return body
}

// FindByAttr returns the first element under root carrying the attribute,
// or nil.
func FindByAttr(root *html.Node, key string) *html.Node {
	var found *html.Node
	walk(root, func(n *html.Node) bool {
		if found != nil {
			return false
		}
		if n.Type == html.ElementNode && hasAttr(n, key) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAllByAttr returns every element under root carrying the attribute.
func FindAllByAttr(root *html.Node, key string) []*html.Node {
	return findAllAttr(root, key, false)
}
