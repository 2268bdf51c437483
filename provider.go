package hxbind

import "context"

// Query carries one provider request's parameters. Filters hold the
// container's current filter snapshot; unknown keys pass through untouched
// so provider-specific extensions round-trip.
type Query struct {
	// Filters maps filter key to value (string, bool, float64, or a
	// comma-joined value set written by multi-select controls).
	Filters map[string]any

	// Page is 1-based; Offset is the absolute record offset. In
	// traditional mode Offset is always (Page-1)*Limit; in infinite mode
	// Offset advances by each response's returned count.
	Page   int
	Offset int
	Limit  int

	// Sort names the active sort key, empty for provider default.
	Sort string
}

// FetchResult is a provider's answer to one Query.
type FetchResult struct {
	// Data holds the page's records in provider order.
	Data []Record

	// TotalCount is the number of records matching the query across all
	// pages. Zero with a non-nil HasMore is honored as reported.
	TotalCount int

	// HasMore, when non-nil, explicitly states whether further pages
	// exist. When nil it is derived from Offset+len(Data) < TotalCount.
	HasMore *bool
}

// more resolves the effective has-more flag for a result fetched at the
// given offset.
func (fr *FetchResult) more(offset int) bool {
	if fr.HasMore != nil {
		return *fr.HasMore
	}
	return offset+len(fr.Data) < fr.TotalCount
}

// Provider is the external data collaborator. Implementations own transport,
// authentication, response caching and timeout enforcement; hxbind only
// orchestrates calls and applies the retry policy around Fetch.
//
// Both methods may be called from debounce-timer goroutines and must be safe
// for concurrent use across containers.
type Provider interface {
	// Fetch returns one page of records for a program.
	Fetch(ctx context.Context, programID string, q Query) (*FetchResult, error)

	// Lookup returns a single record by id, for detail actions.
	Lookup(ctx context.Context, programID, recordID string) (Record, error)
}
