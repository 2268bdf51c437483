package hxbind

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Declarative attribute names. Everything the runtime reads or writes on the
// document is namespaced under the hb- prefix.
const (
	attrPrefix = "hb-"

	attrContainer   = "hb-container"
	attrProgram     = "hb-program"
	attrMode        = "hb-mode"
	attrLimit       = "hb-limit"
	attrHybridAfter = "hb-hybrid-after"
	attrSort        = "hb-sort"
	attrState       = "hb-state"
	attrFilterPre   = "hb-filter-"

	attrField     = "hb-field"
	attrFormat    = "hb-format"
	attrMedia     = "hb-media"
	attrHTML      = "hb-html"
	attrRating    = "hb-rating"
	attrRepeat    = "hb-repeat"
	attrRepeatMax = "hb-repeat-max"
	attrIf        = "hb-if"
	attrEmpty     = "hb-empty"

	attrFilter = "hb-filter"
	attrAction = "hb-action"
	attrPage   = "hb-page"
	attrRecord = "hb-record"
	attrValue  = "hb-value"
)

// Mode selects a container's pagination behavior.
type Mode string

const (
	// ModeTraditional replaces the rendered set on every page navigation.
	ModeTraditional Mode = "traditional"

	// ModeInfinite appends deduplicated records, triggered by scroll
	// proximity or an explicit load-more action.
	ModeInfinite Mode = "infinite"

	// ModeHybrid behaves traditionally until the hybrid-after page, then
	// switches to infinite semantics.
	ModeHybrid Mode = "hybrid"
)

// ContainerConfig is the typed form of a container element's declarative
// attributes.
type ContainerConfig struct {
	ProgramID   string
	Mode        Mode
	Limit       int
	HybridAfter int
	Sort        string

	// Filters is the initial filter snapshot read from hb-filter-* and is
	// kept mirrored back to those attributes as controls change. Unknown
	// keys are preserved verbatim.
	Filters map[string]any
}

// parseContainerConfig reads a container element's attributes into typed
// configuration. A missing hb-program is a ConfigError; malformed numeric
// attributes fall back to defaults rather than failing, matching the
// unrecognized-options-are-ignored contract.
func parseContainerConfig(n *html.Node) (*ContainerConfig, error) {
	program := strings.TrimSpace(attrVal(n, attrProgram))
	if program == "" {
		return nil, fmt.Errorf("%w: missing %s attribute", ErrConfig, attrProgram)
	}

	cfg := &ContainerConfig{
		ProgramID:   program,
		Mode:        ModeTraditional,
		Limit:       DefaultLimit,
		HybridAfter: DefaultHybridAfter,
		Sort:        attrVal(n, attrSort),
		Filters:     map[string]any{},
	}

	switch Mode(attrVal(n, attrMode)) {
	case ModeInfinite:
		cfg.Mode = ModeInfinite
	case ModeHybrid:
		cfg.Mode = ModeHybrid
	case ModeTraditional, "":
		// default
	default:
		return nil, fmt.Errorf("%w: unknown %s %q", ErrConfig, attrMode, attrVal(n, attrMode))
	}

	cfg.Limit = intAttr(n, attrLimit, DefaultLimit)
	cfg.HybridAfter = intAttr(n, attrHybridAfter, DefaultHybridAfter)

	for _, a := range n.Attr {
		if key, ok := strings.CutPrefix(a.Key, attrFilterPre); ok && key != "" {
			cfg.Filters[key] = parseFilterValue(a.Val)
		}
	}
	return cfg, nil
}

// intAttr parses a positive integer attribute, falling back on absence or
// malformed input.
func intAttr(n *html.Node, key string, fallback int) int {
	raw, ok := Attr(n, key)
	if !ok {
		return fallback
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// parseFilterValue types an attribute-carried filter value: booleans and
// numbers become typed, everything else stays a literal string.
func parseFilterValue(raw string) any {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

// filterValueString renders a filter value back into attribute form,
// inverting parseFilterValue.
func filterValueString(v any) string {
	return stringify(v)
}

// mirrorFilters writes the filter snapshot back onto the container element
// as hb-filter-* attributes, removing mirrors for deleted keys.
func mirrorFilters(n *html.Node, filters map[string]any) {
	var stale []string
	for _, a := range n.Attr {
		if key, ok := strings.CutPrefix(a.Key, attrFilterPre); ok && key != "" {
			if _, live := filters[key]; !live {
				stale = append(stale, a.Key)
			}
		}
	}
	for _, key := range stale {
		removeAttr(n, key)
	}
	for key, val := range filters {
		SetAttr(n, attrFilterPre+key, filterValueString(val))
	}
}
