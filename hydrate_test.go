package hxbind

import (
	"strings"
	"testing"
)

func newTestHydrator() *hydrator {
	return newHydrator(Options{}.withDefaults())
}

func hydrateMarkup(t *testing.T, tmplMarkup string, rec Record) (*hydrator, string) {
	t.Helper()
	h := newTestHydrator()
	tmpl := firstElementChild(ParseFragment(tmplMarkup))
	if tmpl == nil {
		t.Fatal("fixture has no element")
	}
	out, err := RenderHTML(h.Hydrate(tmpl, rec))
	if err != nil {
		t.Fatalf("RenderHTML() error = %v", err)
	}
	return h, out
}

func TestScalarBindings(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		rec    Record
		want   []string
	}{
		{
			name:   "text",
			markup: `<article><h3 hb-field="name"></h3></article>`,
			rec:    Record{"name": "Ada Lovelace"},
			want:   []string{`>Ada Lovelace</h3>`},
		},
		{
			name:   "nested path",
			markup: `<article><span hb-field="profile.city"></span></article>`,
			rec:    Record{"profile": map[string]any{"city": "London"}},
			want:   []string{`>London</span>`},
		},
		{
			name:   "image src",
			markup: `<article><img hb-field="avatar"></article>`,
			rec:    Record{"avatar": "https://cdn.example.com/a.jpg"},
			want:   []string{`src="https://cdn.example.com/a.jpg"`, `onerror=`},
		},
		{
			name:   "anchor href",
			markup: `<article><a hb-field="url">portfolio</a></article>`,
			rec:    Record{"url": "https://example.com/p"},
			want:   []string{`href="https://example.com/p"`, `>portfolio</a>`},
		},
		{
			name:   "currency whole",
			markup: `<article><span hb-field="rate" hb-format="currency"></span></article>`,
			rec:    Record{"rate": 75.0},
			want:   []string{`>$75/hr</span>`},
		},
		{
			name:   "currency fractional",
			markup: `<article><span hb-field="rate" hb-format="currency"></span></article>`,
			rec:    Record{"rate": 72.5},
			want:   []string{`>$72.50/hr</span>`},
		},
		{
			name:   "numeric text",
			markup: `<article><span hb-field="projects"></span></article>`,
			rec:    Record{"projects": 12.0},
			want:   []string{`>12</span>`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := hydrateMarkup(t, tt.markup, tt.rec)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestMissingFieldLeavesNodeUntouched(t *testing.T) {
	_, out := hydrateMarkup(t,
		`<article><h3 hb-field="name">placeholder</h3></article>`,
		Record{"other": "x"})
	if !strings.Contains(out, ">placeholder</h3>") {
		t.Errorf("missing field should leave placeholder content:\n%s", out)
	}
}

func TestTemplateNotMutatedByHydration(t *testing.T) {
	h := newTestHydrator()
	tmpl := firstElementChild(ParseFragment(`<article><h3 hb-field="name">orig</h3></article>`))

	h.Hydrate(tmpl, Record{"name": "Ada"})

	out, err := RenderHTML(tmpl)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, ">orig</h3>") {
		t.Errorf("template prototype was mutated:\n%s", out)
	}
}

func TestHydrationIdempotence(t *testing.T) {
	h := newTestHydrator()
	tmpl := firstElementChild(ParseFragment(`<article>
		<h3 hb-field="name"></h3>
		<div hb-rating="rating"></div>
		<ul hb-repeat="samples"><li hb-field="url"></li></ul>
	</article>`))
	rec := Record{
		"name":    "Ada",
		"rating":  4.0,
		"samples": []any{map[string]any{"url": "a"}, map[string]any{"url": "b"}},
	}

	first, err := RenderHTML(h.Hydrate(tmpl, rec))
	if err != nil {
		t.Fatal(err)
	}
	second, err := RenderHTML(h.Hydrate(tmpl, rec))
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("repeated hydration diverged:\nfirst:  %s\nsecond: %s", first, second)
	}
	if got := strings.Count(second, "<li"); got != 2 {
		t.Errorf("repeat children accumulated: %d li elements, want 2", got)
	}
}

func TestRatingStars(t *testing.T) {
	tests := []struct {
		score              any
		full, half, empty  int
	}{
		{3.5, 3, 1, 1},
		{5.0, 5, 0, 0},
		{0.0, 0, 0, 5},
		{4.2, 4, 0, 1},
		{4.3, 4, 1, 0},
		{"2.5", 2, 1, 2},
		{7.0, 5, 0, 0},
		{-1.0, 0, 0, 5},
	}

	for _, tt := range tests {
		_, out := hydrateMarkup(t,
			`<article><div hb-rating="rating"></div></article>`,
			Record{"rating": tt.score})
		full := strings.Count(out, "hb-star-full")
		half := strings.Count(out, "hb-star-half")
		empty := strings.Count(out, "hb-star-empty")
		if full != tt.full || half != tt.half || empty != tt.empty {
			t.Errorf("rating %v: full/half/empty = %d/%d/%d, want %d/%d/%d",
				tt.score, full, half, empty, tt.full, tt.half, tt.empty)
		}
	}
}

func TestRepeatBinding(t *testing.T) {
	markup := `<article><ul hb-repeat="samples" hb-repeat-max="2" class="samples">
		<li><a hb-field="url"></a></li>
	</ul></article>`

	t.Run("renders one clone per item up to max", func(t *testing.T) {
		_, out := hydrateMarkup(t, markup, Record{"samples": []any{
			map[string]any{"url": "https://a"},
			map[string]any{"url": "https://b"},
			map[string]any{"url": "https://c"},
		}})
		if got := strings.Count(out, "<li>"); got != 2 {
			t.Errorf("li count = %d, want 2 (capped)", got)
		}
		if !strings.Contains(out, `href="https://a"`) || !strings.Contains(out, `href="https://b"`) {
			t.Errorf("sub-template hydration missing:\n%s", out)
		}
		if strings.Contains(out, `href="https://c"`) {
			t.Errorf("item past cap rendered:\n%s", out)
		}
	})

	t.Run("empty collection hides container", func(t *testing.T) {
		_, out := hydrateMarkup(t, markup, Record{"samples": []any{}})
		if !strings.Contains(out, "display:none") {
			t.Errorf("empty repeat container should be hidden:\n%s", out)
		}
		if strings.Contains(out, "<li>") {
			t.Errorf("empty repeat rendered children:\n%s", out)
		}
	})

	t.Run("missing collection hides container", func(t *testing.T) {
		_, out := hydrateMarkup(t, markup, Record{})
		if !strings.Contains(out, "display:none") {
			t.Errorf("missing repeat collection should hide container:\n%s", out)
		}
	})
}

func TestConditionalBinding(t *testing.T) {
	rec := Record{
		"available": true,
		"archived":  false,
		"rating":    4.5,
		"plan":      "pro",
		"projects":  0.0,
	}

	tests := []struct {
		expr    string
		visible bool
	}{
		{"available", true},
		{"archived", false},
		{"!archived", true},
		{"missing", false},
		{"!missing", true},
		{"plan=pro", true},
		{"plan=free", false},
		{"plan!=free", true},
		{"rating>4", true},
		{"rating>5", false},
		{"rating>=4.5", true},
		{"rating<5", true},
		{"rating<=4", false},
		{"projects", false},
		{"rating>abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, out := hydrateMarkup(t,
				`<article><span hb-if="`+tt.expr+`">badge</span></article>`,
				rec)
			hidden := strings.Contains(out, "display:none")
			if hidden == tt.visible {
				t.Errorf("hb-if=%q visible = %v, want %v:\n%s", tt.expr, !hidden, tt.visible, out)
			}
			if !strings.Contains(out, "badge") {
				t.Errorf("conditional node was removed from tree:\n%s", out)
			}
		})
	}
}

func TestHTMLBindingSanitizes(t *testing.T) {
	_, out := hydrateMarkup(t,
		`<article><div hb-html="bio"></div></article>`,
		Record{"bio": `<p>hello <b>world</b></p><script>alert(1)</script>`})

	if !strings.Contains(out, "<b>world</b>") {
		t.Errorf("allowed markup stripped:\n%s", out)
	}
	if strings.Contains(out, "<script") {
		t.Errorf("script element survived sanitization:\n%s", out)
	}
}

func TestMediaFlaggedField(t *testing.T) {
	_, out := hydrateMarkup(t,
		`<article><div hb-field="reel" hb-media class="clip"></div></article>`,
		Record{"reel": "https://vimeo.com/76979871"})

	if !strings.Contains(out, "<video") {
		t.Errorf("flagged media field should build a video element:\n%s", out)
	}
	if !strings.Contains(out, `poster="https://vumbnail.com/76979871.jpg"`) {
		t.Errorf("derived poster missing:\n%s", out)
	}
	if !strings.Contains(out, `class="clip"`) {
		t.Errorf("declared class not preserved:\n%s", out)
	}
}

func TestImageSlotWithVideoValue(t *testing.T) {
	_, out := hydrateMarkup(t,
		`<article><img hb-field="media"></article>`,
		Record{"media": "https://cdn.example.com/reel.mp4"})

	if !strings.Contains(out, "<video") {
		t.Errorf("video URL in image slot should render video element:\n%s", out)
	}
}

func TestCaptureTemplate(t *testing.T) {
	t.Run("captures first element child", func(t *testing.T) {
		container := FindByAttr(ParseFragment(
			`<div hb-container hb-program="x">
				<p hb-empty>none</p>
				<article hb-field-holder="1"><h3 hb-field="name"></h3></article>
			</div>`), attrContainer)
		tmpl, err := captureTemplate(container)
		if err != nil {
			t.Fatalf("captureTemplate() error = %v", err)
		}
		if tmpl.Data != "article" {
			t.Errorf("template element = %q, want article (empty-state skipped)", tmpl.Data)
		}
		if tmpl.Parent != nil {
			t.Error("template should be detached")
		}
		for c := container.FirstChild; c != nil; c = c.NextSibling {
			if c == tmpl {
				t.Error("template still attached to container")
			}
		}
	})

	t.Run("no template child", func(t *testing.T) {
		container := FindByAttr(ParseFragment(
			`<div hb-container hb-program="x">   </div>`), attrContainer)
		if _, err := captureTemplate(container); !IsTemplateError(err) {
			t.Errorf("error = %v, want TemplateError", err)
		}
	})
}
