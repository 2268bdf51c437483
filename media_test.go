package hxbind

import (
	"strings"
	"testing"
)

func TestClassifyMedia(t *testing.T) {
	tests := []struct {
		url  string
		want MediaKind
	}{
		{"https://cdn.example.com/avatar.jpg", MediaImage},
		{"https://cdn.example.com/avatar.png?w=200", MediaImage},
		{"https://cdn.example.com/logo.svg", MediaImage},
		{"https://cdn.example.com/reel.mp4", MediaVideo},
		{"https://cdn.example.com/reel.webm", MediaVideo},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", MediaVideo},
		{"https://youtu.be/dQw4w9WgXcQ", MediaVideo},
		{"https://vimeo.com/76979871", MediaVideo},
		{"https://example.com/profile", MediaUnknown},
		{"https://example.com/report.pdf", MediaUnknown},
		{"not a url at all", MediaUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyMedia(tt.url); got != tt.want {
			t.Errorf("ClassifyMedia(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestThumbnailDerivation(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"youtube watch", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
		{"youtube watch extra params", "https://www.youtube.com/watch?t=10&v=dQw4w9WgXcQ", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
		{"youtube short link", "https://youtu.be/dQw4w9WgXcQ", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
		{"youtube embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "https://img.youtube.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
		{"vimeo", "https://vimeo.com/76979871", "https://vumbnail.com/76979871.jpg"},
		{"vimeo video path", "https://vimeo.com/video/76979871", "https://vumbnail.com/76979871.jpg"},
	}

	m := newMediaResolver(Options{}.withDefaults())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := m.thumbnail(tt.url)
			if !ok {
				t.Fatalf("thumbnail(%q) not derived", tt.url)
			}
			if got != tt.want {
				t.Errorf("thumbnail(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestThumbnailNoID(t *testing.T) {
	m := newMediaResolver(Options{}.withDefaults())
	if _, ok := m.thumbnail("https://vimeo.com/about"); ok {
		t.Error("thumbnail should not derive from an id-less host URL")
	}
}

type testThumbs struct{}

func (testThumbs) Match(u string) bool { return strings.Contains(u, "clips.example.com") }
func (testThumbs) Thumbnail(u string) (string, bool) {
	return "https://clips.example.com/poster.jpg", true
}

func TestCustomThumbnailStrategyWins(t *testing.T) {
	opts := Options{Thumbnailers: []ThumbnailStrategy{testThumbs{}}}.withDefaults()
	m := newMediaResolver(opts)

	if m.classify("https://clips.example.com/v/123") != MediaVideo {
		t.Error("custom strategy host should classify as video")
	}
	got, ok := m.thumbnail("https://clips.example.com/v/123")
	if !ok || got != "https://clips.example.com/poster.jpg" {
		t.Errorf("thumbnail = %q, %v; want custom poster", got, ok)
	}
}

func TestApplyVideoElement(t *testing.T) {
	opts := Options{Video: VideoOptions{Muted: true, Loop: true, Controls: true, HoverPlay: true}}.withDefaults()
	m := newMediaResolver(opts)

	n := FindByAttr(ParseFragment(`<div hb-field="video" class="reel"></div>`), attrField)
	m.apply(n, "https://vimeo.com/76979871")

	if n.Data != "video" {
		t.Fatalf("element = %q, want video", n.Data)
	}
	if got := attrVal(n, "poster"); got != "https://vumbnail.com/76979871.jpg" {
		t.Errorf("poster = %q", got)
	}
	if got := attrVal(n, "class"); got != "reel" {
		t.Errorf("class = %q, want preserved class reel", got)
	}
	for _, key := range []string{"muted", "loop", "controls", "playsinline"} {
		if !hasAttr(n, key) {
			t.Errorf("missing %s attribute", key)
		}
	}
	if hasAttr(n, "autoplay") {
		t.Error("autoplay should not be set unless configured")
	}
	if attrVal(n, "onmouseover") != "this.play()" || attrVal(n, "onmouseout") != "this.pause()" {
		t.Error("hover-play handlers missing")
	}
}

func TestApplyImageElement(t *testing.T) {
	m := newMediaResolver(Options{}.withDefaults())

	n := FindByAttr(ParseFragment(`<span hb-field="avatar" class="pic"></span>`), attrField)
	m.apply(n, "https://cdn.example.com/a.jpg")

	if n.Data != "img" {
		t.Fatalf("element = %q, want img", n.Data)
	}
	if got := attrVal(n, "src"); got != "https://cdn.example.com/a.jpg" {
		t.Errorf("src = %q", got)
	}
	if !hasAttr(n, "onerror") {
		t.Error("img should carry an onerror fallback")
	}
	if got := attrVal(n, "class"); got != "pic" {
		t.Errorf("class = %q, want preserved class pic", got)
	}
}
