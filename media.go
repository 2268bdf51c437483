package hxbind

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MediaKind classifies a URL for media bindings.
type MediaKind int

const (
	MediaUnknown MediaKind = iota
	MediaImage
	MediaVideo
)

// ThumbnailStrategy derives a static poster URL for a recognized hosting
// pattern without a network round trip. Strategies are consulted in order;
// the first Match wins.
//
// The derivation is inherently host-specific, so hosts beyond the built-ins
// (YouTube, Vimeo) are supplied through Options.Thumbnailers.
type ThumbnailStrategy interface {
	// Match reports whether this strategy recognizes the URL.
	Match(rawURL string) bool

	// Thumbnail returns the derived poster URL. The second return is false
	// when the URL matched the host but no id could be extracted.
	Thumbnail(rawURL string) (string, bool)
}

var (
	youtubeIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/)|youtu\.be/)([A-Za-z0-9_-]{6,})`)
	vimeoIDPattern   = regexp.MustCompile(`vimeo\.com/(?:video/)?(\d+)`)
)

// youtubeThumbs derives img.youtube.com poster frames from watch, embed,
// shorts, and short-link URL forms.
type youtubeThumbs struct{}

func (youtubeThumbs) Match(rawURL string) bool {
	return strings.Contains(rawURL, "youtube.com/") || strings.Contains(rawURL, "youtu.be/")
}

func (youtubeThumbs) Thumbnail(rawURL string) (string, bool) {
	m := youtubeIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return "https://img.youtube.com/vi/" + m[1] + "/hqdefault.jpg", true
}

// vimeoThumbs derives vumbnail.com poster frames from numeric Vimeo ids.
type vimeoThumbs struct{}

func (vimeoThumbs) Match(rawURL string) bool {
	return strings.Contains(rawURL, "vimeo.com/")
}

func (vimeoThumbs) Thumbnail(rawURL string) (string, bool) {
	m := vimeoIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return "https://vumbnail.com/" + m[1] + ".jpg", true
}

var builtinThumbnailers = []ThumbnailStrategy{youtubeThumbs{}, vimeoThumbs{}}

// mediaResolver classifies URLs and builds media elements for hydration.
type mediaResolver struct {
	video  VideoOptions
	thumbs []ThumbnailStrategy
}

func newMediaResolver(opts Options) *mediaResolver {
	return &mediaResolver{
		video:  opts.Video,
		thumbs: append(append([]ThumbnailStrategy{}, opts.Thumbnailers...), builtinThumbnailers...),
	}
}

// ClassifyMedia classifies a URL by extension, then by hosting pattern.
// Extension lookup goes through the filetype registry so anything the
// registry knows as image/* or video/* is honored without a bespoke list.
func ClassifyMedia(rawURL string) MediaKind {
	if ext := urlExt(rawURL); ext != "" {
		t := filetype.GetType(ext)
		switch t.MIME.Type {
		case "image":
			return MediaImage
		case "video":
			return MediaVideo
		}
		// svg is absent from the magic-number registry but is an image
		// in every context this runtime cares about.
		if ext == "svg" {
			return MediaImage
		}
	}
	for _, s := range builtinThumbnailers {
		if s.Match(rawURL) {
			return MediaVideo
		}
	}
	return MediaUnknown
}

// urlExt extracts a lowercase extension from the URL path, ignoring query
// and fragment noise.
func urlExt(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.TrimPrefix(path.Ext(u.Path), ".")
	return strings.ToLower(ext)
}

// classify resolves a URL's kind, letting registered strategies extend the
// video-host recognition beyond the built-ins.
func (m *mediaResolver) classify(rawURL string) MediaKind {
	kind := ClassifyMedia(rawURL)
	if kind != MediaUnknown {
		return kind
	}
	for _, s := range m.thumbs {
		if s.Match(rawURL) {
			return MediaVideo
		}
	}
	return MediaUnknown
}

// thumbnail runs the strategy chain for a poster URL.
func (m *mediaResolver) thumbnail(rawURL string) (string, bool) {
	for _, s := range m.thumbs {
		if s.Match(rawURL) {
			return s.Thumbnail(rawURL)
		}
	}
	return "", false
}

// apply rewrites the declared element in place into an image or video for
// the URL. The element's existing classes and non-binding attributes are
// preserved; unknown kinds fall back to image so a broken classification
// still renders something recoverable.
func (m *mediaResolver) apply(n *html.Node, rawURL string) {
	if m.classify(rawURL) == MediaVideo {
		m.applyVideo(n, rawURL)
		return
	}
	m.applyImage(n, rawURL)
}

func (m *mediaResolver) applyImage(n *html.Node, rawURL string) {
	n.Data = "img"
	n.DataAtom = atom.Img
	removeChildren(n)
	SetAttr(n, "src", rawURL)
	// A dead link hides rather than rendering the broken-image glyph.
	SetAttr(n, "onerror", "this.style.display='none'")
}

func (m *mediaResolver) applyVideo(n *html.Node, rawURL string) {
	n.Data = "video"
	n.DataAtom = atom.Video
	removeChildren(n)
	SetAttr(n, "src", rawURL)
	SetAttr(n, "playsinline", "")
	if poster, ok := m.thumbnail(rawURL); ok {
		SetAttr(n, "poster", poster)
	}
	if m.video.Autoplay {
		SetAttr(n, "autoplay", "")
	}
	if m.video.Muted {
		SetAttr(n, "muted", "")
	}
	if m.video.Loop {
		SetAttr(n, "loop", "")
	}
	if m.video.Controls {
		SetAttr(n, "controls", "")
	}
	if m.video.HoverPlay {
		SetAttr(n, "onmouseover", "this.play()")
		SetAttr(n, "onmouseout", "this.pause()")
	}
}
