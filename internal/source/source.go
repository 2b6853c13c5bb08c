package source

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind identifies which retrieval strategy applies to a URL.
type Kind int

const (
	// KindWebPage is the fallback for anything that is not a known
	// short-form video platform.
	KindWebPage Kind = iota
	KindInstagram
	KindTikTok
)

func (k Kind) String() string {
	switch k {
	case KindInstagram:
		return "instagram"
	case KindTikTok:
		return "tiktok"
	default:
		return "webpage"
	}
}

// instagramPost matches post and reel URLs that carry a shortcode. Share
// sheets produce both /reel/ and /reels/ paths.
var instagramPost = regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/(?:p|reels?)/[\w-]+/?`)

var shortcodePattern = regexp.MustCompile(`instagram\.com/(?:p|reels?)/([\w-]+)`)

// Classify inspects a URL and decides the retrieval strategy. It is pure and
// total: platform-specific patterns are checked first, and anything that does
// not match falls through to KindWebPage. Malformed URLs are not rejected
// here; the relevant retriever fails on them instead.
func Classify(url string) Kind {
	if instagramPost.MatchString(url) {
		return KindInstagram
	}
	if strings.Contains(url, "tiktok.com") {
		return KindTikTok
	}
	return KindWebPage
}

// InstagramShortcode extracts the post shortcode embedded in an Instagram URL.
func InstagramShortcode(url string) (string, error) {
	m := shortcodePattern.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("no shortcode in URL %q", url)
	}
	return m[1], nil
}
