package webpage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/recipio/recipio/internal/fetch"
)

// rawTextCap bounds the last-resort fallback to the first 1000 characters of
// the page text.
const rawTextCap = 1000

// minBlockChars is the threshold for the long-block tier: list and paragraph
// elements shorter than this are considered navigation noise.
const minBlockChars = 30

// classKeywords mark elements likely to hold recipe content.
var classKeywords = []string{"recipe", "ingredients", "instruction", "step"}

// Content is the result of extracting a web page: the text handed to the
// model and a best-effort cover image.
type Content struct {
	Text     string
	ImageURL string
}

// Extractor fetches a page and applies a tiered text-discovery strategy:
// structured recipe markup first, then keyword-tagged blocks, then generic
// long blocks, then raw page text.
type Extractor struct {
	Client *fetch.Client
}

// textTiers is the ordered discovery strategy. The first tier returning
// non-empty text wins and later tiers are never invoked. Kept as a package
// variable so tests can instrument tier invocation.
var textTiers = []func(*goquery.Document) string{
	recipeStructuredData,
	keywordClassBlocks,
	longTextBlocks,
	rawPageText,
}

// Extract fetches url and returns its recipe text and cover image URL.
// Network and parse failures are returned to the caller, which decides
// whether to mask them.
func (e *Extractor) Extract(ctx context.Context, url string) (*Content, error) {
	body, _, err := e.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var text string
	for i, tier := range textTiers {
		if text = strings.TrimSpace(tier(doc)); text != "" {
			log.Debug().Str("stage", "webpage").Str("url", url).Int("tier", i+1).Int("chars", len(text)).Msg("text discovered")
			break
		}
	}
	return &Content{Text: text, ImageURL: coverImage(doc)}, nil
}

// coverImage prefers the og:image meta tag, then the largest image by
// declared width×height. First encountered wins on ties. Images without
// declared dimensions never win.
func coverImage(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	var best string
	maxArea := 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			return
		}
		w, _ := strconv.Atoi(img.AttrOr("width", "0"))
		h, _ := strconv.Atoi(img.AttrOr("height", "0"))
		if area := w * h; area > maxArea {
			maxArea = area
			best = src
		}
	})
	return best
}

// recipeStructuredData scans application/ld+json scripts for the first entry
// typed as a schema.org Recipe and returns its JSON serialization.
func recipeStructuredData(doc *goquery.Document) string {
	var found string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		if entry := findRecipeEntry(data); entry != nil {
			if b, err := json.Marshal(entry); err == nil {
				found = string(b)
				return false
			}
		}
		return true
	})
	return found
}

// findRecipeEntry walks a decoded JSON-LD payload: a top-level object, a list
// of objects, or an object with an @graph list.
func findRecipeEntry(data any) any {
	switch v := data.(type) {
	case map[string]any:
		if isRecipeType(v["@type"]) {
			return v
		}
		if graph, ok := v["@graph"].([]any); ok {
			return findRecipeEntry(graph)
		}
	case []any:
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok && isRecipeType(m["@type"]) {
				return m
			}
		}
	}
	return nil
}

func isRecipeType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "Recipe"
	case []any:
		for _, s := range v {
			if s == "Recipe" {
				return true
			}
		}
	}
	return false
}

// keywordClassBlocks joins the text of all elements whose class attribute
// contains a recipe keyword, case-insensitive, in document order.
func keywordClassBlocks(doc *goquery.Document) string {
	var blocks []string
	doc.Find("[class]").Each(func(_ int, s *goquery.Selection) {
		class := strings.ToLower(s.AttrOr("class", ""))
		for _, kw := range classKeywords {
			if strings.Contains(class, kw) {
				if text := squeeze(s.Text()); text != "" {
					blocks = append(blocks, text)
				}
				break
			}
		}
	})
	return strings.Join(blocks, "\n")
}

// longTextBlocks joins all list and paragraph elements whose rendered text
// exceeds minBlockChars, in document order.
func longTextBlocks(doc *goquery.Document) string {
	var blocks []string
	doc.Find("ul, ol, p").Each(func(_ int, s *goquery.Selection) {
		text := squeeze(s.Text())
		if utf8.RuneCountInString(text) > minBlockChars {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n")
}

// rawPageText is the last resort: whole-page text capped at rawTextCap runes.
func rawPageText(doc *goquery.Document) string {
	text := squeeze(doc.Text())
	runes := []rune(text)
	if len(runes) > rawTextCap {
		return string(runes[:rawTextCap])
	}
	return text
}

// squeeze collapses all whitespace runs to single spaces and trims the ends.
func squeeze(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
