package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/recipio/recipio/internal/media"
	"github.com/recipio/recipio/internal/normalize"
	"github.com/recipio/recipio/internal/recipe"
	"github.com/recipio/recipio/internal/source"
	"github.com/recipio/recipio/internal/webpage"
)

// PlaceholderTitle is the title of the record substituted when web extraction
// fails. The web path favors availability: a generic record beats an error.
const PlaceholderTitle = "Recipe from URL"

// descriptionCap bounds the description attached from extracted page text.
const descriptionCap = 500

// MediaRetriever is the media subsystem as the pipeline sees it.
type MediaRetriever interface {
	FetchInstagram(ctx context.Context, postURL string) (*media.Video, error)
	FetchTikTok(ctx context.Context, postURL string, ws *media.Workspace) (*media.Video, error)
	Download(ctx context.Context, mediaURL string, ws *media.Workspace) error
	DemuxAudio(ctx context.Context, ws *media.Workspace) (string, error)
}

// Transcriber converts an audio artifact to text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// WebExtractor pulls recipe text and a cover image from a web page.
type WebExtractor interface {
	Extract(ctx context.Context, url string) (*webpage.Content, error)
}

// RecipeExtractor turns normalized text into a structured record.
type RecipeExtractor interface {
	Extract(ctx context.Context, text string) (*recipe.Recipe, error)
}

// Pipeline composes classification, retrieval, transcription, and extraction
// into one URL-to-recipe operation. Every dependency is injected so each can
// be replaced with a test double.
type Pipeline struct {
	Media       MediaRetriever
	Web         WebExtractor
	Transcriber Transcriber
	Recipes     RecipeExtractor

	// MaxPromptChars caps text sent to the model. Zero means the
	// normalize package default.
	MaxPromptChars int

	// Per-call timeouts for external work. Zero disables the bound.
	DownloadTimeout   time.Duration
	TranscribeTimeout time.Duration
	ExtractTimeout    time.Duration
}

// Extract runs the full pipeline for one URL. Video-path failures propagate
// as *StageError; web-path failures are masked with a placeholder record.
func (p *Pipeline) Extract(ctx context.Context, rawURL string) (*recipe.Recipe, error) {
	kind := source.Classify(rawURL)
	log.Info().Str("url", rawURL).Stringer("kind", kind).Msg("extraction started")
	switch kind {
	case source.KindInstagram, source.KindTikTok:
		return p.fromVideo(ctx, rawURL, kind)
	default:
		return p.fromWebPage(ctx, rawURL)
	}
}

func (p *Pipeline) fromVideo(ctx context.Context, rawURL string, kind source.Kind) (*recipe.Recipe, error) {
	ws, err := media.NewWorkspace()
	if err != nil {
		return nil, stageErr(StageRetrieve, fmt.Errorf("workspace: %w", err))
	}
	defer ws.Close()

	video, err := p.retrieveVideo(ctx, rawURL, kind, ws)
	if err != nil {
		return nil, err
	}

	audioPath, err := p.Media.DemuxAudio(ctx, ws)
	if err != nil {
		return nil, stageErr(StageDemux, err)
	}

	tctx, cancel := withTimeout(ctx, p.TranscribeTimeout)
	defer cancel()
	transcript, err := p.Transcriber.Transcribe(tctx, audioPath)
	if err != nil {
		return nil, stageErr(StageTranscribe, timeoutCause(err))
	}

	text := ComposeText(video.Caption, transcript)
	if text == "" {
		return nil, stageErr(StageCompose, ErrNoContent)
	}

	rec, err := p.extractRecipe(ctx, text)
	if err != nil {
		return nil, stageErr(StageExtract, timeoutCause(err))
	}
	rec.SourceURL = rawURL
	rec.ImageURL = video.ThumbnailURL
	rec.Description = strings.TrimSpace(video.Caption)
	return rec, nil
}

func (p *Pipeline) retrieveVideo(ctx context.Context, rawURL string, kind source.Kind, ws *media.Workspace) (*media.Video, error) {
	dctx, cancel := withTimeout(ctx, p.DownloadTimeout)
	defer cancel()

	if kind == source.KindTikTok {
		video, err := p.Media.FetchTikTok(dctx, rawURL, ws)
		if err != nil {
			return nil, stageErr(StageRetrieve, timeoutCause(err))
		}
		return video, nil
	}

	video, err := p.Media.FetchInstagram(dctx, rawURL)
	if err != nil {
		return nil, stageErr(StageRetrieve, timeoutCause(err))
	}
	if err := p.Media.Download(dctx, video.MediaURL, ws); err != nil {
		return nil, stageErr(StageRetrieve, timeoutCause(err))
	}
	return video, nil
}

// fromWebPage masks extraction and model failures with a placeholder record.
// Recoverable network errors must never crash the whole pipeline here.
func (p *Pipeline) fromWebPage(ctx context.Context, rawURL string) (*recipe.Recipe, error) {
	content, err := p.Web.Extract(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("web extraction failed, substituting placeholder")
		return placeholderRecord(rawURL), nil
	}

	rec, err := p.extractRecipe(ctx, content.Text)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("model extraction failed, substituting placeholder")
		return placeholderRecord(rawURL), nil
	}
	rec.SourceURL = rawURL
	rec.ImageURL = content.ImageURL
	rec.Description = normalize.Truncate(content.Text, descriptionCap)
	return rec, nil
}

func (p *Pipeline) extractRecipe(ctx context.Context, text string) (*recipe.Recipe, error) {
	prompt := normalize.Truncate(normalize.Text(text), p.MaxPromptChars)
	ectx, cancel := withTimeout(ctx, p.ExtractTimeout)
	defer cancel()
	return p.Recipes.Extract(ectx, prompt)
}

// ComposeText joins caption and transcript, caption first, newline-separated.
// It is empty iff both inputs are empty after trimming.
func ComposeText(caption, transcript string) string {
	parts := make([]string, 0, 2)
	if c := strings.TrimSpace(caption); c != "" {
		parts = append(parts, c)
	}
	if tr := strings.TrimSpace(transcript); tr != "" {
		parts = append(parts, tr)
	}
	return strings.Join(parts, "\n")
}

func placeholderRecord(rawURL string) *recipe.Recipe {
	rec := &recipe.Recipe{Title: PlaceholderTitle, SourceURL: rawURL}
	recipe.ApplyDefaults(rec)
	return rec
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}

// timeoutCause surfaces deadline expiry as a distinct cause so callers can
// tell a slow dependency from a broken one.
func timeoutCause(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("timed out: %w", err)
	}
	return err
}
