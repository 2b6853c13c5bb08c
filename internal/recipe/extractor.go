package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/recipio/recipio/internal/llm"
)

const systemMessage = `You will extract a cooking recipe from the given transcript, caption, or page text.
The text may be in any language. If it is not in English, first translate it conceptually, then extract.

Respond with exactly one JSON object of this shape:

{
  "title": "short title of the recipe",
  "description": "one or two sentence summary",
  "ingredients": ["list of ingredients with amounts if mentioned"],
  "steps": ["step-by-step instructions"],
  "cooking_time": 0,
  "servings": 0,
  "difficulty": "Easy|Medium|Hard",
  "cuisine": "e.g. Italian, Asian, International",
  "tags": ["e.g. salad, snack, dinner"],
  "language": "original language of the text"
}

cooking_time is minutes as an integer. Only respond with valid JSON, no narration.
If you cannot extract something, leave the field empty rather than inventing it.`

// MalformedOutputError reports a model response that could not be parsed as
// JSON even after the brace-span repair attempt. Raw carries the full model
// text for diagnosis.
type MalformedOutputError struct {
	Raw string
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model returned no parseable JSON object: %q", truncateForError(e.Raw))
}

func truncateForError(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// Extractor turns normalized text into a structured Recipe via a chat model.
// Temperature is kept low to favor consistent extraction over creativity.
type Extractor struct {
	Client llm.Client
	Model  string
}

// Extract submits text to the model and parses the response into a Recipe.
// Parsing tries the whole body first, then the first balanced {...} span.
// Defaults are applied to fields the model left empty.
func (e *Extractor) Extract(ctx context.Context, text string) (*Recipe, error) {
	if e.Client == nil || e.Model == "" {
		return nil, errors.New("recipe extractor not configured")
	}
	resp, err := e.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	rec, err := ParseModelOutput(raw)
	if err != nil {
		return nil, err
	}
	ApplyDefaults(rec)
	rec.Language = NormalizeLanguage(rec.Language)
	log.Debug().Str("stage", "extract").Str("model", e.Model).Int("input_len", len(text)).Int("ingredients", len(rec.Ingredients)).Msg("recipe extracted")
	return rec, nil
}

// ParseModelOutput parses a model response expected to contain one JSON
// object. If the whole body is not valid JSON it searches for the first
// balanced {...} span and parses that. Both failing yields
// *MalformedOutputError.
func ParseModelOutput(raw string) (*Recipe, error) {
	var rec Recipe
	if err := json.Unmarshal([]byte(raw), &rec); err == nil {
		return &rec, nil
	}
	if span, ok := braceSpan(raw); ok {
		if err := json.Unmarshal([]byte(span), &rec); err == nil {
			return &rec, nil
		}
	}
	return nil, &MalformedOutputError{Raw: raw}
}

// braceSpan returns the first balanced {...} span in s, starting at the
// first '{'. Braces inside JSON string values do not affect the balance.
func braceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
