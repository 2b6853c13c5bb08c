package transcribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/recipio/recipio/internal/llm"
)

// Transcriber sends an audio artifact to a Whisper-style speech-to-text
// service and returns plain text. There is no retry; the caller decides
// whether a failed or empty transcript is fatal.
type Transcriber struct {
	Client llm.SpeechClient
	Model  string
}

func (t *Transcriber) model() string {
	if t.Model != "" {
		return t.Model
	}
	return openai.Whisper1
}

// Transcribe converts the audio file at path to text.
func (t *Transcriber) Transcribe(ctx context.Context, path string) (string, error) {
	if t.Client == nil {
		return "", errors.New("transcriber not configured")
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("audio file unreadable: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("audio file %s is empty", path)
	}
	resp, err := t.Client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model(),
		FilePath: path,
	})
	if err != nil {
		return "", fmt.Errorf("transcription call: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	log.Debug().Str("stage", "transcribe").Int("chars", len(text)).Msg("audio transcribed")
	return text, nil
}
