package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/recipio/recipio/internal/source"
)

// Video references playable media resolved from a post URL, together with
// the caption and thumbnail captured along the way.
type Video struct {
	MediaURL     string
	Caption      string
	ThumbnailURL string
}

// Retriever downloads short-form video posts and demuxes their audio track
// into a scoped workspace. Downloads shell out to the yt-dlp binary and audio
// extraction to ffmpeg.
type Retriever struct {
	Lookup     *LookupClient
	YtDlpPath  string
	FFmpegPath string
}

func (r *Retriever) ytdlp() string {
	if r.YtDlpPath != "" {
		return r.YtDlpPath
	}
	return "yt-dlp"
}

func (r *Retriever) ffmpeg() string {
	if r.FFmpegPath != "" {
		return r.FFmpegPath
	}
	return "ffmpeg"
}

// FetchInstagram resolves an Instagram post URL to its direct media URL and
// caption via the shortcode lookup service.
func (r *Retriever) FetchInstagram(ctx context.Context, postURL string) (*Video, error) {
	shortcode, err := source.InstagramShortcode(postURL)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("stage", "retrieve").Str("shortcode", shortcode).Msg("resolving instagram post")
	return r.Lookup.LookupReel(ctx, shortcode)
}

// Download fetches the video behind mediaURL into the workspace.
func (r *Retriever) Download(ctx context.Context, mediaURL string, ws *Workspace) error {
	cmd := exec.CommandContext(ctx, r.ytdlp(), "-f", "best", "-o", ws.VideoPath(), "--quiet", "--no-warnings", mediaURL)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp download: %w: %s", err, tail(stderr.String()))
	}
	return nil
}

// tiktokInfo is the slice of yt-dlp's info JSON we care about.
type tiktokInfo struct {
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
}

// FetchTikTok downloads a TikTok video directly by URL, capturing description
// and thumbnail metadata from the info JSON yt-dlp prints while downloading.
func (r *Retriever) FetchTikTok(ctx context.Context, postURL string, ws *Workspace) (*Video, error) {
	cmd := exec.CommandContext(ctx, r.ytdlp(), "-f", "best", "-o", ws.VideoPath(), "--print-json", "--no-warnings", postURL)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("yt-dlp download: %w: %s", err, tail(stderr.String()))
	}
	var info tiktokInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		// Download succeeded; metadata is best-effort.
		log.Warn().Err(err).Msg("could not parse yt-dlp info JSON")
	}
	return &Video{MediaURL: postURL, Caption: info.Description, ThumbnailURL: info.Thumbnail}, nil
}

// DemuxAudio extracts the audio track of the downloaded video into a mono
// 16 kHz WAV file, the format the transcription service handles best.
func (r *Retriever) DemuxAudio(ctx context.Context, ws *Workspace) (string, error) {
	if _, err := os.Stat(ws.VideoPath()); err != nil {
		return "", fmt.Errorf("no downloaded video: %w", err)
	}
	cmd := exec.CommandContext(ctx, r.ffmpeg(),
		"-y", "-i", ws.VideoPath(),
		"-vn", "-acodec", "pcm_s16le", "-ar", "16000", "-ac", "1",
		ws.AudioPath(),
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg demux: %w: %s", err, tail(stderr.String()))
	}
	return ws.AudioPath(), nil
}

// tail keeps the last few lines of tool output for error messages.
func tail(s string) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, " | ")
}
