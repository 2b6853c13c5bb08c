package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNoMediaFound means the lookup service answered but carried no playable
// media URL.
var ErrNoMediaFound = errors.New("no playable media URL in lookup response")

// ErrMissingCredentials means the lookup client was constructed without API
// credentials. Startup validation normally catches this first.
var ErrMissingCredentials = errors.New("lookup service credentials not configured")

// LookupClient resolves an Instagram post shortcode to its direct media URL,
// caption, and thumbnail through a RapidAPI-hosted metadata service.
type LookupClient struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	APIHost    string
}

// reelResponse tolerates the service's shape drift: the media URL appears as
// video_url or video_versions[0].url, the caption as a plain string or a
// {text} object, and the thumbnail under image_versions2 or thumbnail.
type reelResponse struct {
	VideoURL      string `json:"video_url"`
	VideoVersions []struct {
		URL string `json:"url"`
	} `json:"video_versions"`
	Caption        json.RawMessage `json:"caption"`
	Description    string          `json:"description"`
	ImageVersions2 struct {
		Candidates []struct {
			URL string `json:"url"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	Thumbnail string `json:"thumbnail"`
}

// LookupReel fetches post metadata for a shortcode.
func (c *LookupClient) LookupReel(ctx context.Context, shortcode string) (*Video, error) {
	if c.APIKey == "" || c.APIHost == "" {
		return nil, ErrMissingCredentials
	}
	endpoint := c.BaseURL
	if endpoint == "" {
		endpoint = "https://" + c.APIHost + "/reel_by_shortcode"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?shortcode="+url.QueryEscape(shortcode), nil)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.APIKey)
	req.Header.Set("X-RapidAPI-Host", c.APIHost)

	client := c.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup call: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("lookup read: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup service returned %d: %s", resp.StatusCode, truncate(body, 200))
	}

	var reel reelResponse
	if err := json.Unmarshal(body, &reel); err != nil {
		return nil, fmt.Errorf("lookup decode: %w", err)
	}

	mediaURL := reel.VideoURL
	if mediaURL == "" && len(reel.VideoVersions) > 0 {
		mediaURL = reel.VideoVersions[0].URL
	}
	if mediaURL == "" {
		return nil, ErrNoMediaFound
	}

	thumb := reel.Thumbnail
	if len(reel.ImageVersions2.Candidates) > 0 && reel.ImageVersions2.Candidates[0].URL != "" {
		thumb = reel.ImageVersions2.Candidates[0].URL
	}

	return &Video{
		MediaURL:     mediaURL,
		Caption:      captionText(reel.Caption, reel.Description),
		ThumbnailURL: thumb,
	}, nil
}

// captionText accepts the caption as either a JSON string or an object with
// a text field, falling back to the description.
func captionText(raw json.RawMessage, fallback string) string {
	if len(raw) > 0 {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		var obj struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(raw, &obj); err == nil && obj.Text != "" {
			return obj.Text
		}
	}
	return fallback
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
