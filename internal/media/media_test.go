package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspace_CloseRemovesArtifacts(t *testing.T) {
	ws, err := NewWorkspace()
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	dir := ws.Dir()
	if err := os.WriteFile(ws.VideoPath(), []byte("fake video"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if err := os.WriteFile(ws.AudioPath(), []byte("fake audio"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	if err := ws.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected workspace removed, stat err = %v", err)
	}
	// second Close is a no-op
	if err := ws.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}

func TestWorkspace_PathsUnderDir(t *testing.T) {
	ws, err := NewWorkspace()
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	defer ws.Close()
	if filepath.Dir(ws.VideoPath()) != ws.Dir() || filepath.Dir(ws.AudioPath()) != ws.Dir() {
		t.Fatalf("artifact paths must live inside the workspace")
	}
}

func lookupServer(t *testing.T, status int, body string) *LookupClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-RapidAPI-Key") == "" {
			t.Errorf("expected API key header")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return &LookupClient{BaseURL: srv.URL, APIKey: "key", APIHost: "host"}
}

func TestLookupReel_DirectVideoURL(t *testing.T) {
	c := lookupServer(t, 200, `{"video_url":"https://cdn/v.mp4","caption":"pasta night","thumbnail":"https://cdn/t.jpg"}`)
	v, err := c.LookupReel(context.Background(), "Cxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MediaURL != "https://cdn/v.mp4" || v.Caption != "pasta night" || v.ThumbnailURL != "https://cdn/t.jpg" {
		t.Fatalf("unexpected video: %+v", v)
	}
}

func TestLookupReel_VideoVersionsFallback(t *testing.T) {
	c := lookupServer(t, 200, `{"video_versions":[{"url":"https://cdn/v2.mp4"}],"caption":{"text":"from object"},"image_versions2":{"candidates":[{"url":"https://cdn/c0.jpg"}]}}`)
	v, err := c.LookupReel(context.Background(), "Cxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.MediaURL != "https://cdn/v2.mp4" {
		t.Fatalf("expected video_versions fallback, got %q", v.MediaURL)
	}
	if v.Caption != "from object" {
		t.Fatalf("expected caption from object form, got %q", v.Caption)
	}
	if v.ThumbnailURL != "https://cdn/c0.jpg" {
		t.Fatalf("expected image_versions2 candidate, got %q", v.ThumbnailURL)
	}
}

func TestLookupReel_NoMedia(t *testing.T) {
	c := lookupServer(t, 200, `{"caption":"no video here"}`)
	_, err := c.LookupReel(context.Background(), "Cxyz")
	if !errors.Is(err, ErrNoMediaFound) {
		t.Fatalf("expected ErrNoMediaFound, got %v", err)
	}
}

func TestLookupReel_ServiceError(t *testing.T) {
	c := lookupServer(t, 503, `upstream broke`)
	if _, err := c.LookupReel(context.Background(), "Cxyz"); err == nil {
		t.Fatalf("expected error on non-200 response")
	}
}

func TestLookupReel_MissingCredentials(t *testing.T) {
	c := &LookupClient{}
	_, err := c.LookupReel(context.Background(), "Cxyz")
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestDemuxAudio_MissingVideo(t *testing.T) {
	ws, err := NewWorkspace()
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	defer ws.Close()
	r := &Retriever{}
	if _, err := r.DemuxAudio(context.Background(), ws); err == nil {
		t.Fatalf("expected error when no video was downloaded")
	}
}
