package media

import (
	"os"
	"path/filepath"
)

// Workspace is a scoped temporary directory holding the video and audio
// artifacts of one extraction. It must be released on every exit path;
// callers defer Close immediately after NewWorkspace succeeds.
type Workspace struct {
	dir string
}

func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "recipio-media-*")
	if err != nil {
		return nil, err
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string { return w.dir }

// VideoPath is where the downloaded video lands.
func (w *Workspace) VideoPath() string { return filepath.Join(w.dir, "video.mp4") }

// AudioPath is where the demuxed audio track lands.
func (w *Workspace) AudioPath() string { return filepath.Join(w.dir, "audio.wav") }

// Close deletes the workspace and everything in it. Safe to call more than once.
func (w *Workspace) Close() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}
