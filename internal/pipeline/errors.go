package pipeline

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step that failed.
type Stage string

const (
	StageRetrieve   Stage = "retrieve"
	StageDemux      Stage = "demux"
	StageTranscribe Stage = "transcribe"
	StageCompose    Stage = "compose"
	StageExtract    Stage = "extract"
	StageWeb        Stage = "web"
)

// ErrNoContent means a video post yielded neither caption nor transcript, so
// there is nothing to send to the model.
var ErrNoContent = errors.New("no caption or transcript available")

// StageError is a terminal extraction failure tagged with the stage it
// occurred in. The pipeline never partially succeeds past a failing stage.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
