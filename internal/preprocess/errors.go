package preprocess

import (
	"errors"
	"fmt"
)

// UserMessage is the generic text shown to end users for any image failure.
const UserMessage = "could not process image"

// Stage identifies the pipeline stage where an error occurred.
type Stage string

const (
	StageConfig   Stage = "config"
	StageDecode   Stage = "decode"
	StageBinarize Stage = "binarize"
	StageEncode   Stage = "encode"
)

// ErrInvalidConfig is wrapped by every config validation failure.
var ErrInvalidConfig = errors.New("invalid preprocess config")

// Error is returned by every failed preprocessing run.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("preprocess %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StageOf returns the failing stage of err, or "" when err did not come from
// this package.
func StageOf(err error) Stage {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Stage
	}
	return ""
}

func stageError(stage Stage, err error) *Error {
	return &Error{Stage: stage, Err: err}
}
