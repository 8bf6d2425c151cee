package model

import (
	"errors"
	"fmt"
)

// ErrorKind classifies pipeline failures. Only KindOutputFailure is fatal.
type ErrorKind int

const (
	KindMissingInput ErrorKind = iota + 1
	KindMalformedInput
	KindAlignmentFailure
	KindOutputFailure
	KindEmptyResult
)

// Sentinels for errors.Is matching against a *PipelineError of the same kind.
var (
	ErrMissingInput     = errors.New("missing input")
	ErrMalformedInput   = errors.New("malformed input")
	ErrAlignmentFailure = errors.New("alignment failure")
	ErrOutputFailure    = errors.New("output failure")
	ErrEmptyResult      = errors.New("empty result")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case KindMissingInput:
		return ErrMissingInput
	case KindMalformedInput:
		return ErrMalformedInput
	case KindAlignmentFailure:
		return ErrAlignmentFailure
	case KindOutputFailure:
		return ErrOutputFailure
	case KindEmptyResult:
		return ErrEmptyResult
	}
	return nil
}

func (k ErrorKind) String() string {
	switch k {
	case KindMissingInput:
		return "missing_input"
	case KindMalformedInput:
		return "malformed_input"
	case KindAlignmentFailure:
		return "alignment_failure"
	case KindOutputFailure:
		return "output_failure"
	case KindEmptyResult:
		return "empty_result"
	}
	return "unknown"
}

// Fatal reports whether an error of this kind must stop the process.
func (k ErrorKind) Fatal() bool {
	return k == KindOutputFailure
}

// PipelineError carries the kind of a failure, the run and file it concerns
// (when known) and the underlying cause.
type PipelineError struct {
	Kind ErrorKind
	Run  RunID
	Path string
	Err  error
}

func (e *PipelineError) Error() string {
	msg := e.Kind.sentinel().Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s '%s'", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *PipelineError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// NewError builds a PipelineError for a file path.
func NewError(kind ErrorKind, path string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Path: path, Err: err}
}

// KindOf returns the kind of a pipeline error, or 0 if err is not one.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
