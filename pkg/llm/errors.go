package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrUnreachable is wrapped by providers when the backend cannot be contacted.
	ErrUnreachable = errors.New("llm backend unreachable")
	// ErrRejected is wrapped by providers when the backend refuses a request.
	ErrRejected = errors.New("llm backend rejected request")
)

type GenerationErrorKind string

const (
	KindUnavailable GenerationErrorKind = "unavailable"
	KindBusy        GenerationErrorKind = "busy"
	KindRejected    GenerationErrorKind = "rejected"
	KindTimeout     GenerationErrorKind = "timeout"
)

// GenerationError is returned by the model gateway for any failed generation.
type GenerationError struct {
	Kind GenerationErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s", e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// NewGenerationError classifies a provider error.
func NewGenerationError(err error) *GenerationError {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr
	}

	kind := KindRejected
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	case errors.Is(err, ErrUnreachable):
		kind = KindUnavailable
	}
	return &GenerationError{Kind: kind, Err: err}
}
