package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestNewGenerationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want GenerationErrorKind
	}{
		{"deadline", fmt.Errorf("request: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", timeoutErr{}, KindTimeout},
		{"unreachable", fmt.Errorf("%w: dial tcp: connection refused", ErrUnreachable), KindUnavailable},
		{"rejected", fmt.Errorf("%w: status 500", ErrRejected), KindRejected},
		{"unknown", errors.New("boom"), KindRejected},
		{"already classified", &GenerationError{Kind: KindBusy}, KindBusy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewGenerationError(tt.err)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestGenerationErrorUnwrap(t *testing.T) {
	err := NewGenerationError(fmt.Errorf("%w: refused", ErrUnreachable))

	assert.ErrorIs(t, err, ErrUnreachable)
	assert.Contains(t, err.Error(), "unavailable")

	var genErr *GenerationError
	assert.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &genErr))
	assert.Equal(t, "generation busy", (&GenerationError{Kind: KindBusy}).Error())
}
