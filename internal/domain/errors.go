package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrConfiguration     = errors.New("configuration error")
	ErrProviderFailure   = errors.New("provider failure")
	ErrGenerationFailed  = errors.New("generation failed")
	ErrChatUnavailable   = errors.New("chat provider not configured")
	ErrUnknownProvider   = errors.New("unknown provider")
	ErrInvalidImageInput = errors.New("invalid image data")
)

// ProviderError reports a failed call to an external image or text provider.
// Its message never carries credentials and is safe to log.
type ProviderError struct {
	Provider string
	Op       string
	Status   int
	Err      error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	if e.Op != "" {
		b.WriteString(": ")
		b.WriteString(e.Op)
	}
	if e.Status > 0 {
		fmt.Fprintf(&b, ": status %d", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrProviderFailure) match every ProviderError.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderFailure
}

// NewProviderError builds a ProviderError; status may be zero when no HTTP
// response was received.
func NewProviderError(provider, op string, status int, err error) *ProviderError {
	return &ProviderError{Provider: provider, Op: op, Status: status, Err: err}
}

// ValidationError wraps a user-facing validation failure. Key selects the
// localized message shown to the caller.
type ValidationError struct {
	Key    string
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return "validation failed: " + e.Detail
	}
	return "validation failed: " + e.Key
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
