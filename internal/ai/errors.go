package ai

import (
	"errors"
	"fmt"
)

// ErrAuth matches any AuthError via errors.Is.
var ErrAuth = errors.New("ai: missing credentials")

// ErrMalformed matches any MalformedResponseError via errors.Is.
var ErrMalformed = errors.New("ai: malformed model response")

// AuthError reports a backend invoked without its required credential. It is
// raised before any network call is attempted.
type AuthError struct {
	Provider string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ai: %s backend requires an API key", e.Provider)
}

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

// BackendError wraps a failed backend call. The failure is always surfaced
// to the caller; it is never converted into a fallback payload.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("ai: %s backend call failed: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// MalformedResponseError reports model output that stayed unparseable even
// after fence stripping. Raw carries the offending completion for debugging.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return "ai: model response is not valid JSON"
}

func (e *MalformedResponseError) Is(target error) bool { return target == ErrMalformed }
