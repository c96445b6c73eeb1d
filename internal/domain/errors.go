package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy for the portal. Handlers map these onto HTTP statuses:
// ValidationError → 400 with the violated rule, everything else → 500 with
// a generic retry message (details stay in the server log).

// ValidationError reports bad or missing input. The message is user-facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

var (
	// ErrGenerationUnavailable means the language-model collaborator was
	// unreachable, timed out, or returned no generated text.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrMalformedResponse means the model replied but its text could not be
	// parsed into a subject and body. Raw text is logged server-side only.
	ErrMalformedResponse = errors.New("malformed generation response")
)

// PersistenceError wraps a store read/write failure. Surfaced to callers as a
// generic retry message; the wrapped cause goes to the log.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
