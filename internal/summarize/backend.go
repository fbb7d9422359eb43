package summarize

import (
	"context"
	"errors"
	"fmt"
)

// Backend is a language-generation service that produces a synopsis for one
// article. Implementations classify their failures as transient (worth a
// retry) or permanent via BackendError.
type Backend interface {
	Name() string
	Summarize(ctx context.Context, title, body string, maxChars int) (string, error)
}

// BackendError wraps a backend failure with its retry class.
type BackendError struct {
	Transient bool
	Err       error
}

func (e *BackendError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("backend error (%s): %v", kind, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Transient marks an error as retryable: timeouts, rate limits, 5xx.
func Transient(err error) error {
	return &BackendError{Transient: true, Err: err}
}

// Permanent marks an error as not worth retrying: malformed requests,
// content-policy rejections, auth failures.
func Permanent(err error) error {
	return &BackendError{Transient: false, Err: err}
}

// IsTransient reports whether err should be retried. Anything without an
// explicit class, including per-call deadline expiry, is treated as transient
// so flaky backends get their full retry budget.
func IsTransient(err error) bool {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Transient
	}
	return true
}
