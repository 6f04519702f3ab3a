package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAuthPending marks a device-authorization poll that the user has not
	// yet approved.
	ErrAuthPending = errors.New("authorization pending")
	// ErrAuthExpired marks an expired or invalid device code; the flow must
	// be restarted from the beginning.
	ErrAuthExpired = errors.New("authorization expired")
	// ErrTransport marks a non-success response from the tracking service.
	ErrTransport = errors.New("transport error")
	// ErrMalformedResponse marks a response missing a required field.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoMatch marks a UI search that produced no usable result.
	ErrNoMatch = errors.New("no match found")
	// ErrTimeout marks a UI step that did not complete within its bound.
	ErrTimeout = errors.New("timeout")
)

// Wrap builds an error message that includes operation context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort the enclosing operation.
// Mirroring failures against individual records are recoverable; everything
// tagged as auth-expired or transport is not.
func Fatal(err error) bool {
	return errors.Is(err, ErrAuthExpired) || errors.Is(err, ErrTransport) || errors.Is(err, ErrMalformedResponse)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
