// Package errors defines the domain error values shared across services.
// Errors carry a stable machine-readable code so the transport layer can map
// them to status codes in exactly one place, without inspecting messages.
package errors

import stderrors "errors"

// DomainError is a typed failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is makes errors.Is match on the code rather than pointer identity, so
// wrapped or reconstructed domain errors still compare equal.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the domain code of err, or empty if err does not wrap a DomainError.
func CodeOf(err error) string {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Code
	}
	return ""
}
