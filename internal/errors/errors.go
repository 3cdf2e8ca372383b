// Package errors defines the domain error taxonomy shared across
// services and handlers. Every error carries a stable machine-readable
// code so clients can tell "retry" from "show a new QR" from "already
// paid elsewhere".
package errors

import "errors"

// DomainError is a typed error with a stable code and an HTTP status
// hint for the transport layer.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches by code so wrapped domain errors compare correctly.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if errors.As(target, &de) {
		return de.Code == e.Code
	}
	return false
}
