package model

import "errors"

var (
	// ErrNotFound is returned by a tier that holds no document yet.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidDocument is returned when a document fails schema validation.
	ErrInvalidDocument = errors.New("invalid document")
)
