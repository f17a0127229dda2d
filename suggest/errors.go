package suggest

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingKey is returned when a prediction dump lacks a required key
	ErrMissingKey = errors.New("missing required key")

	// ErrBadHeader is returned when a table CSV does not start with the fixed columns
	ErrBadHeader = errors.New("unexpected table header")

	// ErrNoRecords is returned when nothing is left to aggregate
	ErrNoRecords = errors.New("no prediction records")
)

/*
KeyError locates a missing key in a prediction dump
*/
type KeyError struct {
	Source string
	Path   string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s: %v %s", e.Source, ErrMissingKey, e.Path)
}

func (e *KeyError) Unwrap() error {
	return ErrMissingKey
}
