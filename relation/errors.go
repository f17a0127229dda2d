package relation

import "errors"

var (
	// ErrUnknownRelation is returned when a relation name is not in the catalog
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrMalformedRelation is returned when a relation string is not "name-typeA-typeB"
	ErrMalformedRelation = errors.New("malformed relation string")
)
