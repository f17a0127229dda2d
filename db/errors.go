package db

import "errors"

var (
	// ErrTableExists is returned when trying to create a table that already exists
	ErrTableExists = errors.New("table already exists")

	// ErrTableNotFound is returned when trying to access a non-existent table
	ErrTableNotFound = errors.New("table not found")

	// ErrRowNotFound is returned when a vote targets a row outside the table
	ErrRowNotFound = errors.New("row not found")

	// ErrInvalidRow is returned when a vote targets a row whose pair is not valid
	ErrInvalidRow = errors.New("votes are not accepted on invalid rows")

	// ErrUnknownAnnotator is returned when the voter has no column in the table
	ErrUnknownAnnotator = errors.New("unknown annotator")

	// ErrInvalidVote is returned when a vote is neither 0 nor 1
	ErrInvalidVote = errors.New("vote must be 0 or 1")
)
