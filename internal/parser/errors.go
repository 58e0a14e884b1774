package parser

import "errors"

var (
	// ErrInvalidParseFile is returned by ParseFile when the input path is
	// missing, unreadable or a directory.
	ErrInvalidParseFile = errors.New("invalid parse file")

	// ErrUndefinedResultKey is returned by Result.GetStrict for a field that
	// was not extracted.
	ErrUndefinedResultKey = errors.New("undefined result key")
)
