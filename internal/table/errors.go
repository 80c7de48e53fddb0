package table

import "errors"

var (
	// ErrNoInput indicates Load was called without locations.
	ErrNoInput = errors.New("table: no input locations")
	// ErrEmptyInput indicates an input without a header row.
	ErrEmptyInput = errors.New("table: input has no header row")
	// ErrHeaderMismatch indicates inputs whose headers differ.
	ErrHeaderMismatch = errors.New("table: input headers differ")
)
