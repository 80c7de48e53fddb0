package features

import "errors"

var (
	// ErrTypeMismatch indicates a value whose runtime kind disagrees with the
	// kind a column expects.
	ErrTypeMismatch = errors.New("features: value type does not match column kind")
	// ErrOutOfRange indicates a source or component index outside its valid range.
	ErrOutOfRange = errors.New("features: index out of range")
	// ErrUnsupportedColumn indicates a column kind that cannot be added to a schema.
	ErrUnsupportedColumn = errors.New("features: unsupported column kind")
	// ErrDuplicateColumn indicates a column name already present in the schema.
	ErrDuplicateColumn = errors.New("features: duplicate column name")
	// ErrInvalidInteraction indicates an interaction with no components or a
	// component that is not strictly earlier than the interaction.
	ErrInvalidInteraction = errors.New("features: invalid interaction components")
	// ErrReferencedColumn indicates removal of a column an interaction depends on.
	ErrReferencedColumn = errors.New("features: column is referenced by an interaction")
	// ErrRawColumn indicates an attempt to remove a raw prefix column.
	ErrRawColumn = errors.New("features: raw columns cannot be removed")
	// ErrSchemaMismatch indicates a persisted record of the wrong class.
	ErrSchemaMismatch = errors.New("features: persisted record class mismatch")
	// ErrUnknownProvider indicates a provider class with no registered factory.
	ErrUnknownProvider = errors.New("features: unknown provider class")
	// ErrInvalidProvider indicates a provider whose names and types disagree.
	ErrInvalidProvider = errors.New("features: provider names and types disagree")
)
