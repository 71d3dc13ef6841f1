package schema

import "errors"

var (
	// ErrInvalidSchema is returned when an entity graph fails validation.
	ErrInvalidSchema = errors.New("docsql/schema: invalid schema")

	// ErrUnknownEntity is returned by Graph lookups for entities that are
	// not part of the graph.
	ErrUnknownEntity = errors.New("docsql/schema: unknown entity")

	// ErrUnknownRelationship is returned by JoinConditionOf for
	// relationships the entity does not declare.
	ErrUnknownRelationship = errors.New("docsql/schema: unknown relationship")
)

// IsInvalidSchemaErr returns true if err is or wraps ErrInvalidSchema.
func IsInvalidSchemaErr(err error) bool {
	return errors.Is(err, ErrInvalidSchema)
}

// IsUnknownEntityErr returns true if err is or wraps ErrUnknownEntity.
func IsUnknownEntityErr(err error) bool {
	return errors.Is(err, ErrUnknownEntity)
}
