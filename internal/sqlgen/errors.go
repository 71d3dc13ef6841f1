package sqlgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors. Every failure returned by the compiler is an *Error
// whose Kind is one of these, so callers can branch with errors.Is.
var (
	// ErrIdentityMissing means a registered entity has no identity attribute.
	ErrIdentityMissing = errors.New("docsql: identity attribute missing")

	// ErrUnknownModel means an entity was used that is not registered.
	ErrUnknownModel = errors.New("docsql: unknown model")

	// ErrUnknownFieldKey means the fields selection names unknown resource types.
	ErrUnknownFieldKey = errors.New("docsql: unknown field key")

	// ErrUnknownField means a named attribute or relationship does not exist.
	ErrUnknownField = errors.New("docsql: unknown field")

	// ErrInvalidField means a named attribute exists but may not be selected.
	ErrInvalidField = errors.New("docsql: invalid field")
)

// Error is a compile-time failure. Names lists the offending names.
type Error struct {
	Kind  error
	Names []string
	msg   string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, names []string, format string, args ...any) *Error {
	return &Error{Kind: kind, Names: names, msg: fmt.Sprintf(format, args...)}
}

func identityMissing(entity, identity string) *Error {
	return newError(ErrIdentityMissing, []string{entity},
		"Couldn't find '%s' property for model %s.", identity, entity)
}

func unknownModel(entity string) *Error {
	return newError(ErrUnknownModel, []string{entity},
		"Unknown model given. Could not find model '%s' from given model mapping.", entity)
}

func unknownFieldKeys(keys []string) *Error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	quoted := make([]string, len(sorted))
	for i, k := range sorted {
		quoted[i] = "'" + k + "'"
	}
	noun := "key"
	if len(sorted) > 1 {
		noun = "keys"
	}
	return newError(ErrUnknownFieldKey, sorted,
		"Unknown field keys given. Could not find %s %s from given model mapping.", noun, strings.Join(quoted, ","))
}

func unknownField(entity, field string) *Error {
	return newError(ErrUnknownField, []string{field},
		"Unknown field '%s'. Given entity '%s' does not have attribute named '%s'.", field, entity, field)
}

func unknownRelationship(entity, name string) *Error {
	return newError(ErrUnknownField, []string{name},
		"Unknown field '%s'. Given entity '%s' does not have relationship named '%s'.", name, entity, name)
}

func reservedField(field string) *Error {
	return newError(ErrInvalidField, []string{field},
		"Field '%s' is invalid. '%s' is a reserved keyword.", field, field)
}

func foreignKeyField(field, column string) *Error {
	return newError(ErrInvalidField, []string{field},
		"Field '%s' is invalid. The underlying column '%s' has foreign key. "+
			"You can't include foreign key attributes. Consider including relationship attributes.", field, column)
}

func primaryKeyField(field, column string) *Error {
	return newError(ErrInvalidField, []string{field},
		"Field '%s' is invalid. The underlying column '%s' is primary key column.", field, column)
}

func relationshipSort(field string) *Error {
	return newError(ErrInvalidField, []string{field},
		"Field '%s' is invalid. Relationships can't be used for sorting.", field)
}
