package resource

import (
	"errors"
)

var (
	// ErrEmptyResponse is returned when update-from-write is enabled but the
	// engine's write operation returned nothing to refresh from
	ErrEmptyResponse = errors.New("cannot update fields: update_from_write is enabled but no object was returned")

	// ErrAmbiguousResourceID is returned when a type declares more than one resource id field
	ErrAmbiguousResourceID = errors.New("more than one field is marked as resource id")

	// ErrDuplicateField is returned when a type declares the same field name twice
	ErrDuplicateField = errors.New("duplicate field")

	// ErrFieldNotFound is returned when a field does not exist on a resource type
	ErrFieldNotFound = errors.New("field not found")

	// ErrNoEngine is returned by lifecycle operations on a type with no dispatch engine bound
	ErrNoEngine = errors.New("no dispatch engine bound to resource type")

	// ErrResourceDeleted is returned when writing through an instance that was deleted
	ErrResourceDeleted = errors.New("resource instance has been deleted")

	// ErrStaticSchema is returned when runtime field discovery is attempted on a type
	// that was not defined with a dynamic schema
	ErrStaticSchema = errors.New("resource type does not allow dynamic fields")
)

// IsEmptyResponse returns true if the error is ErrEmptyResponse
func IsEmptyResponse(err error) bool {
	return errors.Is(err, ErrEmptyResponse)
}

// IsFieldNotFound returns true if the error is ErrFieldNotFound
func IsFieldNotFound(err error) bool {
	return errors.Is(err, ErrFieldNotFound)
}
