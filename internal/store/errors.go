package store

import "errors"

// Common errors returned by the Store.
var (
	// ErrUnknownTag indicates the type tag is not in the registry.
	ErrUnknownTag = errors.New("unknown type tag")

	// ErrNotFound indicates no record exists under the requested key.
	ErrNotFound = errors.New("no instance found")

	// ErrReservedAttribute indicates an attempt to overwrite id, __class__ or a timestamp.
	ErrReservedAttribute = errors.New("reserved attribute")
)

// IsCoercionError returns true if err was caused by a value that could not
// be converted to its declared type.
func IsCoercionError(err error) bool {
	var cerr *CoercionError
	return errors.As(err, &cerr)
}
