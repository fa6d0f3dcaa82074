package domain

import "errors"

// Error taxonomy shared by every layer. Errors returned by repositories and
// services wrap exactly one of these so callers can classify with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidSize     = errors.New("invalid size")
	ErrDuplicateSKU    = errors.New("duplicate sku")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpload          = errors.New("upload failed")
)
