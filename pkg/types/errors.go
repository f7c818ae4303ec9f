package types

import "errors"

// Persistence errors.
var (
	ErrNotFound         = errors.New("node not found")
	ErrInvalidID        = errors.New("invalid node ID")
	ErrInvalidData      = errors.New("invalid node data")
	ErrInvalidName      = errors.New("invalid name")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidQuery     = errors.New("invalid query")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// Trash lifecycle errors.
var (
	ErrNotThrowable         = errors.New("node type is not throwable")
	ErrNotThrown            = errors.New("node carries no trash metadata")
	ErrAlreadyInTrash       = errors.New("node is already in the trash")
	ErrTrashDisabled        = errors.New("trash is disabled")
	ErrFormerParentGone     = errors.New("former parent no longer exists")
	ErrPartialTrashMetadata = errors.New("trash metadata is partially present")
)

// Detail bag errors.
var (
	ErrUnsupportedValue = errors.New("unsupported detail value type")
	ErrTypeMismatch     = errors.New("type mismatch")
)

// Configuration errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrRootIDEmpty          = errors.New("root ID must not be empty")
	ErrInvalidPurgeInterval = errors.New("invalid purge interval")
)
