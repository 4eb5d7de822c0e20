package volume

import "errors"

// Sentinel errors.
var (
	// ErrUnknownMap reports a map without configured bounds.
	ErrUnknownMap = errors.New("unknown map")
	// ErrInvalidBounds reports a non-positive extent or resolution.
	ErrInvalidBounds = errors.New("invalid volume bounds")
	// ErrCorrupt reports a serialized volume that cannot be decoded.
	ErrCorrupt = errors.New("corrupt volume data")
)
