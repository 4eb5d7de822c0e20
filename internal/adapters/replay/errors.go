package replay

import "errors"

var (
	// ErrMalformed reports a capture line that cannot be decoded.
	ErrMalformed = errors.New("malformed capture record")
	// ErrMissingHeader reports a capture that does not start with a header.
	ErrMissingHeader = errors.New("capture header missing")
	// ErrOutOfOrder reports a tick older than its predecessor.
	ErrOutOfOrder = errors.New("tick stamps out of order")
)
