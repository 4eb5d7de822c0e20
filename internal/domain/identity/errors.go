package identity

import "errors"

// Sentinel errors.
var (
	// ErrDuplicateJoin reports a join for a handle that is already active.
	ErrDuplicateJoin = errors.New("duplicate join")
)
