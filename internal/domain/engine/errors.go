package engine

import "errors"

// Sentinel errors.
var (
	// ErrNotInitialized reports a dispatch or finalize before Init.
	ErrNotInitialized = errors.New("engine not initialized")
	// ErrAlreadyInitialized reports a second Init.
	ErrAlreadyInitialized = errors.New("engine already initialized")
	// ErrFinalized reports a mutation after Finalize.
	ErrFinalized = errors.New("engine finalized")
	// ErrEndConditionNotReached reports a finalize for a match that never ended.
	ErrEndConditionNotReached = errors.New("end condition not reached")
	// ErrUnknownEvent reports a payload the engine does not handle.
	ErrUnknownEvent = errors.New("unknown event payload")
)

// FaultKind names a class of recoverable integrity problems.
type FaultKind string

// Fault kinds.
const (
	FaultDuplicateJoin          FaultKind = "duplicate_join"
	FaultUnknownMap             FaultKind = "unknown_map"
	FaultMissingStabStart       FaultKind = "missing_stab_start"
	FaultEndConditionNotReached FaultKind = "end_condition_not_reached"
	FaultUnresolvedWinner       FaultKind = "unresolved_winner"
)
