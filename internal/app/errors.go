package service

import "errors"

// Sentinel errors.
var (
	// ErrDuplicateReplay reports a replay whose game id was already processed.
	ErrDuplicateReplay = errors.New("duplicate replay")
	// ErrNotStarted reports a call that needs a started service.
	ErrNotStarted = errors.New("service not started")
	// ErrQueueFull reports that the job queue rejected a submission.
	ErrQueueFull = errors.New("replay queue full")
)
