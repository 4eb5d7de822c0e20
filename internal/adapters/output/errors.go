package output

import "errors"

// ErrNoSummary reports a result without a match summary.
var ErrNoSummary = errors.New("result has no summary")
