package ingestion

import (
	"errors"
	"fmt"
)

// ErrFrameNotFound is returned when the outer page has no usable frame reference.
var ErrFrameNotFound = errors.New("exchange-rate frame not found")

// Stage names the step of a reload that failed.
type Stage string

const (
	StageFetch       Stage = "fetch"
	StageParse       Stage = "parse"
	StageSchema      Stage = "schema"
	StageInsert      Stage = "insert"
	StageRecalculate Stage = "recalculate"
)

// Retryable reports whether re-triggering the reload can succeed without a code
// or configuration change. A parse failure means the remote layout moved.
func (s Stage) Retryable() bool {
	return s != StageParse
}

// Upstream reports whether the failure happened on the rate-source site.
func (s Stage) Upstream() bool {
	return s == StageFetch || s == StageParse
}

// ReloadError is the fatal outcome of an ingestion run.
type ReloadError struct {
	Stage Stage
	Err   error
	// Inserted counts rows written before the failure.
	Inserted int
}

func (e *ReloadError) Error() string {
	return fmt.Sprintf("currency reload failed at %s stage: %v", e.Stage, e.Err)
}

func (e *ReloadError) Unwrap() error {
	return e.Err
}

// Stale is true when all rows were persisted but the conversion update did not
// run, so derived values lag behind the new rates.
func (e *ReloadError) Stale() bool {
	return e.Stage == StageRecalculate
}

// StageOf extracts the failing stage from err, or "" when err carries none.
func StageOf(err error) Stage {
	var reloadErr *ReloadError
	if errors.As(err, &reloadErr) {
		return reloadErr.Stage
	}
	return ""
}
