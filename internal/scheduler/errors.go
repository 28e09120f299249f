package scheduler

import "errors"

var (
	// ErrUnknownJob is returned by RunNow for a name that was never registered
	ErrUnknownJob = errors.New("unknown job")
	// ErrJobRunning is returned when a run overlaps the previous one
	ErrJobRunning = errors.New("job already running")
)
