package models

import (
	"time"

	"github.com/google/uuid"
)

// NewRun creates a running generation record with a generated UUID
func NewRun(account, instanceURL, outputPath string) *Run {
	return &Run{
		ID:          uuid.New(),
		Account:     account,
		InstanceURL: instanceURL,
		OutputPath:  outputPath,
		Status:      RunStatusRunning,
		StartedAt:   time.Now().UTC(),
	}
}

// Finish marks the run completed, or failed when err is non-nil.
func (r *Run) Finish(entryCount int, err error) {
	now := time.Now().UTC()
	r.FinishedAt = &now
	r.EntryCount = entryCount
	if err != nil {
		r.Status = RunStatusFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunStatusCompleted
}
