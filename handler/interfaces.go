package handler

import (
	"context"
	"time"

	"github.com/TheStalwart/phoronix-rss-augmented/domain"
	"github.com/TheStalwart/phoronix-rss-augmented/driver"
)

//go:generate mockgen -source=interfaces.go -destination=../test/mocks/handler_mocks.go -package=mocks -exclude_interfaces=JobHandler

// JobHandler runs one augmentation with its collaborators around it.
type JobHandler interface {
	RunOnce(ctx context.Context) (*domain.RunResult, error)
	Status() RunStatus
}

// RunLock keeps runs on different hosts from overlapping.
type RunLock interface {
	Acquire(ctx context.Context) (driver.Lease, bool, error)
}

// RunMetrics records run outcomes.
type RunMetrics interface {
	ObserveRun(result *domain.RunResult, err error)
	ObserveSkippedRun()
	WriteTextfile(path string) error
}

// RunStatus represents the outcome of the latest run.
type RunStatus struct {
	LastRunID   string     `json:"last_run_id,omitempty"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	LastSuccess *time.Time `json:"last_success,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	LastCode    string     `json:"last_error_code,omitempty"`
	Items       int        `json:"items"`
	Skipped     int        `json:"skipped"`
	ErrorCount  int        `json:"error_count"`
	LockedRuns  int        `json:"locked_runs"`
	IsRunning   bool       `json:"is_running"`
}
