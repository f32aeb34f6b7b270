package model

import "time"

// Run statuses.
const (
	RunRunning   = "running"
	RunCompleted = "completed"
	RunFailed    = "failed"
)

// Run is one workflow execution recorded in the local store.
type Run struct {
	ID         string
	Workflow   string
	TargetDate string
	Status     string
	Fetched    int
	Kept       int
	Removed    int
	Drafted    int
	Sent       int
	Failed     int
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
