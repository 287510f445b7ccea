package domain

import "time"

// Trigger names what started an organize run.
type Trigger string

const (
	TriggerManual Trigger = "manual"
	TriggerWatch  Trigger = "watch"
	TriggerAPI    Trigger = "api"
)

// RunSummary is the persisted outcome of one organize run.
type RunSummary struct {
	ID         string    `json:"id"`
	Folder     string    `json:"folder"`
	Trigger    Trigger   `json:"trigger"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Moved      int       `json:"moved"`
	Conflicts  int       `json:"conflicts"`
	Failures   int       `json:"failures"`
}

// Duration returns how long the run took.
func (r RunSummary) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
