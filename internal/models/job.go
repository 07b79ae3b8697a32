package models

import "time"

// Job statuses follow the field lifecycle: a job is scheduled, the
// technician drives out, works, and either finishes or the visit is
// cancelled.
const (
	JobStatusScheduled  = "scheduled"
	JobStatusEnRoute    = "en_route"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

func ValidJobStatus(status string) bool {
	switch status {
	case JobStatusScheduled, JobStatusEnRoute, JobStatusInProgress, JobStatusCompleted, JobStatusCancelled:
		return true
	}
	return false
}

type Job struct {
	ID            string    `json:"id" db:"id"`
	Title         string    `json:"title" db:"title"`
	CustomerName  string    `json:"customer_name" db:"customer_name"`
	CustomerPhone string    `json:"customer_phone" db:"customer_phone"`
	Address       string    `json:"address" db:"address"`
	Status        string    `json:"status" db:"status"`
	ScheduledAt   *string   `json:"scheduled_at" db:"scheduled_at"`
	Technician    *string   `json:"technician" db:"technician"`
	CreatedBy     string    `json:"created_by" db:"created_by"`
	Organization  *string   `json:"organization" db:"organization"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// JobEvent is the bus payload published when a job is created.
type JobEvent struct {
	JobID        string `msgpack:"job_id" json:"job_id"`
	Title        string `msgpack:"title" json:"title"`
	Status       string `msgpack:"status" json:"status"`
	CreatedBy    string `msgpack:"created_by" json:"created_by"`
	Organization string `msgpack:"organization,omitempty" json:"organization,omitempty"`
	TS           int64  `msgpack:"ts" json:"ts"`
}

// JobStatusUpdate is the bus payload field clients push when a job moves
// through its lifecycle.
type JobStatusUpdate struct {
	JobID      string `msgpack:"job_id" json:"job_id"`
	Status     string `msgpack:"status" json:"status"`
	Technician string `msgpack:"technician,omitempty" json:"technician,omitempty"`
	TS         int64  `msgpack:"ts" json:"ts"`
}
