package workflow

import "time"

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusError    Status = "error"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusError:
		return true
	default:
		return false
	}
}

// Workflow is an automation run by an external webhook service.
type Workflow struct {
	ID          int64
	Name        string
	Description string
	Status      Status
	WebhookURL  string
	Schedule    string
	LastRun     *time.Time
	NextRun     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ListFilter struct {
	Status *Status
}

// TriggerPayload is the body posted to a workflow webhook.
type TriggerPayload struct {
	Trigger   string `json:"trigger"`
	Timestamp string `json:"timestamp"`
}

type TriggerResult struct {
	Success bool
	Message string
}
