package workflow

import "errors"

var (
	ErrWorkflowNotFound  = errors.New("workflow not found")
	ErrInvalidName       = errors.New("workflow name is required")
	ErrInvalidWebhookURL = errors.New("invalid webhook url")
	ErrInvalidStatus     = errors.New("invalid workflow status")
	ErrNoWebhookURL      = errors.New("workflow has no webhook url")
	ErrInvalidSchedule   = errors.New("invalid schedule")
)
