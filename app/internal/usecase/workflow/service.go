package workflow

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	dom "example.com/mystic-prints/app/internal/domain/workflow"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Trigger posts a run request to a workflow webhook.
type Trigger interface {
	Trigger(ctx context.Context, webhookURL string, payload dom.TriggerPayload) error
}

type Service struct {
	repo    dom.Repository
	trigger Trigger
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(repo dom.Repository, trigger Trigger, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, trigger: trigger, logger: logger, now: time.Now}
}

type CreateInput struct {
	Name        string
	Description string
	WebhookURL  string
	Schedule    string
	Status      dom.Status
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*dom.Workflow, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, dom.ErrInvalidName
	}
	if in.WebhookURL != "" && !validWebhookURL(in.WebhookURL) {
		return nil, dom.ErrInvalidWebhookURL
	}
	var sched cron.Schedule
	if in.Schedule != "" {
		var err error
		if sched, err = parseSchedule(in.Schedule); err != nil {
			return nil, err
		}
	}
	status := in.Status
	if status == "" {
		status = dom.StatusActive
	}
	if !status.IsValid() {
		return nil, dom.ErrInvalidStatus
	}

	w := &dom.Workflow{
		Name:        name,
		Description: in.Description,
		Status:      status,
		WebhookURL:  in.WebhookURL,
		Schedule:    in.Schedule,
	}
	if sched != nil {
		next := sched.Next(s.now().UTC())
		w.NextRun = &next
	}
	return s.repo.Create(ctx, w)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*dom.Workflow, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter dom.ListFilter) ([]*dom.Workflow, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, dom.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) UpdateWebhook(ctx context.Context, id int64, webhookURL string) (*dom.Workflow, error) {
	if !validWebhookURL(webhookURL) {
		return nil, dom.ErrInvalidWebhookURL
	}
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.WebhookURL = webhookURL
	return s.repo.Update(ctx, w)
}

// UpdateSchedule stores the schedule and moves the next run to its next
// activation.
func (s *Service) UpdateSchedule(ctx context.Context, id int64, schedule string) (*dom.Workflow, error) {
	sched, err := parseSchedule(schedule)
	if err != nil {
		return nil, err
	}
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Schedule = schedule
	next := sched.Next(s.now().UTC())
	w.NextRun = &next
	return s.repo.Update(ctx, w)
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*dom.Workflow, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	w.Status = dom.StatusInactive
	if active {
		w.Status = dom.StatusActive
	}
	return s.repo.Update(ctx, w)
}

// Run posts a manual trigger to the workflow webhook. Only transport errors
// count as failure; the webhook response is ignored. A failed run puts the
// workflow in the error status until the next successful run.
func (s *Service) Run(ctx context.Context, id int64) (*dom.TriggerResult, error) {
	w, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if w.WebhookURL == "" {
		return nil, dom.ErrNoWebhookURL
	}

	now := s.now().UTC()
	payload := dom.TriggerPayload{Trigger: "manual", Timestamp: now.Format(timestampLayout)}
	if err := s.trigger.Trigger(ctx, w.WebhookURL, payload); err != nil {
		s.logger.Warn("workflow trigger failed",
			zap.Int64("workflow_id", w.ID),
			zap.String("webhook", w.WebhookURL),
			zap.Error(err))
		w.Status = dom.StatusError
		if _, uerr := s.repo.Update(ctx, w); uerr != nil {
			return nil, uerr
		}
		return &dom.TriggerResult{Success: false, Message: fmt.Sprintf("Failed to trigger workflow %s", w.Name)}, nil
	}

	w.LastRun = &now
	if w.Status == dom.StatusError {
		w.Status = dom.StatusActive
	}
	if _, err := s.repo.Update(ctx, w); err != nil {
		return nil, err
	}
	return &dom.TriggerResult{Success: true, Message: fmt.Sprintf("Workflow %s triggered successfully", w.Name)}, nil
}

func validWebhookURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parseSchedule accepts standard five-field cron expressions and descriptors
// such as @weekly.
func parseSchedule(schedule string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(strings.TrimSpace(schedule))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dom.ErrInvalidSchedule, err)
	}
	return sched, nil
}
