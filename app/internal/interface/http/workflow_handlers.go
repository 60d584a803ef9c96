package http

import (
	"net/http"

	domworkflow "example.com/mystic-prints/app/internal/domain/workflow"
	workflowuc "example.com/mystic-prints/app/internal/usecase/workflow"
)

type createWorkflowRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
	WebhookURL  string `json:"webhook_url"`
	Schedule    string `json:"schedule"`
	Status      string `json:"status"`
}

type updateWebhookRequest struct {
	WebhookURL string `json:"webhook_url" validate:"required"`
}

type updateScheduleRequest struct {
	Schedule string `json:"schedule" validate:"required"`
}

type setActiveRequest struct {
	Active *bool `json:"active" validate:"required"`
}

func (a *API) handleListWorkflows(w http.ResponseWriter, r *http.Request) {
	filter := domworkflow.ListFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domworkflow.Status(s)
		filter.Status = &status
	}

	workflows, err := a.workflowSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(workflows))
	for _, wf := range workflows {
		resp = append(resp, mapWorkflow(wf))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var req createWorkflowRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wf, err := a.workflowSvc.Create(r.Context(), workflowuc.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		WebhookURL:  req.WebhookURL,
		Schedule:    req.Schedule,
		Status:      domworkflow.Status(req.Status),
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapWorkflow(wf))
}

func (a *API) handleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	wf, err := a.workflowSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapWorkflow(wf))
}

func (a *API) handleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.workflowSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleUpdateWorkflowWebhook(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateWebhookRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wf, err := a.workflowSvc.UpdateWebhook(r.Context(), id, req.WebhookURL)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapWorkflow(wf))
}

func (a *API) handleUpdateWorkflowSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateScheduleRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wf, err := a.workflowSvc.UpdateSchedule(r.Context(), id, req.Schedule)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapWorkflow(wf))
}

func (a *API) handleSetWorkflowActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req setActiveRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	wf, err := a.workflowSvc.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapWorkflow(wf))
}

// handleTriggerWorkflow reports a failed run in the body, not the status code.
func (a *API) handleTriggerWorkflow(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := a.workflowSvc.Run(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": res.Success,
		"message": res.Message,
	})
}
