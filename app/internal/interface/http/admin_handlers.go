package http

import (
	"net/http"
	"strconv"

	domorder "example.com/mystic-prints/app/internal/domain/order"
	domuser "example.com/mystic-prints/app/internal/domain/user"
	profileuc "example.com/mystic-prints/app/internal/usecase/profile"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type updateRoleRequest struct {
	RoleCode string `json:"role_code" validate:"required"`
}

func (a *API) handleListOrders(w http.ResponseWriter, r *http.Request) {
	filter := domorder.ListFilter{}
	if s := r.URL.Query().Get("status"); s != "" {
		status := domorder.Status(s)
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		filter.UserID = &userID
	}

	orders, err := a.orderSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, mapOrder(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := a.orderSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (a *API) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateOrderStatusRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	o, err := a.orderSvc.UpdateStatus(r.Context(), id, domorder.Status(req.Status))
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(o))
}

func (a *API) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	filter := domuser.ListFilter{}
	if role := r.URL.Query().Get("role"); role != "" {
		code, err := domuser.ParseRoleCode(role)
		if err != nil {
			handleDomainError(w, err)
			return
		}
		filter.RoleCode = &code
	}

	profiles, err := a.profileSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, mapProfile(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.profileSvc.Get(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProfile(p))
}

func (a *API) handleUpdateProfileRole(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateRoleRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	code, err := domuser.ParseRoleCode(req.RoleCode)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	p, err := a.profileSvc.UpdateRole(r.Context(), profileuc.UpdateRoleInput{
		Executor: getIdentity(r.Context()),
		ID:       id,
		RoleCode: code,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProfile(p))
}

func (a *API) handleCartSyncDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"data":     a.diagnostics.Recent(),
		"dropped":  a.diagnostics.Dropped(),
		"sessions": a.sessions.Len(),
	})
}
