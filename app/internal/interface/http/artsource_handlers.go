package http

import (
	"net/http"

	domartsource "example.com/mystic-prints/app/internal/domain/artsource"
	artsourceuc "example.com/mystic-prints/app/internal/usecase/artsource"
)

type createArtSourceRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	URL    string `json:"url" validate:"required"`
	Active *bool  `json:"active"`
}

type updateArtSourceRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=255"`
	URL    *string `json:"url"`
	Active *bool   `json:"active"`
}

func (a *API) handleListArtSources(w http.ResponseWriter, r *http.Request) {
	filter := domartsource.ListFilter{OnlyActive: r.URL.Query().Get("active") == "true"}

	sources, err := a.artSourceSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(sources))
	for _, s := range sources {
		resp = append(resp, mapArtSource(s))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleCreateArtSource(w http.ResponseWriter, r *http.Request) {
	var req createArtSourceRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	src, err := a.artSourceSvc.Create(r.Context(), artsourceuc.CreateInput{
		Name:   req.Name,
		URL:    req.URL,
		Active: req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapArtSource(src))
}

func (a *API) handleGetArtSource(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	src, err := a.artSourceSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapArtSource(src))
}

func (a *API) handleUpdateArtSource(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	var req updateArtSourceRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	src, err := a.artSourceSvc.Update(r.Context(), artsourceuc.UpdateInput{
		ID:     id,
		Name:   req.Name,
		URL:    req.URL,
		Active: req.Active,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapArtSource(src))
}

func (a *API) handleDeleteArtSource(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.artSourceSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
