package http

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	domproduct "example.com/mystic-prints/app/internal/domain/product"
)

type createProductRequest struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Artist      string          `json:"artist" validate:"required,max=255"`
	Description string          `json:"description"`
	Year        string          `json:"year" validate:"max=64"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" validate:"required,url"`
	ProductType string          `json:"product_type" validate:"required"`
}

type updateProductRequest struct {
	Title       string          `json:"title" validate:"max=255"`
	Artist      string          `json:"artist" validate:"max=255"`
	Description string          `json:"description"`
	Year        string          `json:"year" validate:"max=64"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image" validate:"omitempty,url"`
	ProductType string          `json:"product_type"`
}

type publishProductRequest struct {
	Size string `json:"size" validate:"omitempty,oneof=small medium large"`
}

func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	filter := domproduct.ListFilter{
		ProductType: strings.TrimSpace(r.URL.Query().Get("type")),
		Search:      r.URL.Query().Get("q"),
	}

	products, err := a.productSvc.List(r.Context(), filter)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	resp := make([]map[string]any, 0, len(products))
	for _, p := range products {
		resp = append(resp, mapProduct(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	p, err := a.productSvc.GetByID(r.Context(), id)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.Create(r.Context(), &domproduct.Product{
		Title:       req.Title,
		Artist:      req.Artist,
		Description: req.Description,
		Year:        req.Year,
		Price:       req.Price,
		ImageRef:    req.Image,
		ProductType: req.ProductType,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(p))
}

func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateProductRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.Update(r.Context(), &domproduct.Product{
		ID:          id,
		Title:       req.Title,
		Artist:      req.Artist,
		Description: req.Description,
		Year:        req.Year,
		Price:       req.Price,
		ImageRef:    req.Image,
		ProductType: req.ProductType,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(p))
}

func (a *API) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.productSvc.Delete(r.Context(), id); err != nil {
		handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handlePublishProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req publishProductRequest
	if r.ContentLength != 0 {
		if err := a.decodeAndValidate(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}

	synced, err := a.productSvc.Publish(r.Context(), id, req.Size)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, synced)
}

func (a *API) handleListFulfillmentProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.catalog.ListProducts(r.Context())
	if err != nil {
		handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": products})
}
