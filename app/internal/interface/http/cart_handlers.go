package http

import (
	"errors"
	"net/http"

	domcart "example.com/mystic-prints/app/internal/domain/cart"
	"example.com/mystic-prints/app/internal/domain/notice"
	domorder "example.com/mystic-prints/app/internal/domain/order"
	domproduct "example.com/mystic-prints/app/internal/domain/product"
	cartuc "example.com/mystic-prints/app/internal/usecase/cart"
)

type addCartItemRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Size      string `json:"size" validate:"omitempty,oneof=small medium large"`
	Quantity  int64  `json:"quantity" validate:"omitempty,gt=0"`
}

type updateCartItemRequest struct {
	Quantity *int64 `json:"quantity" validate:"required"`
}

type shippingRequest struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Country string `json:"country" validate:"required,len=2"`
	Zip     string `json:"zip" validate:"required"`
}

type checkoutRequest struct {
	Shipping shippingRequest `json:"shipping" validate:"required"`
}

func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())
	a.writeCart(w, http.StatusOK, store)
}

func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())

	var req addCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	p, err := a.productSvc.GetByID(r.Context(), req.ProductID)
	if err != nil {
		handleDomainError(w, err)
		return
	}
	line, err := lineFor(p, req.Size, req.Quantity)
	if err != nil {
		handleDomainError(w, err)
		return
	}

	if err := syncErr(store.AddLine(r.Context(), line)); err != nil {
		handleDomainError(w, err)
		return
	}
	a.writeCart(w, http.StatusCreated, store)
}

func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	var req updateCartItemRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := syncErr(store.SetQuantity(r.Context(), productID, *req.Quantity)); err != nil {
		handleDomainError(w, err)
		return
	}
	a.writeCart(w, http.StatusOK, store)
}

func (a *API) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())
	productID, err := parseIDParam(r, "productID")
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	if err := syncErr(store.RemoveLine(r.Context(), productID)); err != nil {
		handleDomainError(w, err)
		return
	}
	a.writeCart(w, http.StatusOK, store)
}

func (a *API) handleClearCart(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())
	if err := syncErr(store.Clear(r.Context())); err != nil {
		handleDomainError(w, err)
		return
	}
	a.writeCart(w, http.StatusOK, store)
}

func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())

	var req checkoutRequest
	if err := a.decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	result, err := a.checkoutSvc.Checkout(r.Context(), store, domorder.ShippingInfo{
		Name:    req.Shipping.Name,
		Address: req.Shipping.Address,
		City:    req.Shipping.City,
		State:   req.Shipping.State,
		Country: req.Shipping.Country,
		Zip:     req.Shipping.Zip,
	})
	if err != nil {
		handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order_id":             result.OrderID,
		"fulfillment_order_id": result.FulfillmentOrderID,
		"external_id":          result.ExternalID,
		"total":                result.Total,
		"item_count":           result.ItemCount,
		"notifications":        a.drainNotices(store.SessionKey()),
	})
}

func (a *API) handleNotifications(w http.ResponseWriter, r *http.Request) {
	store := getCart(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"data": a.drainNotices(store.SessionKey())})
}

func (a *API) writeCart(w http.ResponseWriter, status int, store *cartuc.Store) {
	resp := mapCart(store.SessionKey(), store.Lines())
	resp["notifications"] = a.drainNotices(store.SessionKey())
	writeJSON(w, status, resp)
}

func (a *API) drainNotices(sessionKey string) []notice.Notice {
	if a.notices == nil {
		return []notice.Notice{}
	}
	return a.notices.Drain(sessionKey)
}

// syncErr reports mutations the store refused outright. Replication runs
// in the background and its outcome is never part of the response.
func syncErr(s *cartuc.Sync) error {
	if err := s.Err(); errors.Is(err, domcart.ErrStoreClosed) || errors.Is(err, domcart.ErrInvalidLine) {
		return err
	}
	return nil
}

// lineFor prices a cart line from the catalog variant of the requested size.
func lineFor(p *domproduct.Product, size string, quantity int64) (domcart.Line, error) {
	if size == "" {
		size = "medium"
	}
	if quantity == 0 {
		quantity = 1
	}
	v, ok := p.VariantBySize(size)
	if !ok {
		return domcart.Line{}, domproduct.ErrVariantNotFound
	}
	return domcart.Line{
		ProductID:   p.ID,
		Title:       p.Title,
		Artist:      p.Artist,
		UnitPrice:   v.Price,
		Quantity:    quantity,
		ImageRef:    p.ImageRef,
		ProductType: p.ProductType,
		VariantID:   v.VariantID,
		Size:        size,
	}, nil
}
