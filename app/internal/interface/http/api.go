package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	domartsource "example.com/mystic-prints/app/internal/domain/artsource"
	domcart "example.com/mystic-prints/app/internal/domain/cart"
	"example.com/mystic-prints/app/internal/domain/fulfillment"
	"example.com/mystic-prints/app/internal/domain/notice"
	domorder "example.com/mystic-prints/app/internal/domain/order"
	domproduct "example.com/mystic-prints/app/internal/domain/product"
	domuser "example.com/mystic-prints/app/internal/domain/user"
	domworkflow "example.com/mystic-prints/app/internal/domain/workflow"
	artsourceuc "example.com/mystic-prints/app/internal/usecase/artsource"
	authuc "example.com/mystic-prints/app/internal/usecase/auth"
	cartuc "example.com/mystic-prints/app/internal/usecase/cart"
	checkoutuc "example.com/mystic-prints/app/internal/usecase/checkout"
	orderuc "example.com/mystic-prints/app/internal/usecase/order"
	productuc "example.com/mystic-prints/app/internal/usecase/product"
	profileuc "example.com/mystic-prints/app/internal/usecase/profile"
	workflowuc "example.com/mystic-prints/app/internal/usecase/workflow"
)

// SessionHeader carries the cart session key in both directions.
const SessionHeader = "X-Cart-Session"

// NoticeFeed holds the user-visible notices of each cart session.
type NoticeFeed interface {
	Drain(sessionKey string) []notice.Notice
}

// FulfillmentCatalog lists what is already synced to the provider store.
type FulfillmentCatalog interface {
	ListProducts(ctx context.Context) ([]fulfillment.Product, error)
}

type API struct {
	authSvc      *authuc.Service
	profileSvc   *profileuc.Service
	productSvc   *productuc.Service
	orderSvc     *orderuc.Service
	checkoutSvc  *checkoutuc.Service
	workflowSvc  *workflowuc.Service
	artSourceSvc *artsourceuc.Service
	sessions     *cartuc.Sessions
	diagnostics  *cartuc.Diagnostics
	notices      NoticeFeed
	catalog      FulfillmentCatalog
	validator    *validator.Validate
	logger       *zap.Logger
}

type Dependencies struct {
	AuthService      *authuc.Service
	ProfileService   *profileuc.Service
	ProductService   *productuc.Service
	OrderService     *orderuc.Service
	CheckoutService  *checkoutuc.Service
	WorkflowService  *workflowuc.Service
	ArtSourceService *artsourceuc.Service
	Sessions         *cartuc.Sessions
	Diagnostics      *cartuc.Diagnostics
	Notices          NoticeFeed
	Catalog          FulfillmentCatalog
	Logger           *zap.Logger
}

func NewAPI(deps Dependencies) *API {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		authSvc:      deps.AuthService,
		profileSvc:   deps.ProfileService,
		productSvc:   deps.ProductService,
		orderSvc:     deps.OrderService,
		checkoutSvc:  deps.CheckoutService,
		workflowSvc:  deps.WorkflowService,
		artSourceSvc: deps.ArtSourceService,
		sessions:     deps.Sessions,
		diagnostics:  deps.Diagnostics,
		notices:      deps.Notices,
		catalog:      deps.Catalog,
		validator:    validator.New(),
		logger:       logger,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.AllowContentType("application/json", "text/plain"))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/register", a.handleRegister)
		r.Get("/products", a.handleListProducts)
		r.Get("/products/{id}", a.handleGetProduct)

		r.Group(func(sr chi.Router) {
			sr.Use(a.optionalAuth)
			sr.Use(a.cartSession)
			sr.Get("/cart", a.handleGetCart)
			sr.Delete("/cart", a.handleClearCart)
			sr.Post("/cart/items", a.handleAddCartItem)
			sr.Patch("/cart/items/{productID}", a.handleUpdateCartItem)
			sr.Delete("/cart/items/{productID}", a.handleRemoveCartItem)
			sr.Post("/checkout", a.handleCheckout)
			sr.Get("/notifications", a.handleNotifications)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(a.authMiddleware)
			pr.Get("/me", a.handleGetMe)
			pr.Patch("/me", a.handleUpdateMe)
		})

		r.Group(func(ar chi.Router) {
			ar.Use(a.authMiddleware)
			ar.Use(a.requireRoles(domuser.RoleCodeAdmin))

			ar.Route("/admin", func(admin chi.Router) {
				admin.Route("/profiles", func(rr chi.Router) {
					rr.Get("/", a.handleListProfiles)
					rr.Get("/{id}", a.handleGetProfile)
					rr.Patch("/{id}/role", a.handleUpdateProfileRole)
				})

				admin.Route("/products", func(rr chi.Router) {
					rr.Get("/", a.handleListProducts)
					rr.Post("/", a.handleCreateProduct)
					rr.Put("/{id}", a.handleUpdateProduct)
					rr.Delete("/{id}", a.handleDeleteProduct)
					rr.Post("/{id}/publish", a.handlePublishProduct)
				})
				admin.Get("/fulfillment/products", a.handleListFulfillmentProducts)

				admin.Route("/orders", func(rr chi.Router) {
					rr.Get("/", a.handleListOrders)
					rr.Get("/{id}", a.handleGetOrder)
					rr.Patch("/{id}", a.handleUpdateOrderStatus)
				})

				admin.Route("/workflows", func(rr chi.Router) {
					rr.Get("/", a.handleListWorkflows)
					rr.Post("/", a.handleCreateWorkflow)
					rr.Get("/{id}", a.handleGetWorkflow)
					rr.Delete("/{id}", a.handleDeleteWorkflow)
					rr.Put("/{id}/webhook", a.handleUpdateWorkflowWebhook)
					rr.Put("/{id}/schedule", a.handleUpdateWorkflowSchedule)
					rr.Put("/{id}/active", a.handleSetWorkflowActive)
					rr.Post("/{id}/trigger", a.handleTriggerWorkflow)
				})

				admin.Route("/art-sources", func(rr chi.Router) {
					rr.Get("/", a.handleListArtSources)
					rr.Post("/", a.handleCreateArtSource)
					rr.Get("/{id}", a.handleGetArtSource)
					rr.Put("/{id}", a.handleUpdateArtSource)
					rr.Delete("/{id}", a.handleDeleteArtSource)
				})

				admin.Get("/cart-sync", a.handleCartSyncDiagnostics)
			})
		})
	})

	return r
}

func (a *API) decodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return err
	}
	return a.validator.Struct(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func respondError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func parseIDParam(r *http.Request, key string) (int64, error) {
	idStr := chi.URLParam(r, key)
	return strconv.ParseInt(idStr, 10, 64)
}

func handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domuser.ErrInvalidRoleCode),
		errors.Is(err, domuser.ErrInvalidCredential):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, domuser.ErrEmailAlreadyUsed),
		errors.Is(err, domartsource.ErrURLExists):
		respondError(w, http.StatusConflict, err)
	case errors.Is(err, domuser.ErrUserNotFound),
		errors.Is(err, domproduct.ErrProductNotFound),
		errors.Is(err, domorder.ErrOrderNotFound),
		errors.Is(err, domworkflow.ErrWorkflowNotFound),
		errors.Is(err, domartsource.ErrSourceNotFound):
		respondError(w, http.StatusNotFound, err)
	case errors.Is(err, domuser.ErrUnauthorized),
		errors.Is(err, domorder.ErrAuthenticationRequired):
		respondError(w, http.StatusUnauthorized, err)
	case errors.Is(err, domuser.ErrCannotDemoteSelf):
		respondError(w, http.StatusForbidden, err)
	case errors.Is(err, domcart.ErrMissingSession):
		respondError(w, http.StatusBadRequest, err)
	case errors.Is(err, domproduct.ErrInvalidProduct),
		errors.Is(err, domproduct.ErrInvalidPrice),
		errors.Is(err, domproduct.ErrUnknownProductType),
		errors.Is(err, domproduct.ErrVariantNotFound),
		errors.Is(err, domcart.ErrInvalidLine),
		errors.Is(err, domorder.ErrEmptyOrderItems),
		errors.Is(err, domorder.ErrInvalidStatus),
		errors.Is(err, domorder.ErrInvalidTransition),
		errors.Is(err, domworkflow.ErrInvalidName),
		errors.Is(err, domworkflow.ErrInvalidWebhookURL),
		errors.Is(err, domworkflow.ErrInvalidStatus),
		errors.Is(err, domworkflow.ErrInvalidSchedule),
		errors.Is(err, domworkflow.ErrNoWebhookURL),
		errors.Is(err, domartsource.ErrInvalidName),
		errors.Is(err, domartsource.ErrInvalidURL):
		respondError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, domcart.ErrStoreClosed):
		respondError(w, http.StatusServiceUnavailable, err)
	case errors.Is(err, domorder.ErrCheckoutFailed),
		errors.Is(err, fulfillment.ErrUnexpectedStatus),
		errors.Is(err, fulfillment.ErrEmptyResult):
		respondError(w, http.StatusBadGateway, err)
	default:
		respondError(w, http.StatusInternalServerError, err)
	}
}

func mapProfile(p *domuser.Profile) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"email":      p.Email,
		"first_name": p.FirstName,
		"last_name":  p.LastName,
		"name":       p.DisplayName(),
		"role_code":  p.RoleCode,
		"created_at": p.CreatedAt,
	}
}

func mapProduct(p *domproduct.Product) map[string]any {
	variants := make([]map[string]any, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, map[string]any{
			"id":         v.ID,
			"variant_id": v.VariantID,
			"size":       v.Size,
			"price":      v.Price,
		})
	}
	return map[string]any{
		"id":           p.ID,
		"title":        p.Title,
		"artist":       p.Artist,
		"description":  p.Description,
		"year":         p.Year,
		"price":        p.Price,
		"image":        p.ImageRef,
		"product_type": p.ProductType,
		"variants":     variants,
		"created_at":   p.CreatedAt,
	}
}

func mapCart(sessionKey string, lines domcart.Snapshot) map[string]any {
	items := make([]map[string]any, 0, len(lines))
	var count int64
	for _, l := range lines {
		count += l.Quantity
		items = append(items, map[string]any{
			"product_id":   l.ProductID,
			"title":        l.Title,
			"artist":       l.Artist,
			"price":        l.UnitPrice,
			"quantity":     l.Quantity,
			"image":        l.ImageRef,
			"product_type": l.ProductType,
			"variant_id":   l.VariantID,
			"size":         l.Size,
			"subtotal":     l.Subtotal(),
		})
	}
	return map[string]any{
		"session": sessionKey,
		"items":   items,
		"count":   count,
		"total":   lines.Total(),
	}
}

func mapOrder(o *domorder.Order) map[string]any {
	items := make([]map[string]any, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, map[string]any{
			"product_id": item.ProductID,
			"variant_id": item.VariantID,
			"size":       item.Size,
			"price":      item.Price,
			"quantity":   item.Quantity,
		})
	}

	return map[string]any{
		"id":                   o.ID,
		"user_id":              o.UserID,
		"status":               o.Status,
		"total":                o.Total,
		"shipping_address":     o.ShippingAddress,
		"fulfillment_order_id": o.FulfillmentOrderID,
		"created_at":           o.CreatedAt,
		"updated_at":           o.UpdatedAt,
		"items":                items,
	}
}

func mapWorkflow(w *domworkflow.Workflow) map[string]any {
	return map[string]any{
		"id":          w.ID,
		"name":        w.Name,
		"description": w.Description,
		"status":      w.Status,
		"webhook_url": w.WebhookURL,
		"schedule":    w.Schedule,
		"last_run":    w.LastRun,
		"next_run":    w.NextRun,
		"created_at":  w.CreatedAt,
	}
}

func mapArtSource(s *domartsource.Source) map[string]any {
	return map[string]any{
		"id":         s.ID,
		"name":       s.Name,
		"url":        s.URL,
		"active":     s.Active,
		"created_at": s.CreatedAt,
	}
}
