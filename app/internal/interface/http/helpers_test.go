package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	domartsource "example.com/mystic-prints/app/internal/domain/artsource"
	domcart "example.com/mystic-prints/app/internal/domain/cart"
	"example.com/mystic-prints/app/internal/domain/fulfillment"
	domorder "example.com/mystic-prints/app/internal/domain/order"
	domproduct "example.com/mystic-prints/app/internal/domain/product"
	domuser "example.com/mystic-prints/app/internal/domain/user"
	domworkflow "example.com/mystic-prints/app/internal/domain/workflow"
	"example.com/mystic-prints/app/internal/infra/notify"
	"example.com/mystic-prints/app/internal/infra/security"
	artsourceuc "example.com/mystic-prints/app/internal/usecase/artsource"
	authuc "example.com/mystic-prints/app/internal/usecase/auth"
	cartuc "example.com/mystic-prints/app/internal/usecase/cart"
	checkoutuc "example.com/mystic-prints/app/internal/usecase/checkout"
	orderuc "example.com/mystic-prints/app/internal/usecase/order"
	productuc "example.com/mystic-prints/app/internal/usecase/product"
	profileuc "example.com/mystic-prints/app/internal/usecase/profile"
	workflowuc "example.com/mystic-prints/app/internal/usecase/workflow"
)

// --- Fake repositories ---

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[int64]*domuser.Profile
	nextID   int64
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int64]*domuser.Profile), nextID: 1}
}

func (f *fakeProfileRepo) Create(ctx context.Context, p *domuser.Profile) (*domuser.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.profiles {
		if existing.Email == p.Email {
			return nil, domuser.ErrEmailAlreadyUsed
		}
	}
	p.ID = f.nextID
	f.nextID++
	p.CreatedAt = time.Now()
	cloned := *p
	f.profiles[p.ID] = &cloned
	return p, nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id int64) (*domuser.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*domuser.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			cloned := *p
			return &cloned, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (f *fakeProfileRepo) List(ctx context.Context, filter domuser.ListFilter) ([]*domuser.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domuser.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		if filter.RoleCode != nil && p.RoleCode != *filter.RoleCode {
			continue
		}
		cloned := *p
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeProfileRepo) Update(ctx context.Context, p *domuser.Profile) (*domuser.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[p.ID]; !ok {
		return nil, domuser.ErrUserNotFound
	}
	cloned := *p
	f.profiles[p.ID] = &cloned
	return p, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domproduct.Product
	nextID   int64
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domproduct.Product), nextID: 1}
}

func (f *fakeProductRepo) Create(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	for i := range p.Variants {
		p.Variants[i].ID = p.ID*10 + int64(i)
		p.Variants[i].ProductID = p.ID
	}
	cloned := *p
	f.products[p.ID] = &cloned
	return p, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, p *domproduct.Product) (*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return nil, domproduct.ErrProductNotFound
	}
	cloned := *p
	f.products[p.ID] = &cloned
	return p, nil
}

func (f *fakeProductRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return domproduct.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id int64) (*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		cloned := *p
		return &cloned, nil
	}
	return nil, domproduct.ErrProductNotFound
}

func (f *fakeProductRepo) List(ctx context.Context, filter domproduct.ListFilter) ([]*domproduct.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]*domproduct.Product, 0, len(f.products))
	for _, p := range f.products {
		if filter.ProductType != "" && p.ProductType != filter.ProductType {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Artist), q) {
			continue
		}
		cloned := *p
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// fakeOrderRepo is both the order repository and the remote cart mirror.
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*domorder.Order
	nextID int64
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[int64]*domorder.Order), nextID: 1}
}

func (f *fakeOrderRepo) add(o *domorder.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o.ID = f.nextID
	f.nextID++
	f.orders[o.ID] = o
}

func (f *fakeOrderRepo) get(id int64) *domorder.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		cloned := *o
		return &cloned
	}
	return nil
}

func (f *fakeOrderRepo) cartOf(userID int64) *domorder.Order {
	for _, o := range f.orders {
		if o.UserID == userID && o.Status == domorder.StatusCart {
			return o
		}
	}
	return nil
}

func (f *fakeOrderRepo) LoadCart(ctx context.Context, userID int64) (domcart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.cartOf(userID)
	if o == nil {
		return domcart.Snapshot{}, nil
	}
	lines := make(domcart.Snapshot, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, domcart.Line{
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Size:      item.Size,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

func (f *fakeOrderRepo) SaveCart(ctx context.Context, userID int64, lines domcart.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := f.cartOf(userID)
	if o == nil {
		o = &domorder.Order{ID: f.nextID, UserID: userID, Status: domorder.StatusCart, CreatedAt: time.Now()}
		f.nextID++
		f.orders[o.ID] = o
	}
	o.Total = lines.Total()
	o.Items = o.Items[:0]
	for _, l := range lines {
		o.Items = append(o.Items, domorder.OrderItem{
			OrderID:   o.ID,
			ProductID: l.ProductID,
			VariantID: l.VariantID,
			Size:      l.Size,
			Price:     l.UnitPrice,
			Quantity:  l.Quantity,
		})
	}
	return nil
}

func (f *fakeOrderRepo) DeleteCart(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.cartOf(userID); o != nil {
		delete(f.orders, o.ID)
	}
	return nil
}

func (f *fakeOrderRepo) FindCartOrder(ctx context.Context, userID int64) (*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o := f.cartOf(userID); o != nil {
		cloned := *o
		return &cloned, nil
	}
	return nil, domorder.ErrOrderNotFound
}

func (f *fakeOrderRepo) MarkPending(ctx context.Context, id int64, shipping domorder.ShippingInfo, fulfillmentOrderID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok || o.Status != domorder.StatusCart {
		return domorder.ErrOrderNotFound
	}
	o.Status = domorder.StatusPending
	o.ShippingAddress = &shipping
	o.FulfillmentOrderID = fulfillmentOrderID
	return nil
}

func (f *fakeOrderRepo) List(ctx context.Context, filter domorder.ListFilter) ([]*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domorder.Order, 0, len(f.orders))
	for _, o := range f.orders {
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		cloned := *o
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id int64) (*domorder.Order, error) {
	if o := f.get(id); o != nil {
		return o, nil
	}
	return nil, domorder.ErrOrderNotFound
}

func (f *fakeOrderRepo) UpdateStatus(ctx context.Context, id int64, status domorder.Status) (*domorder.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domorder.ErrOrderNotFound
	}
	o.Status = status
	cloned := *o
	return &cloned, nil
}

type fakeWorkflowRepo struct {
	mu        sync.Mutex
	workflows map[int64]*domworkflow.Workflow
	nextID    int64
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{workflows: make(map[int64]*domworkflow.Workflow), nextID: 1}
}

func (f *fakeWorkflowRepo) Create(ctx context.Context, w *domworkflow.Workflow) (*domworkflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.ID = f.nextID
	f.nextID++
	cloned := *w
	f.workflows[w.ID] = &cloned
	return w, nil
}

func (f *fakeWorkflowRepo) Update(ctx context.Context, w *domworkflow.Workflow) (*domworkflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workflows[w.ID]; !ok {
		return nil, domworkflow.ErrWorkflowNotFound
	}
	cloned := *w
	f.workflows[w.ID] = &cloned
	return w, nil
}

func (f *fakeWorkflowRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.workflows[id]; !ok {
		return domworkflow.ErrWorkflowNotFound
	}
	delete(f.workflows, id)
	return nil
}

func (f *fakeWorkflowRepo) GetByID(ctx context.Context, id int64) (*domworkflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.workflows[id]; ok {
		cloned := *w
		return &cloned, nil
	}
	return nil, domworkflow.ErrWorkflowNotFound
}

func (f *fakeWorkflowRepo) List(ctx context.Context, filter domworkflow.ListFilter) ([]*domworkflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domworkflow.Workflow, 0, len(f.workflows))
	for _, w := range f.workflows {
		if filter.Status != nil && w.Status != *filter.Status {
			continue
		}
		cloned := *w
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

type fakeArtSourceRepo struct {
	mu      sync.Mutex
	sources map[int64]*domartsource.Source
	nextID  int64
}

func newFakeArtSourceRepo() *fakeArtSourceRepo {
	return &fakeArtSourceRepo{sources: make(map[int64]*domartsource.Source), nextID: 1}
}

func (f *fakeArtSourceRepo) urlTaken(url string, except int64) bool {
	for _, s := range f.sources {
		if s.URL == url && s.ID != except {
			return true
		}
	}
	return false
}

func (f *fakeArtSourceRepo) Create(ctx context.Context, s *domartsource.Source) (*domartsource.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.urlTaken(s.URL, 0) {
		return nil, domartsource.ErrURLExists
	}
	s.ID = f.nextID
	f.nextID++
	cloned := *s
	f.sources[s.ID] = &cloned
	return s, nil
}

func (f *fakeArtSourceRepo) Update(ctx context.Context, s *domartsource.Source) (*domartsource.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sources[s.ID]; !ok {
		return nil, domartsource.ErrSourceNotFound
	}
	if f.urlTaken(s.URL, s.ID) {
		return nil, domartsource.ErrURLExists
	}
	cloned := *s
	f.sources[s.ID] = &cloned
	return s, nil
}

func (f *fakeArtSourceRepo) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sources[id]; !ok {
		return domartsource.ErrSourceNotFound
	}
	delete(f.sources, id)
	return nil
}

func (f *fakeArtSourceRepo) GetByID(ctx context.Context, id int64) (*domartsource.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sources[id]; ok {
		cloned := *s
		return &cloned, nil
	}
	return nil, domartsource.ErrSourceNotFound
}

func (f *fakeArtSourceRepo) List(ctx context.Context, filter domartsource.ListFilter) ([]*domartsource.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*domartsource.Source, 0, len(f.sources))
	for _, s := range f.sources {
		if filter.OnlyActive && !s.Active {
			continue
		}
		cloned := *s
		result = append(result, &cloned)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// --- Fake infrastructure ---

type fakeLocalStore struct {
	mu    sync.Mutex
	slots map[string]domcart.Snapshot
}

func newFakeLocalStore() *fakeLocalStore {
	return &fakeLocalStore{slots: make(map[string]domcart.Snapshot)}
}

func (f *fakeLocalStore) Load(ctx context.Context, key string) (domcart.Snapshot, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines, ok := f.slots[key]
	return lines.Clone(), ok, nil
}

func (f *fakeLocalStore) Save(ctx context.Context, key string, lines domcart.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots[key] = lines.Clone()
	return nil
}

func (f *fakeLocalStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.slots, key)
	return nil
}

type fakeFulfillment struct {
	mu        sync.Mutex
	orders    []fulfillment.OrderRequest
	published []fulfillment.ProductRequest
	orderErr  error
	listErr   error
}

func (f *fakeFulfillment) CreateOrder(ctx context.Context, req fulfillment.OrderRequest) (*fulfillment.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, req)
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &fulfillment.Order{ID: 91001, ExternalID: req.ExternalID, Status: "draft"}, nil
}

func (f *fakeFulfillment) CreateProduct(ctx context.Context, req fulfillment.ProductRequest) (*fulfillment.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, req)
	return &fulfillment.Product{ID: 3003, Name: req.SyncProduct.Name}, nil
}

func (f *fakeFulfillment) ListProducts(ctx context.Context) ([]fulfillment.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []fulfillment.Product{{ID: 3003, Name: "The Hermit"}}, nil
}

type fakeTrigger struct {
	mu       sync.Mutex
	calls    []string
	payloads []domworkflow.TriggerPayload
	err      error
}

func (f *fakeTrigger) Trigger(ctx context.Context, webhookURL string, payload domworkflow.TriggerPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, webhookURL)
	f.payloads = append(f.payloads, payload)
	return f.err
}

// --- Test environment ---

const (
	adminPassword    = "astral-admin"
	customerPassword = "moonphase42"
)

type testEnv struct {
	router      http.Handler
	tokens      *security.JWTService
	profiles    *fakeProfileRepo
	products    *fakeProductRepo
	orders      *fakeOrderRepo
	workflows   *fakeWorkflowRepo
	sources     *fakeArtSourceRepo
	local       *fakeLocalStore
	fulfillment *fakeFulfillment
	trigger     *fakeTrigger
	diagnostics *cartuc.Diagnostics

	admin    *domuser.Profile
	customer *domuser.Profile
	hermit   *domproduct.Product
	tower    *domproduct.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		tokens:      security.NewJWTService("test-secret", time.Hour),
		profiles:    newFakeProfileRepo(),
		products:    newFakeProductRepo(),
		orders:      newFakeOrderRepo(),
		workflows:   newFakeWorkflowRepo(),
		sources:     newFakeArtSourceRepo(),
		local:       newFakeLocalStore(),
		fulfillment: &fakeFulfillment{},
		trigger:     &fakeTrigger{},
		diagnostics: cartuc.NewDiagnostics(16, 16),
	}
	hasher, err := security.NewBcryptService(4)
	require.NoError(t, err)
	hub := notify.NewHub(10)

	env.admin = env.seedProfile(t, hasher, "oracle@example.com", adminPassword, domuser.RoleCodeAdmin)
	env.customer = env.seedProfile(t, hasher, "luna@example.com", customerPassword, domuser.RoleCodeCustomer)

	productSvc := productuc.NewService(env.products, env.fulfillment)
	env.hermit = env.seedProduct(t, productSvc, "The Hermit", "Pamela Colman Smith", "canvas", "89.99")
	env.tower = env.seedProduct(t, productSvc, "The Tower", "Arthur Waite", "poster", "39.99")

	sessions := cartuc.NewSessions(cartuc.StoreDeps{
		Local:       env.local,
		Remote:      env.orders,
		Notifier:    hub,
		Diagnostics: env.diagnostics,
		SyncTimeout: time.Second,
	}, time.Hour)
	t.Cleanup(sessions.Close)

	api := NewAPI(Dependencies{
		AuthService:    authuc.NewService(env.profiles, hasher, env.tokens),
		ProfileService: profileuc.NewService(env.profiles),
		ProductService: productSvc,
		OrderService:   orderuc.NewService(env.orders),
		CheckoutService: checkoutuc.NewService(checkoutuc.Deps{
			Fulfillment: env.fulfillment,
			Orders:      env.orders,
			Notifier:    hub,
			Diagnostics: env.diagnostics,
		}),
		WorkflowService:  workflowuc.NewService(env.workflows, env.trigger, nil),
		ArtSourceService: artsourceuc.NewService(env.sources),
		Sessions:         sessions,
		Diagnostics:      env.diagnostics,
		Notices:          hub,
		Catalog:          env.fulfillment,
	})
	env.router = api.Router()
	return env
}

func (e *testEnv) seedProfile(t *testing.T, hasher *security.BcryptService, email, password string, role domuser.RoleCode) *domuser.Profile {
	t.Helper()
	hash, err := hasher.Hash(password)
	require.NoError(t, err)
	p, err := e.profiles.Create(context.Background(), &domuser.Profile{
		Email:        email,
		FirstName:    strings.Split(email, "@")[0],
		RoleCode:     role,
		PasswordHash: hash,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) seedProduct(t *testing.T, svc *productuc.Service, title, artist, productType, price string) *domproduct.Product {
	t.Helper()
	p, err := svc.Create(context.Background(), &domproduct.Product{
		Title:       title,
		Artist:      artist,
		Price:       decimal.RequireFromString(price),
		ImageRef:    "https://images.example.com/" + strings.ToLower(strings.ReplaceAll(title, " ", "-")) + ".jpg",
		ProductType: productType,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) token(t *testing.T, p *domuser.Profile) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(p)
	require.NoError(t, err)
	return token
}

type requestOpts struct {
	token   string
	session string
}

func (e *testEnv) do(t *testing.T, method, path string, body any, opts requestOpts) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			payload.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&payload).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &payload)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if opts.token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.token)
	}
	if opts.session != "" {
		req.Header.Set(SessionHeader, opts.session)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func dataList(t *testing.T, rec *httptest.ResponseRecorder) []any {
	t.Helper()
	data, ok := decodeBody(t, rec)["data"].([]any)
	require.True(t, ok, rec.Body.String())
	return data
}
