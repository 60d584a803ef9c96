package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	domartsource "example.com/mystic-prints/app/internal/domain/artsource"
	domcart "example.com/mystic-prints/app/internal/domain/cart"
	domorder "example.com/mystic-prints/app/internal/domain/order"
	domproduct "example.com/mystic-prints/app/internal/domain/product"
	domuser "example.com/mystic-prints/app/internal/domain/user"
	domworkflow "example.com/mystic-prints/app/internal/domain/workflow"
)

func setupTestDB(t *testing.T) *DB {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, Migrate(Postgres, dsn, Up))
	require.NoError(t, Migrate(Postgres, dsn, Up), "second run has nothing to apply")

	db, err := Open(ctx, Postgres, dsn, Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedCatalog(t *testing.T, db *DB) (*domuser.Profile, *domproduct.Product) {
	ctx := context.Background()

	profile, err := NewProfileRepository(db).Create(ctx, &domuser.Profile{
		Email:        "luna@example.com",
		FirstName:    "Luna",
		RoleCode:     domuser.RoleCodeCustomer,
		PasswordHash: "hash",
	})
	require.NoError(t, err)

	product, err := NewProductRepository(db).Create(ctx, &domproduct.Product{
		Title:       "The Star",
		Artist:      "Pamela Colman Smith",
		Price:       decimal.RequireFromString("89.99"),
		ImageRef:    "https://images.example.com/star.jpg",
		ProductType: "canvas",
		Variants: []domproduct.Variant{
			{VariantID: 1231, Size: "small", Price: decimal.RequireFromString("79.99")},
			{VariantID: 1232, Size: "medium", Price: decimal.RequireFromString("89.99")},
			{VariantID: 1233, Size: "large", Price: decimal.RequireFromString("109.99")},
		},
	})
	require.NoError(t, err)
	return profile, product
}

func TestPostgres_Profiles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)
	profile, _ := seedCatalog(t, db)

	got, err := repo.GetByEmail(ctx, "luna@example.com")
	require.NoError(t, err)
	require.Equal(t, profile.ID, got.ID)
	require.Equal(t, domuser.RoleCodeCustomer, got.RoleCode)

	_, err = repo.Create(ctx, &domuser.Profile{Email: "luna@example.com", PasswordHash: "x", RoleCode: domuser.RoleCodeCustomer})
	require.ErrorIs(t, err, domuser.ErrEmailAlreadyUsed)

	got.RoleCode = domuser.RoleCodeAdmin
	updated, err := repo.Update(ctx, got)
	require.NoError(t, err)
	require.Equal(t, domuser.RoleCodeAdmin, updated.RoleCode)

	admin := domuser.RoleCodeAdmin
	admins, err := repo.List(ctx, domuser.ListFilter{RoleCode: &admin})
	require.NoError(t, err)
	require.Len(t, admins, 1)

	_, err = repo.GetByID(ctx, 9999)
	require.ErrorIs(t, err, domuser.ErrUserNotFound)
}

func TestPostgres_Products(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewProductRepository(db)
	_, product := seedCatalog(t, db)

	require.Len(t, product.Variants, 3)
	require.Equal(t, "small", product.Variants[0].Size)
	require.Equal(t, "79.99", product.Variants[0].Price.StringFixed(2))

	_, err := repo.Create(ctx, &domproduct.Product{
		Title: "Ocean Waves", Artist: "Hokusai", Price: decimal.RequireFromString("39.99"),
		ImageRef: "https://images.example.com/wave.jpg", ProductType: "poster",
	})
	require.NoError(t, err)

	all, err := repo.List(ctx, domproduct.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Ocean Waves", all[0].Title, "newest first")

	found, err := repo.List(ctx, domproduct.ListFilter{Search: "colman"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	posters, err := repo.List(ctx, domproduct.ListFilter{ProductType: "poster"})
	require.NoError(t, err)
	require.Len(t, posters, 1)

	product.Price = decimal.RequireFromString("95")
	product.Variants = []domproduct.Variant{{VariantID: 1232, Size: "medium", Price: decimal.RequireFromString("95")}}
	updated, err := repo.Update(ctx, product)
	require.NoError(t, err)
	require.Len(t, updated.Variants, 1)

	require.NoError(t, repo.Delete(ctx, product.ID))
	require.ErrorIs(t, repo.Delete(ctx, product.ID), domproduct.ErrProductNotFound)
}

func TestPostgres_CartMirror(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)
	profile, product := seedCatalog(t, db)

	empty, err := repo.LoadCart(ctx, profile.ID)
	require.NoError(t, err)
	require.Empty(t, empty)

	lines := domcart.Snapshot{
		{ProductID: product.ID, UnitPrice: decimal.RequireFromString("109.99"), Quantity: 2, ProductType: "canvas", VariantID: 1233, Size: "large"},
		{ProductID: product.ID, UnitPrice: decimal.RequireFromString("79.99"), Quantity: 1, ProductType: "canvas", VariantID: 1231, Size: "small"},
	}
	require.NoError(t, repo.SaveCart(ctx, profile.ID, lines))

	loaded, err := repo.LoadCart(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	require.Equal(t, "The Star", loaded[0].Title)
	require.Equal(t, "https://images.example.com/star.jpg", loaded[0].ImageRef)
	require.Equal(t, int64(2), loaded[0].Quantity)
	require.Equal(t, "large", loaded[0].Size)

	// A second save replaces the items instead of appending.
	require.NoError(t, repo.SaveCart(ctx, profile.ID, lines[1:]))
	cartOrder, err := repo.FindCartOrder(ctx, profile.ID)
	require.NoError(t, err)
	require.Len(t, cartOrder.Items, 1)
	require.Equal(t, "79.99", cartOrder.Total.StringFixed(2))

	require.NoError(t, repo.DeleteCart(ctx, profile.ID))
	_, err = repo.FindCartOrder(ctx, profile.ID)
	require.ErrorIs(t, err, domorder.ErrOrderNotFound)
	require.NoError(t, repo.DeleteCart(ctx, profile.ID))
}

func TestPostgres_MarkPending(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(db)
	profile, product := seedCatalog(t, db)

	require.NoError(t, repo.SaveCart(ctx, profile.ID, domcart.Snapshot{
		{ProductID: product.ID, UnitPrice: decimal.RequireFromString("89.99"), Quantity: 1, ProductType: "canvas", VariantID: 1232, Size: "medium"},
	}))
	cartOrder, err := repo.FindCartOrder(ctx, profile.ID)
	require.NoError(t, err)

	shipping := domorder.ShippingInfo{Name: "Luna", Address: "1 Moon St", City: "Salem", State: "MA", Country: "US", Zip: "01970"}
	require.NoError(t, repo.MarkPending(ctx, cartOrder.ID, shipping, "91001"))
	require.ErrorIs(t, repo.MarkPending(ctx, cartOrder.ID, shipping, "91001"), domorder.ErrOrderNotFound)

	placed, err := repo.GetByID(ctx, cartOrder.ID)
	require.NoError(t, err)
	require.Equal(t, domorder.StatusPending, placed.Status)
	require.Equal(t, "91001", placed.FulfillmentOrderID)
	require.Equal(t, &shipping, placed.ShippingAddress)

	_, err = repo.FindCartOrder(ctx, profile.ID)
	require.ErrorIs(t, err, domorder.ErrOrderNotFound)

	pending := domorder.StatusPending
	orders, err := repo.List(ctx, domorder.ListFilter{Status: &pending, UserID: &profile.ID})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	shipped, err := repo.UpdateStatus(ctx, cartOrder.ID, domorder.StatusShipped)
	require.NoError(t, err)
	require.Equal(t, domorder.StatusShipped, shipped.Status)
}

func TestPostgres_WorkflowsAndSources(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	workflows := NewWorkflowRepository(db)
	next := time.Now().Add(7 * 24 * time.Hour).UTC().Truncate(time.Second)
	w, err := workflows.Create(ctx, &domworkflow.Workflow{
		Name:       "Daily Art Sourcing",
		Status:     domworkflow.StatusActive,
		WebhookURL: "https://hooks.example.com/art",
		Schedule:   "0 9 * * *",
		NextRun:    &next,
	})
	require.NoError(t, err)
	require.Nil(t, w.LastRun)
	require.True(t, next.Equal(*w.NextRun))

	w.Status = domworkflow.StatusError
	w.WebhookURL = ""
	w, err = workflows.Update(ctx, w)
	require.NoError(t, err)
	require.Equal(t, domworkflow.StatusError, w.Status)
	require.Empty(t, w.WebhookURL)

	require.NoError(t, workflows.Delete(ctx, w.ID))
	_, err = workflows.GetByID(ctx, w.ID)
	require.ErrorIs(t, err, domworkflow.ErrWorkflowNotFound)

	sources := NewArtSourceRepository(db)
	s, err := sources.Create(ctx, &domartsource.Source{Name: "The Met", URL: "https://www.metmuseum.org", Active: true})
	require.NoError(t, err)
	_, err = sources.Create(ctx, &domartsource.Source{Name: "Dup", URL: "https://www.metmuseum.org"})
	require.ErrorIs(t, err, domartsource.ErrURLExists)

	s.Active = false
	_, err = sources.Update(ctx, s)
	require.NoError(t, err)
	active, err := sources.List(ctx, domartsource.ListFilter{OnlyActive: true})
	require.NoError(t, err)
	require.Empty(t, active)
}
