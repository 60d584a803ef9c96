package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domcart "example.com/mystic-prints/app/internal/domain/cart"
	"example.com/mystic-prints/app/internal/domain/fulfillment"
	"example.com/mystic-prints/app/internal/domain/notice"
	domorder "example.com/mystic-prints/app/internal/domain/order"
	domuser "example.com/mystic-prints/app/internal/domain/user"
	ucart "example.com/mystic-prints/app/internal/usecase/cart"
)

// Cart is the part of a session cart the checkout needs.
type Cart interface {
	SessionKey() string
	Owner() *domuser.Identity
	Lines() domcart.Snapshot
	Clear(ctx context.Context) *ucart.Sync
	Flush(ctx context.Context) error
}

type Fulfillment interface {
	CreateOrder(ctx context.Context, req fulfillment.OrderRequest) (*fulfillment.Order, error)
}

type OrderRepository interface {
	FindCartOrder(ctx context.Context, userID int64) (*domorder.Order, error)
	MarkPending(ctx context.Context, id int64, shipping domorder.ShippingInfo, fulfillmentOrderID string) error
}

// OrderListener is told about every placed order, in turn and before
// Checkout returns. Errors are logged only.
type OrderListener interface {
	OrderPlaced(ctx context.Context, ev domorder.PlacedEvent) error
}

type Result struct {
	OrderID            int64
	FulfillmentOrderID string
	ExternalID         string
	Total              string
	ItemCount          int
}

type Deps struct {
	Fulfillment Fulfillment
	Orders      OrderRepository
	Notifier    ucart.Notifier
	Diagnostics *ucart.Diagnostics
	Listeners   []OrderListener
	Logger      *zap.Logger
}

type Service struct {
	fulfillment Fulfillment
	orders      OrderRepository
	notifier    ucart.Notifier
	diag        *ucart.Diagnostics
	listeners   []OrderListener
	logger      *zap.Logger

	newExternalID func() string
	now           func() time.Time
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fulfillment:   deps.Fulfillment,
		orders:        deps.Orders,
		notifier:      deps.Notifier,
		diag:          deps.Diagnostics,
		listeners:     deps.Listeners,
		logger:        logger,
		newExternalID: uuid.NewString,
		now:           time.Now,
	}
}

// Checkout submits the cart to the fulfillment provider. Every call is a new
// submission: a retry after a failure places a second provider order.
func (s *Service) Checkout(ctx context.Context, cart Cart, shipping domorder.ShippingInfo) (*Result, error) {
	owner := cart.Owner()
	if owner == nil {
		s.notify(cart, notice.Failure("Authentication required", "Please sign in to complete your purchase."))
		return nil, domorder.ErrAuthenticationRequired
	}

	lines := cart.Lines()
	if len(lines) == 0 {
		return nil, domorder.ErrEmptyOrderItems
	}

	req := fulfillment.OrderRequest{
		ExternalID: s.newExternalID(),
		Recipient:  recipientOf(shipping),
		Items:      make([]fulfillment.OrderItem, 0, len(lines)),
	}
	for _, l := range lines {
		req.Items = append(req.Items, fulfillment.OrderItem{SyncVariantID: l.VariantID, Quantity: l.Quantity})
	}

	logger := s.logger.With(
		zap.String("session", cart.SessionKey()),
		zap.Int64("user_id", owner.UserID),
		zap.String("external_id", req.ExternalID),
	)

	placed, err := s.fulfillment.CreateOrder(ctx, req)
	if err != nil {
		logger.Error("fulfillment order submission failed", zap.Error(err))
		s.notify(cart, notice.Failure("Checkout failed", "There was a problem processing your order. Please try again."))
		return nil, fmt.Errorf("%w: %w", domorder.ErrCheckoutFailed, err)
	}

	res := &Result{
		FulfillmentOrderID: strconv.FormatInt(placed.ID, 10),
		ExternalID:         req.ExternalID,
		Total:              lines.Total().StringFixed(2),
		ItemCount:          len(lines),
	}
	res.OrderID = s.markPending(ctx, logger, cart, owner, shipping, res.FulfillmentOrderID)

	if err := cart.Clear(ctx).Err(); errors.Is(err, domcart.ErrStoreClosed) {
		logger.Warn("cart closed before it could be cleared")
	}

	s.notify(cart, notice.Info("Order placed successfully!", "Your order has been submitted for processing."))
	logger.Info("order placed",
		zap.String("fulfillment_order_id", res.FulfillmentOrderID),
		zap.Int("items", res.ItemCount))

	s.publish(ctx, logger, domorder.PlacedEvent{
		OrderID:            res.OrderID,
		UserID:             owner.UserID,
		Email:              owner.Email,
		FulfillmentOrderID: res.FulfillmentOrderID,
		ExternalID:         res.ExternalID,
		Total:              lines.Total(),
		ItemCount:          res.ItemCount,
		Shipping:           shipping,
		PlacedAt:           s.now(),
	})
	return res, nil
}

// markPending moves the user's remote cart order to pending. A missing cart
// order is skipped; other failures are logged and reported.
func (s *Service) markPending(ctx context.Context, logger *zap.Logger, cart Cart, owner *domuser.Identity, shipping domorder.ShippingInfo, fulfillmentOrderID string) int64 {
	if err := cart.Flush(ctx); err != nil {
		logger.Warn("pending cart replication did not finish", zap.Error(err))
	}

	order, err := s.orders.FindCartOrder(ctx, owner.UserID)
	if errors.Is(err, domorder.ErrOrderNotFound) {
		return 0
	}
	if err == nil {
		err = s.orders.MarkPending(ctx, order.ID, shipping, fulfillmentOrderID)
	}
	if err != nil {
		logger.Error("failed to update remote cart order", zap.Error(err))
		s.diag.Report(ucart.SyncEvent{
			Op:         ucart.OpOrderPlace,
			SessionKey: cart.SessionKey(),
			UserID:     owner.UserID,
			Err:        err,
		})
		return 0
	}
	return order.ID
}

func (s *Service) publish(ctx context.Context, logger *zap.Logger, ev domorder.PlacedEvent) {
	for _, l := range s.listeners {
		if err := l.OrderPlaced(ctx, ev); err != nil {
			logger.Warn("order listener failed", zap.Error(err))
		}
	}
}

func (s *Service) notify(cart Cart, n notice.Notice) {
	if s.notifier != nil {
		s.notifier.Notify(cart.SessionKey(), n)
	}
}

func recipientOf(shipping domorder.ShippingInfo) fulfillment.Recipient {
	return fulfillment.Recipient{
		Name:        shipping.Name,
		Address1:    shipping.Address,
		City:        shipping.City,
		StateCode:   shipping.State,
		CountryCode: shipping.Country,
		Zip:         shipping.Zip,
	}
}
