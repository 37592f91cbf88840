package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CheckoutSessionInput describes the aggregate charge for one checkout
type CheckoutSessionInput struct {
	AmountMinor int64
	Currency    string
	OrderIDs    []int64
	UserID      string
}

// CheckoutSession is the redirect descriptor returned by the payment provider
type CheckoutSession struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at"`
}

// PaymentGateway creates hosted checkout sessions with the payment provider
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in *CheckoutSessionInput) (*CheckoutSession, error)
}

// Publisher publishes domain events after a checkout commits
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error
}

// IdempotencyCache stores checkout results keyed by idempotency key
type IdempotencyCache interface {
	GetIdempotentResult(ctx context.Context, key string) ([]byte, error)
	SetIdempotentResult(ctx context.Context, key string, value []byte) error
}

// OrderService handles checkout and order queries
type OrderService struct {
	store       *store.Store
	redis       IdempotencyCache
	publisher   Publisher
	gateway     PaymentGateway
	shippingFee decimal.Decimal
	currency    string
	logger      *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	store *store.Store,
	redis IdempotencyCache,
	publisher Publisher,
	gateway PaymentGateway,
	shippingFee decimal.Decimal,
	currency string,
) *OrderService {
	return &OrderService{
		store:       store,
		redis:       redis,
		publisher:   publisher,
		gateway:     gateway,
		shippingFee: shippingFee,
		currency:    currency,
		logger:      util.GetLogger(),
	}
}

// PlaceOrderRequest represents one checkout attempt
type PlaceOrderRequest struct {
	AddressID      int64              `json:"address_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1"`
	CouponCode     string             `json:"coupon_code,omitempty"`
	PaymentMethod  string             `json:"payment_method" binding:"required,oneof=COD CARD"`
	IdempotencyKey string             `json:"idempotency_key,omitempty"`
}

// OrderItemRequest represents one cart line in a checkout attempt
type OrderItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderResponse represents the result of a checkout attempt. Session is
// set only for card payments.
type PlaceOrderResponse struct {
	OrderIDs []int64          `json:"order_ids"`
	Amount   string           `json:"amount"`
	Message  string           `json:"message"`
	Session  *CheckoutSession `json:"session,omitempty"`
}

// PlaceOrder turns a flat cart into one persisted order per vendor group.
// All groups for one checkout commit in a single transaction; the coupon
// eligibility read happens inside that transaction behind a user row lock.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, isMember bool, req *PlaceOrderRequest) (*PlaceOrderResponse, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.PlaceOrder")
	defer span.End()

	util.CheckoutsTotal.Inc()

	if req.AddressID == 0 || len(req.Items) == 0 ||
		(req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodCard) {
		util.CheckoutsFailedTotal.WithLabelValues("missing_details").Inc()
		return nil, ErrMissingOrderDetails
	}
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity < 1 {
			util.CheckoutsFailedTotal.WithLabelValues("missing_details").Inc()
			return nil, ErrMissingOrderDetails
		}
	}

	if req.IdempotencyKey != "" {
		if cached, err := s.redis.GetIdempotentResult(ctx, req.IdempotencyKey); err == nil && cached != nil {
			var resp PlaceOrderResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				s.logger.Info("Duplicate checkout attempt",
					zap.String("idempotency_key", req.IdempotencyKey),
					zap.String("user_id", userID))
				return &resp, nil
			}
		}
	}

	// Validate the coupon before any mutation
	var coupon *models.Coupon
	if req.CouponCode != "" {
		c, err := s.store.GetCouponByCode(ctx, req.CouponCode)
		if errors.Is(err, sql.ErrNoRows) {
			util.CouponRejectionsTotal.WithLabelValues("not_found").Inc()
			return nil, ErrCouponNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("failed to look up coupon: %w", err)
		}
		coupon = c

		if coupon.ForMember && !isMember {
			util.CouponRejectionsTotal.WithLabelValues("member_only").Inc()
			return nil, ErrCouponMemberOnly
		}
	}

	tx, err := s.store.BeginTxx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.store.LockUserTx(ctx, tx, userID); err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	if coupon != nil && coupon.ForNewUser {
		priorOrders, err := s.store.CountOrdersByUserTx(ctx, tx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count prior orders: %w", err)
		}
		if err := checkCouponEligibility(coupon, priorOrders, isMember); err != nil {
			util.CouponRejectionsTotal.WithLabelValues("new_user_only").Inc()
			return nil, err
		}
	}

	address, err := s.store.GetAddressForUserTx(ctx, tx, req.AddressID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		util.CheckoutsFailedTotal.WithLabelValues("address").Inc()
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up address: %w", err)
	}

	lines, err := s.resolveCartLines(ctx, tx, req.Items)
	if err != nil {
		util.CheckoutsFailedTotal.WithLabelValues("invalid_items").Inc()
		return nil, err
	}

	groups := groupByVendor(lines)
	totals, aggregate := priceVendorGroups(groups, coupon, isMember, s.shippingFee)

	orderIDs := make([]int64, 0, len(totals))
	eventLines := make([]models.OrderLine, 0, len(lines))

	for _, group := range totals {
		order := &models.Order{
			UserID:        userID,
			StoreID:       group.StoreID,
			AddressID:     address.ID,
			Total:         group.Total,
			PaymentMethod: req.PaymentMethod,
			IsCouponUsed:  coupon != nil,
			Status:        models.OrderStatusPlaced,
		}
		if coupon != nil {
			order.CouponCode = sql.NullString{String: coupon.Code, Valid: true}
		}

		if err := s.store.CreateOrderTx(ctx, tx, order); err != nil {
			util.CheckoutsFailedTotal.WithLabelValues("db_error").Inc()
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		orderIDs = append(orderIDs, order.ID)

		for _, line := range group.Lines {
			item := &models.OrderItem{
				OrderID:   order.ID,
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price,
			}
			if err := s.store.CreateOrderItemTx(ctx, tx, item); err != nil {
				return nil, fmt.Errorf("failed to create order item: %w", err)
			}
			eventLines = append(eventLines, models.OrderLine{
				ProductID: line.Product.ID,
				Quantity:  line.Quantity,
				Price:     line.Product.Price.StringFixed(2),
			})
		}
	}

	// Cash-on-delivery clears the cart with the orders; card checkouts keep
	// the cart until payment confirmation in case the user abandons the
	// hosted session.
	if req.PaymentMethod == models.PaymentMethodCOD {
		if err := s.store.ClearCartTx(ctx, tx, userID); err != nil {
			return nil, fmt.Errorf("failed to clear cart: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout: %w", err)
	}

	util.OrdersPlacedTotal.Add(float64(len(orderIDs)))
	s.logger.Info("Checkout committed",
		zap.String("user_id", userID),
		zap.Int64s("order_ids", orderIDs),
		zap.String("amount", aggregate.StringFixed(2)),
		zap.String("payment_method", req.PaymentMethod))

	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		UserID:        userID,
		OrderIDs:      orderIDs,
		PaymentMethod: req.PaymentMethod,
		Amount:        aggregate.StringFixed(2),
		Lines:         eventLines,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}

	resp := &PlaceOrderResponse{
		OrderIDs: orderIDs,
		Amount:   aggregate.StringFixed(2),
		Message:  "Order placed successfully",
	}

	if req.PaymentMethod == models.PaymentMethodCard {
		session, err := s.createSession(ctx, userID, orderIDs, aggregate)
		if err != nil {
			return nil, err
		}
		resp.Session = session
		resp.Message = "Redirect to payment"
	}

	if req.IdempotencyKey != "" {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.redis.SetIdempotentResult(ctx, req.IdempotencyKey, data); err != nil {
				s.logger.Warn("Failed to cache idempotent result", zap.Error(err))
			}
		}
	}

	return resp, nil
}

// resolveCartLines loads the current product record for every cart line.
// Prices come from the catalog at order time, not from the client.
func (s *OrderService) resolveCartLines(ctx context.Context, tx *sqlx.Tx, items []OrderItemRequest) ([]cartLine, error) {
	productIDs := make([]int64, len(items))
	for i, item := range items {
		productIDs[i] = item.ProductID
	}

	products, err := s.store.GetProductsByIDsTx(ctx, tx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]cartLine, 0, len(items))
	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		lines = append(lines, cartLine{Product: product, Quantity: item.Quantity})
	}
	return lines, nil
}

// createSession requests a hosted payment session for the aggregate amount.
// The created order ids travel as session metadata so the confirmation
// callback can mark exactly those orders paid.
func (s *OrderService) createSession(ctx context.Context, userID string, orderIDs []int64, aggregate decimal.Decimal) (*CheckoutSession, error) {
	start := time.Now()
	defer func() {
		util.PaymentSessionLatency.Observe(time.Since(start).Seconds())
	}()

	session, err := s.gateway.CreateCheckoutSession(ctx, &CheckoutSessionInput{
		AmountMinor: aggregate.Mul(oneHundred).IntPart(),
		Currency:    s.currency,
		OrderIDs:    orderIDs,
		UserID:      userID,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrUpstreamTimeout
		}
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, fmt.Errorf("payment provider error: %w", err)
	}

	util.PaymentSessionsTotal.Inc()
	return session, nil
}

// ConfirmPayment applies a confirmed payment to its metadata-linked orders
// and clears the owner's cart, the deferred card-payment cart clear.
func (s *OrderService) ConfirmPayment(ctx context.Context, event *models.PaymentSucceededEvent) error {
	ctx, span := util.StartSpan(ctx, "OrderService.ConfirmPayment")
	defer span.End()

	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if err := s.store.MarkOrdersPaid(ctx, event.OrderIDs, event.UserID); err != nil {
		return fmt.Errorf("failed to mark orders paid: %w", err)
	}

	util.OrdersPaidTotal.Add(float64(len(event.OrderIDs)))

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	s.logger.Info("Payment confirmed",
		zap.String("user_id", event.UserID),
		zap.Int64s("order_ids", event.OrderIDs),
		zap.String("session_id", event.SessionID))
	return nil
}

// CancelExpired removes the unpaid orders of a lapsed checkout session so an
// abandoned card checkout does not linger as phantom orders.
func (s *OrderService) CancelExpired(ctx context.Context, event *models.PaymentExpiredEvent) error {
	ctx, span := util.StartSpan(ctx, "OrderService.CancelExpired")
	defer span.End()

	processed, err := s.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		s.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	deleted, err := s.store.DeleteUnpaidOrders(ctx, event.OrderIDs, event.UserID)
	if err != nil {
		return fmt.Errorf("failed to delete unpaid orders: %w", err)
	}

	if err := s.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		s.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	s.logger.Info("Expired checkout session cleaned up",
		zap.String("user_id", event.UserID),
		zap.String("session_id", event.SessionID),
		zap.Int64("orders_deleted", deleted))
	return nil
}

// OrderItemWithProduct pairs a line item with the product record it was
// bought as, so order history can render names and images.
type OrderItemWithProduct struct {
	models.OrderItem
	Product models.Product `json:"product"`
}

// OrderWithItems pairs an order with its delivery address and line items
type OrderWithItems struct {
	Order   models.Order           `json:"order"`
	Address models.Address         `json:"address"`
	Items   []OrderItemWithProduct `json:"items"`
}

// ListOrders returns the user's visible orders, newest first, with their
// line items, product snapshots, and delivery addresses. Card orders appear
// only once paid.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]OrderWithItems, error) {
	orders, err := s.store.GetVisibleOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return []OrderWithItems{}, nil
	}

	orderIDs := make([]int64, len(orders))
	for i, o := range orders {
		orderIDs[i] = o.ID
	}

	items, err := s.store.GetOrderItemsByOrderIDs(ctx, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}

	productIDSet := make(map[int64]struct{}, len(items))
	productIDs := make([]int64, 0, len(items))
	for _, item := range items {
		if _, seen := productIDSet[item.ProductID]; !seen {
			productIDSet[item.ProductID] = struct{}{}
			productIDs = append(productIDs, item.ProductID)
		}
	}
	products, err := s.store.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	productsByID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		productsByID[p.ID] = p
	}

	addressIDSet := make(map[int64]struct{}, len(orders))
	addressIDs := make([]int64, 0, len(orders))
	for _, o := range orders {
		if _, seen := addressIDSet[o.AddressID]; !seen {
			addressIDSet[o.AddressID] = struct{}{}
			addressIDs = append(addressIDs, o.AddressID)
		}
	}
	addresses, err := s.store.GetAddressesByIDs(ctx, addressIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	addressesByID := make(map[int64]models.Address, len(addresses))
	for _, a := range addresses {
		addressesByID[a.ID] = a
	}

	itemsByOrder := make(map[int64][]OrderItemWithProduct)
	for _, item := range items {
		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], OrderItemWithProduct{
			OrderItem: item,
			Product:   productsByID[item.ProductID],
		})
	}

	result := make([]OrderWithItems, len(orders))
	for i, o := range orders {
		result[i] = OrderWithItems{
			Order:   o,
			Address: addressesByID[o.AddressID],
			Items:   itemsByOrder[o.ID],
		}
	}
	return result, nil
}
