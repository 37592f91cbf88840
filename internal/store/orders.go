package store

import (
	"context"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// LockUserTx takes a row lock on the user for the duration of the checkout
// transaction. Coupon eligibility reads behind this lock cannot race a
// concurrent checkout by the same user.
func (s *Store) LockUserTx(ctx context.Context, tx *sqlx.Tx, userID string) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", userID); err != nil {
		return err
	}
	var id string
	return tx.GetContext(ctx, &id, "SELECT id FROM users WHERE id = $1 FOR UPDATE", userID)
}

// CountOrdersByUserTx counts a user's prior orders within a transaction
func (s *Store) CountOrdersByUserTx(ctx context.Context, tx *sqlx.Tx, userID string) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, "SELECT COUNT(*) FROM orders WHERE user_id = $1", userID)
	return count, err
}

// GetAddressForUserTx retrieves an address only if it belongs to the user
func (s *Store) GetAddressForUserTx(ctx context.Context, tx *sqlx.Tx, addressID int64, userID string) (*models.Address, error) {
	var addr models.Address
	err := tx.GetContext(ctx, &addr,
		"SELECT * FROM addresses WHERE id = $1 AND user_id = $2", addressID, userID)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

// CreateOrderTx inserts one vendor-group order within a transaction
func (s *Store) CreateOrderTx(ctx context.Context, tx *sqlx.Tx, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, store_id, address_id, total, payment_method, is_coupon_used, coupon_code, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_paid, created_at, updated_at`

	return tx.GetContext(ctx, order, query,
		order.UserID, order.StoreID, order.AddressID, order.Total,
		order.PaymentMethod, order.IsCouponUsed, order.CouponCode, order.Status)
}

// CreateOrderItemTx inserts one line item within a transaction
func (s *Store) CreateOrderItemTx(ctx context.Context, tx *sqlx.Tx, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	return tx.GetContext(ctx, &item.ID, query,
		item.OrderID, item.ProductID, item.Quantity, item.Price)
}

// ClearCartTx empties the user's cart snapshot within a transaction
func (s *Store) ClearCartTx(ctx context.Context, tx *sqlx.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, "UPDATE users SET cart = '{}' WHERE id = $1", userID)
	return err
}

// ClearCart empties the user's cart snapshot outside a transaction
func (s *Store) ClearCart(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE users SET cart = '{}' WHERE id = $1", userID)
	return err
}

// GetOrderForUser retrieves an order only if it belongs to the user
func (s *Store) GetOrderForUser(ctx context.Context, orderID int64, userID string) (*models.Order, error) {
	var order models.Order
	err := s.db.GetContext(ctx, &order,
		"SELECT * FROM orders WHERE id = $1 AND user_id = $2", orderID, userID)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetVisibleOrdersByUserID retrieves the orders a user should see: cash on
// delivery orders unconditionally, card orders only once paid.
func (s *Store) GetVisibleOrdersByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.SelectContext(ctx, &orders, `
		SELECT * FROM orders
		WHERE user_id = $1
		  AND (payment_method = $2 OR (payment_method = $3 AND is_paid = TRUE))
		ORDER BY created_at DESC`,
		userID, models.PaymentMethodCOD, models.PaymentMethodCard)
	return orders, err
}

// GetOrderItemsByOrderIDs retrieves line items for a set of orders
func (s *Store) GetOrderItemsByOrderIDs(ctx context.Context, orderIDs []int64) ([]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return []models.OrderItem{}, nil
	}
	query, args, err := sqlx.In("SELECT * FROM order_items WHERE order_id IN (?)", orderIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var items []models.OrderItem
	err = s.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// MarkOrdersPaid flips the metadata-linked orders to paid and moves them to
// processing, then clears the owner's cart. One transaction, so a crash
// cannot leave some of a checkout's orders paid and others not.
func (s *Store) MarkOrdersPaid(ctx context.Context, orderIDs []int64, userID string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE orders SET is_paid = TRUE, status = $1, updated_at = NOW()
		WHERE id = ANY($2) AND user_id = $3`,
		models.OrderStatusProcessing, pq.Array(orderIDs), userID)
	if err != nil {
		return err
	}

	if err := s.ClearCartTx(ctx, tx, userID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteUnpaidOrders removes the orders of an abandoned card checkout along
// with their line items. Paid orders are left untouched. Returns the number
// of orders removed.
func (s *Store) DeleteUnpaidOrders(ctx context.Context, orderIDs []int64, userID string) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM order_items
		WHERE order_id IN (
			SELECT id FROM orders
			WHERE id = ANY($1) AND user_id = $2 AND is_paid = FALSE
		)`, pq.Array(orderIDs), userID)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `
		DELETE FROM orders
		WHERE id = ANY($1) AND user_id = $2 AND is_paid = FALSE`,
		pq.Array(orderIDs), userID)
	if err != nil {
		return 0, err
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, tx.Commit()
}

// IsEventProcessed checks if an event has been processed
func (s *Store) IsEventProcessed(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM processed_events WHERE event_id = $1)", eventID)
	return exists, err
}

// MarkEventProcessed marks an event as processed
func (s *Store) MarkEventProcessed(ctx context.Context, eventID, eventType string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_events (event_id, event_type) VALUES ($1, $2) ON CONFLICT (event_id) DO NOTHING",
		eventID, eventType)
	return err
}
