package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// User represents a shopper or seller identity. The id is assigned by the
// external identity provider; membership tier travels in the token, not here.
type User struct {
	ID        string          `db:"id" json:"id"`
	Cart      json.RawMessage `db:"cart" json:"cart"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Store represents a vendor storefront
type Store struct {
	ID          int64     `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Username    string    `db:"username" json:"username"`
	Description string    `db:"description" json:"description"`
	Email       string    `db:"email" json:"email"`
	Contact     string    `db:"contact" json:"contact"`
	Address     string    `db:"address" json:"address"`
	Logo        string    `db:"logo" json:"logo"`
	Status      string    `db:"status" json:"status"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Product represents a sellable item belonging to exactly one store
type Product struct {
	ID          int64           `db:"id" json:"id"`
	StoreID     int64           `db:"store_id" json:"store_id"`
	Name        string          `db:"name" json:"name"`
	Description string          `db:"description" json:"description"`
	MRP         decimal.Decimal `db:"mrp" json:"mrp"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Category    string          `db:"category" json:"category"`
	Images      pq.StringArray  `db:"images" json:"images"`
	InStock     bool            `db:"in_stock" json:"in_stock"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Coupon represents a discount code with optional eligibility gates
type Coupon struct {
	Code       string          `db:"code" json:"code"`
	Discount   decimal.Decimal `db:"discount" json:"discount"`
	ForNewUser bool            `db:"for_new_user" json:"for_new_user"`
	ForMember  bool            `db:"for_member" json:"for_member"`
	ExpiresAt  time.Time       `db:"expires_at" json:"expires_at"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Address represents a delivery address owned by a user
type Address struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Street    string    `db:"street" json:"street"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	Zip       string    `db:"zip" json:"zip"`
	Country   string    `db:"country" json:"country"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Order represents one vendor-scoped purchase inside a checkout attempt.
// Total is the post-discount, post-shipping amount for this vendor's items only.
type Order struct {
	ID            int64           `db:"id" json:"id"`
	UserID        string          `db:"user_id" json:"user_id"`
	StoreID       int64           `db:"store_id" json:"store_id"`
	AddressID     int64           `db:"address_id" json:"address_id"`
	Total         decimal.Decimal `db:"total" json:"total"`
	PaymentMethod string          `db:"payment_method" json:"payment_method"`
	IsCouponUsed  bool            `db:"is_coupon_used" json:"is_coupon_used"`
	CouponCode    sql.NullString  `db:"coupon_code" json:"-"`
	IsPaid        bool            `db:"is_paid" json:"is_paid"`
	Status        string          `db:"status" json:"status"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// OrderItem represents a line item with the unit price captured at order time
type OrderItem struct {
	ID        int64           `db:"id" json:"id"`
	OrderID   int64           `db:"order_id" json:"order_id"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Quantity  int             `db:"quantity" json:"quantity"`
	Price     decimal.Decimal `db:"price" json:"price"`
}

// Rating represents a post-delivery review, at most one per (order, product)
type Rating struct {
	ID        int64     `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	OrderID   int64     `db:"order_id" json:"order_id"`
	ProductID int64     `db:"product_id" json:"product_id"`
	Rating    int       `db:"rating" json:"rating"`
	Review    string    `db:"review" json:"review"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Payment methods
const (
	PaymentMethodCOD  = "COD"
	PaymentMethodCard = "CARD"
)

// Order statuses
const (
	OrderStatusPlaced     = "ORDER_PLACED"
	OrderStatusProcessing = "PROCESSING"
	OrderStatusShipped    = "SHIPPED"
	OrderStatusDelivered  = "DELIVERED"
)

// Store statuses
const (
	StoreStatusPending  = "pending"
	StoreStatusApproved = "approved"
	StoreStatusRejected = "rejected"
)

// ProcessedEvent for consumer idempotency
type ProcessedEvent struct {
	EventID     string    `db:"event_id"`
	EventType   string    `db:"event_type"`
	ProcessedAt time.Time `db:"processed_at"`
}
