package models

import "time"

// Event types
const (
	EventTypeOrderPlaced      = "ORDER_PLACED"
	EventTypePaymentSucceeded = "PAYMENT_SUCCEEDED"
	EventTypePaymentExpired   = "PAYMENT_EXPIRED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderLine describes one line item carried inside an event payload
type OrderLine struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// OrderPlacedEvent is published once per checkout attempt after the
// transaction commits, carrying every vendor-group order it created.
type OrderPlacedEvent struct {
	BaseEvent
	UserID        string      `json:"user_id"`
	OrderIDs      []int64     `json:"order_ids"`
	PaymentMethod string      `json:"payment_method"`
	Amount        string      `json:"amount"`
	Lines         []OrderLine `json:"lines"`
}

// PaymentSucceededEvent is published when the payment provider confirms a
// hosted checkout session. OrderIDs are the session-linked metadata ids.
type PaymentSucceededEvent struct {
	BaseEvent
	UserID    string  `json:"user_id"`
	OrderIDs  []int64 `json:"order_ids"`
	SessionID string  `json:"session_id"`
	Amount    string  `json:"amount"`
}

// PaymentExpiredEvent is published when a hosted session lapses unconfirmed.
// The linked orders stay unpaid and become eligible for cleanup.
type PaymentExpiredEvent struct {
	BaseEvent
	UserID    string  `json:"user_id"`
	OrderIDs  []int64 `json:"order_ids"`
	SessionID string  `json:"session_id"`
}
