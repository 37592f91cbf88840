package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/config"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// StripeGateway creates hosted checkout sessions and verifies confirmation
// callbacks against the Stripe API.
type StripeGateway struct {
	cfg    config.PaymentConfig
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe payment gateway
func NewStripeGateway(cfg config.PaymentConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{
		cfg:    cfg,
		logger: util.GetLogger(),
	}
}

var _ PaymentGateway = (*StripeGateway)(nil)

// CreateCheckoutSession requests a hosted payment session describing the
// aggregate charge. The created order ids travel as opaque metadata so the
// webhook can mark exactly those orders paid. The session expires after a
// bounded window; unconfirmed orders stay unpaid.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in *CheckoutSessionInput) (*CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(in.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Order"),
					},
					UnitAmount: stripe.Int64(in.AmountMinor),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(g.cfg.SuccessURL),
		CancelURL:  stripe.String(g.cfg.CancelURL),
		ExpiresAt:  stripe.Int64(time.Now().Add(g.cfg.SessionTTL).Unix()),
	}
	params.Context = ctx
	params.AddMetadata("orderIds", joinOrderIDs(in.OrderIDs))
	params.AddMetadata("userId", in.UserID)
	params.AddMetadata("appId", "TGTPETSUAE")

	sess, err := session.New(params)
	if err != nil {
		if ctx.Err() != nil {
			return nil, context.DeadlineExceeded
		}
		// Provider error bodies are logged here and never echoed to clients
		g.logger.Error("Stripe session creation failed", zap.Error(err))
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CheckoutSession{
		ID:        sess.ID,
		URL:       sess.URL,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// WebhookConfirmation is the distilled result of a verified provider
// callback. Exactly one of Completed and Expired is set for session events;
// both are false for event types this service ignores.
type WebhookConfirmation struct {
	SessionID string
	UserID    string
	OrderIDs  []int64
	Amount    string
	Completed bool
	Expired   bool
}

// VerifyWebhook checks the callback signature and extracts the session
// metadata.
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (*WebhookConfirmation, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid webhook signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired":
	default:
		return &WebhookConfirmation{}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("malformed webhook payload: %w", err)
	}

	orderIDs, err := splitOrderIDs(sess.Metadata["orderIds"])
	if err != nil {
		return nil, fmt.Errorf("malformed order ids in session metadata: %w", err)
	}

	return &WebhookConfirmation{
		SessionID: sess.ID,
		UserID:    sess.Metadata["userId"],
		OrderIDs:  orderIDs,
		Amount:    strconv.FormatInt(sess.AmountTotal, 10),
		Completed: event.Type == "checkout.session.completed",
		Expired:   event.Type == "checkout.session.expired",
	}, nil
}

func joinOrderIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func splitOrderIDs(joined string) ([]int64, error) {
	if joined == "" {
		return nil, fmt.Errorf("empty order id list")
	}
	parts := strings.Split(joined, ",")
	ids := make([]int64, len(parts))
	for i, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
