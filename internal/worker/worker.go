package worker

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aadhilm732/TGTPETSUAE/internal/broker"
	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/service"

	"github.com/segmentio/kafka-go"
)

// PaymentWorker applies payment-provider outcomes to the order store. It
// marks the session-linked orders paid on PaymentSucceeded, which also
// performs the deferred card-payment cart clear, and deletes unpaid orders
// on PaymentExpired.
type PaymentWorker struct {
	consumer     *broker.Consumer
	orderService *service.OrderService
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(consumer *broker.Consumer, orderService *service.OrderService) *PaymentWorker {
	return &PaymentWorker{
		consumer:     consumer,
		orderService: orderService,
	}
}

// Start starts the worker
func (w *PaymentWorker) Start(ctx context.Context) error {
	log.Println("Starting payment worker...")

	return w.consumer.StartConsuming(ctx, func(ctx context.Context, msg kafka.Message) error {
		var base models.BaseEvent
		if err := json.Unmarshal(msg.Value, &base); err != nil {
			log.Printf("Failed to unmarshal event: %v", err)
			return err
		}

		switch base.EventType {
		case models.EventTypePaymentSucceeded:
			var event models.PaymentSucceededEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("Failed to unmarshal PaymentSucceeded event: %v", err)
				return err
			}
			return w.orderService.ConfirmPayment(ctx, &event)
		case models.EventTypePaymentExpired:
			var event models.PaymentExpiredEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				log.Printf("Failed to unmarshal PaymentExpired event: %v", err)
				return err
			}
			return w.orderService.CancelExpired(ctx, &event)
		default:
			return nil
		}
	})
}

// Stop stops the worker
func (w *PaymentWorker) Stop() error {
	log.Println("Stopping payment worker...")
	return w.consumer.Close()
}
