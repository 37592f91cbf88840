package api

import (
	"io"
	"net/http"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// placeOrder handles one checkout attempt
func (h *Handler) placeOrder(c *gin.Context) {
	var req service.PlaceOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing order details"})
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orderService.PlaceOrder(c.Request.Context(), userID(c), isMember(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// listOrders handles listing the requester's visible orders
func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.orderService.ListOrders(c.Request.Context(), userID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// paymentWebhook handles the payment provider's confirmation callback. The
// verified confirmation is published as an event; the payment worker applies
// it to the orders.
func (h *Handler) paymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	confirmation, err := h.verifier.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	switch {
	case confirmation.Completed:
		event := &models.PaymentSucceededEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePaymentSucceeded,
				Timestamp: time.Now(),
			},
			UserID:    confirmation.UserID,
			OrderIDs:  confirmation.OrderIDs,
			SessionID: confirmation.SessionID,
			Amount:    confirmation.Amount,
		}
		if err := h.publisher.PublishPaymentSucceeded(c.Request.Context(), event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
	case confirmation.Expired:
		event := &models.PaymentExpiredEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypePaymentExpired,
				Timestamp: time.Now(),
			},
			UserID:    confirmation.UserID,
			OrderIDs:  confirmation.OrderIDs,
			SessionID: confirmation.SessionID,
		}
		if err := h.publisher.PublishPaymentExpired(c.Request.Context(), event); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// createAddress handles adding a delivery address
func (h *Handler) createAddress(c *gin.Context) {
	var req service.AddAddressRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing address details"})
		return
	}

	addr, err := h.addressService.AddAddress(c.Request.Context(), userID(c), &req)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": addr})
}

// listAddresses handles listing the requester's addresses
func (h *Handler) listAddresses(c *gin.Context) {
	addrs, err := h.addressService.ListAddresses(c.Request.Context(), userID(c))
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addrs})
}
