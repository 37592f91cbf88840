package api

import (
	"net/http"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/broker"
	"github.com/aadhilm732/TGTPETSUAE/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WebhookVerifier checks a payment-provider callback and extracts the
// session-linked metadata.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, signature string) (*service.WebhookConfirmation, error)
}

// Handler contains HTTP handlers
type Handler struct {
	orderService   *service.OrderService
	storeService   *service.StoreService
	ratingService  *service.RatingService
	listingService *service.ListingService
	addressService *service.AddressService
	verifier       WebhookVerifier
	publisher      *broker.EventPublisher
	jwtSecret      string
	memberPlan     string
}

// NewHandler creates a new HTTP handler
func NewHandler(
	orderService *service.OrderService,
	storeService *service.StoreService,
	ratingService *service.RatingService,
	listingService *service.ListingService,
	addressService *service.AddressService,
	verifier WebhookVerifier,
	publisher *broker.EventPublisher,
	jwtSecret, memberPlan string,
) *Handler {
	return &Handler{
		orderService:   orderService,
		storeService:   storeService,
		ratingService:  ratingService,
		listingService: listingService,
		addressService: addressService,
		verifier:       verifier,
		publisher:      publisher,
		jwtSecret:      jwtSecret,
		memberPlan:     memberPlan,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	// Public routes
	v1.GET("/store/data", h.getStorefront)
	v1.POST("/payments/webhook", h.paymentWebhook)

	// Authenticated routes
	authed := v1.Group("", h.requireAuth())
	{
		authed.POST("/orders", h.placeOrder)
		authed.GET("/orders", h.listOrders)

		authed.POST("/ratings", h.addRating)
		authed.GET("/ratings", h.listRatings)

		authed.POST("/addresses", h.createAddress)
		authed.GET("/addresses", h.listAddresses)

		authed.POST("/store", h.createStore)
		authed.GET("/store", h.storeStatus)
	}

	// Seller routes require an active store
	seller := v1.Group("/store", h.requireAuth(), h.requireSeller())
	{
		seller.POST("/products", h.createProduct)
		seller.GET("/products", h.listProducts)
		seller.POST("/stock-toggle", h.toggleStock)
		seller.POST("/ai", h.generateListing)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
