package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/service"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ctxUserID        = "userID"
	ctxIsMember      = "isMember"
	ctxStoreID       = "storeID"
	ctxStoreUsername = "storeUsername"
)

// requireAuth validates the identity provider's bearer token. The token's
// sub claim is the user id; the plan claim marks the membership tier.
func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(h.jwtSecret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}

		plan, _ := claims["plan"].(string)

		c.Set(ctxUserID, sub)
		c.Set(ctxIsMember, plan == h.memberPlan)
		c.Next()
	}
}

// requireSeller gates seller routes on the requester owning an active store
func (h *Handler) requireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		store, err := h.storeService.SellerStore(c.Request.Context(), userID(c))
		if errors.Is(err, service.ErrNotSeller) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
			return
		}
		if err != nil {
			errorResponse(c, err)
			c.Abort()
			return
		}
		c.Set(ctxStoreID, store.ID)
		c.Set(ctxStoreUsername, store.Username)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func isMember(c *gin.Context) bool {
	return c.GetBool(ctxIsMember)
}

func sellerStoreID(c *gin.Context) int64 {
	return c.GetInt64(ctxStoreID)
}

func sellerStoreUsername(c *gin.Context) string {
	return c.GetString(ctxStoreUsername)
}

// errorResponse maps workflow failures to HTTP statuses with short, stable
// error strings. Unknown errors become an opaque 500.
func errorResponse(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong"

	switch {
	case errors.Is(err, service.ErrMissingOrderDetails),
		errors.Is(err, service.ErrMissingStoreInfo),
		errors.Is(err, service.ErrMissingProductDetails),
		errors.Is(err, service.ErrInvalidRating),
		errors.Is(err, service.ErrNotDelivered),
		errors.Is(err, service.ErrCouponIneligible),
		errors.Is(err, service.ErrCouponMemberOnly):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrStoreNotFound),
		errors.Is(err, service.ErrCouponNotFound),
		errors.Is(err, service.ErrAddressNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrAlreadyRated):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrNotSeller):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrAssistantUnavailable),
		errors.Is(err, service.ErrMalformedAssistantResponse):
		status = http.StatusBadGateway
		message = err.Error()
	case errors.Is(err, service.ErrUpstreamTimeout):
		status = http.StatusGatewayTimeout
		message = err.Error()
	}

	c.JSON(status, gin.H{"error": message})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
