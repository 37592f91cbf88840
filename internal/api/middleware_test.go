package api

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/service"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthRouter() (*gin.Engine, *Handler) {
	gin.SetMode(gin.TestMode)
	h := &Handler{jwtSecret: testJWTSecret, memberPlan: "plus"}
	router := gin.New()
	router.GET("/whoami", h.requireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": userID(c), "is_member": isMember(c)})
	})
	return router, h
}

func TestRequireAuthRejectsMissingOrBadTokens(t *testing.T) {
	router, _ := newAuthRouter()

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt"},
		{"wrong secret", "Bearer " + signToken(t, jwt.MapClaims{"sub": "user-1"}, "other-secret")},
		{"missing sub", "Bearer " + signToken(t, jwt.MapClaims{"plan": "plus"}, testJWTSecret)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestRequireAuthExtractsIdentity(t *testing.T) {
	router, _ := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "user-1", "plan": "plus"}, testJWTSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "user-1", "is_member": true}`, w.Body.String())
}

func TestRequireAuthNonMemberPlan(t *testing.T) {
	router, _ := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.MapClaims{"sub": "user-2", "plan": "free"}, testJWTSecret))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id": "user-2", "is_member": false}`, w.Body.String())
}

func newSellerRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &Handler{
		storeService: service.NewStoreService(store.NewStoreWithDB(sqlx.NewDb(db, "sqlmock")), nil, nil),
	}
	router := gin.New()
	router.GET("/store", func(c *gin.Context) {
		c.Set(ctxUserID, "user-1")
		c.Next()
	}, h.requireSeller(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"store_id": sellerStoreID(c), "username": sellerStoreUsername(c)})
	})
	return router, mock
}

func TestRequireSellerRejectsNonSeller(t *testing.T) {
	router, mock := newSellerRouter(t)

	mock.ExpectQuery(`SELECT \* FROM stores`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "username", "description",
			"email", "contact", "address", "logo", "status", "is_active", "created_at"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/store", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireSellerSurfacesLookupFailure(t *testing.T) {
	router, mock := newSellerRouter(t)

	mock.ExpectQuery(`SELECT \* FROM stores`).
		WithArgs("user-1").
		WillReturnError(sql.ErrConnDone)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/store", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireSellerExposesActiveStore(t *testing.T) {
	router, mock := newSellerRouter(t)

	mock.ExpectQuery(`SELECT \* FROM stores`).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "name", "username", "description",
			"email", "contact", "address", "logo", "status", "is_active", "created_at"}).
			AddRow(int64(9), "user-1", "Pawsome Pets", "pawsome", "Everything for pets",
				"hi@pawsome.example", "+971500000000", "Dubai", "logo.png",
				"ACTIVE", true, time.Now()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/store", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"store_id": 9, "username": "pawsome"}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestErrorResponseStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{service.ErrMissingOrderDetails, http.StatusBadRequest},
		{service.ErrCouponIneligible, http.StatusBadRequest},
		{service.ErrCouponMemberOnly, http.StatusBadRequest},
		{service.ErrInvalidRating, http.StatusBadRequest},
		{service.ErrNotDelivered, http.StatusBadRequest},
		{service.ErrProductNotFound, http.StatusNotFound},
		{service.ErrOrderNotFound, http.StatusNotFound},
		{service.ErrStoreNotFound, http.StatusNotFound},
		{service.ErrCouponNotFound, http.StatusNotFound},
		{service.ErrAddressNotFound, http.StatusNotFound},
		{service.ErrDuplicateUsername, http.StatusConflict},
		{service.ErrAlreadyRated, http.StatusConflict},
		{service.ErrNotSeller, http.StatusUnauthorized},
		{service.ErrAssistantUnavailable, http.StatusBadGateway},
		{service.ErrMalformedAssistantResponse, http.StatusBadGateway},
		{service.ErrUpstreamTimeout, http.StatusGatewayTimeout},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			errorResponse(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestUnknownErrorsAreOpaque(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	errorResponse(c, assert.AnError)
	assert.JSONEq(t, `{"error": "Something went wrong"}`, w.Body.String())
}
