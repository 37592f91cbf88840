package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImageHost uploads assets and derives CDN URLs with transform options
type ImageHost interface {
	Upload(ctx context.Context, data []byte, fileName, folder string) (string, error)
	TransformedURL(filePath string, width int) string
}

// StorefrontCache caches rendered storefront payloads
type StorefrontCache interface {
	CacheGet(ctx context.Context, key string) ([]byte, error)
	CacheSet(ctx context.Context, key string, value []byte, ttl time.Duration) error
	CacheInvalidate(ctx context.Context, key string) error
}

// StoreService handles vendor onboarding and the seller-side catalog
type StoreService struct {
	store  *store.Store
	redis  StorefrontCache
	images ImageHost
	logger *zap.Logger
}

// NewStoreService creates a new store service
func NewStoreService(store *store.Store, redis StorefrontCache, images ImageHost) *StoreService {
	return &StoreService{
		store:  store,
		redis:  redis,
		images: images,
		logger: util.GetLogger(),
	}
}

// CreateStoreRequest carries the multipart fields of a vendor application
type CreateStoreRequest struct {
	Name        string
	Username    string
	Description string
	Email       string
	Contact     string
	Address     string
	LogoData    []byte
	LogoName    string
}

// CreateStoreResult reports either a new pending application or, on an
// idempotent resubmit, the requester's existing application status.
type CreateStoreResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CreateStore validates and persists a vendor application. A requester that
// already owns a store gets its current status back instead of an error; a
// username that collides case-insensitively is rejected.
func (s *StoreService) CreateStore(ctx context.Context, userID string, req *CreateStoreRequest) (*CreateStoreResult, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.CreateStore")
	defer span.End()

	if req.Name == "" || req.Username == "" || req.Description == "" ||
		req.Email == "" || req.Contact == "" || req.Address == "" || len(req.LogoData) == 0 {
		return nil, ErrMissingStoreInfo
	}

	existing, err := s.store.GetStoreByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if existing != nil {
		return &CreateStoreResult{Status: existing.Status}, nil
	}

	taken, err := s.store.UsernameTaken(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, ErrDuplicateUsername
	}

	start := time.Now()
	filePath, err := s.images.Upload(ctx, req.LogoData, req.LogoName, "logos")
	util.ImageUploadLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrUpstreamTimeout
		}
		s.logger.Error("Logo upload failed", zap.Error(err))
		return nil, fmt.Errorf("failed to upload logo: %w", err)
	}
	logoURL := s.images.TransformedURL(filePath, 512)

	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	newStore := &models.Store{
		UserID:      userID,
		Name:        req.Name,
		Username:    strings.ToLower(req.Username),
		Description: req.Description,
		Email:       req.Email,
		Contact:     req.Contact,
		Address:     req.Address,
		Logo:        logoURL,
	}
	if err := s.store.CreateStore(ctx, newStore); err != nil {
		// The availability check above races against concurrent
		// applications, so the unique index has the final word.
		if store.IsUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	util.StoresAppliedTotal.Inc()
	s.logger.Info("Store application received",
		zap.String("user_id", userID),
		zap.String("username", newStore.Username))

	return &CreateStoreResult{
		Status:  newStore.Status,
		Message: "applied, waiting for approval",
	}, nil
}

// GetStoreStatus returns the requester's application status, or "not registered"
func (s *StoreService) GetStoreStatus(ctx context.Context, userID string) (string, error) {
	st, err := s.store.GetStoreByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to look up store: %w", err)
	}
	if st == nil {
		return "not registered", nil
	}
	return st.Status, nil
}

// SellerStore resolves the requester's active store, the seller gate used by
// product and listing routes.
func (s *StoreService) SellerStore(ctx context.Context, userID string) (*models.Store, error) {
	st, err := s.store.GetStoreByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up store: %w", err)
	}
	if st == nil || !st.IsActive {
		return nil, ErrNotSeller
	}
	return st, nil
}

// ProductUpload carries one product image from the multipart form
type ProductUpload struct {
	Data []byte
	Name string
}

// CreateProductRequest carries the multipart fields of a new product
type CreateProductRequest struct {
	Name        string
	Description string
	MRP         decimal.Decimal
	Price       decimal.Decimal
	Category    string
	Images      []ProductUpload
}

// CreateProduct uploads the product images and persists the product under
// the seller's store. Any cached storefront for the store is invalidated.
func (s *StoreService) CreateProduct(ctx context.Context, storeID int64, username string, req *CreateProductRequest) (*models.Product, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.CreateProduct")
	defer span.End()

	if req.Name == "" || req.Description == "" || req.Category == "" ||
		req.MRP.LessThanOrEqual(decimal.Zero) || req.Price.LessThanOrEqual(decimal.Zero) ||
		len(req.Images) == 0 {
		return nil, ErrMissingProductDetails
	}

	urls := make([]string, 0, len(req.Images))
	for _, img := range req.Images {
		start := time.Now()
		filePath, err := s.images.Upload(ctx, img.Data, img.Name, "products")
		util.ImageUploadLatency.Observe(time.Since(start).Seconds())
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrUpstreamTimeout
			}
			s.logger.Error("Product image upload failed", zap.Error(err))
			return nil, fmt.Errorf("failed to upload product image: %w", err)
		}
		urls = append(urls, s.images.TransformedURL(filePath, 1024))
	}

	product := &models.Product{
		StoreID:     storeID,
		Name:        req.Name,
		Description: req.Description,
		MRP:         req.MRP,
		Price:       req.Price,
		Category:    req.Category,
		Images:      pq.StringArray(urls),
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidateStorefront(ctx, username)
	return product, nil
}

// ListProducts returns all of a seller's products
func (s *StoreService) ListProducts(ctx context.Context, storeID int64) ([]models.Product, error) {
	return s.store.GetProductsByStoreID(ctx, storeID)
}

// ToggleStock flips the in-stock flag of a product the seller owns and
// invalidates the store's cached storefront.
func (s *StoreService) ToggleStock(ctx context.Context, storeID int64, username string, productID int64) error {
	err := s.store.ToggleProductStock(ctx, productID, storeID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	s.invalidateStorefront(ctx, username)
	return nil
}

func (s *StoreService) invalidateStorefront(ctx context.Context, username string) {
	if username == "" {
		return
	}
	key := "storefront:" + strings.ToLower(username)
	if err := s.redis.CacheInvalidate(ctx, key); err != nil {
		s.logger.Warn("Failed to invalidate storefront cache", zap.Error(err))
	}
}

// StorefrontData is the public view of an active store
type StorefrontData struct {
	Store    models.Store     `json:"store"`
	Products []models.Product `json:"products"`
	Ratings  []models.Rating  `json:"ratings"`
}

const storefrontCacheTTL = time.Minute

// GetStorefront returns an active store with its in-stock products and their
// ratings. Results are cached briefly in Redis; the cache is best effort and
// misses fall through to the database.
func (s *StoreService) GetStorefront(ctx context.Context, username string) (*StorefrontData, error) {
	ctx, span := util.StartSpan(ctx, "StoreService.GetStorefront")
	defer span.End()

	cacheKey := "storefront:" + strings.ToLower(username)
	if cached, err := s.redis.CacheGet(ctx, cacheKey); err == nil && cached != nil {
		var data StorefrontData
		if err := json.Unmarshal(cached, &data); err == nil {
			return &data, nil
		}
	}

	st, err := s.store.GetActiveStoreByUsername(ctx, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up storefront: %w", err)
	}

	products, err := s.store.GetInStockProductsByStoreID(ctx, st.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	productIDs := make([]int64, len(products))
	for i, p := range products {
		productIDs[i] = p.ID
	}
	ratings, err := s.store.GetRatingsByProductIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	data := &StorefrontData{Store: *st, Products: products, Ratings: ratings}

	if encoded, err := json.Marshal(data); err == nil {
		if err := s.redis.CacheSet(ctx, cacheKey, encoded, storefrontCacheTTL); err != nil {
			s.logger.Warn("Failed to cache storefront", zap.Error(err))
		}
	}
	return data, nil
}
