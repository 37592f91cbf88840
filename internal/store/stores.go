package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetStoreByUserID retrieves the store owned by a user, nil when none exists
func (s *Store) GetStoreByUserID(ctx context.Context, userID string) (*models.Store, error) {
	var st models.Store
	err := s.db.GetContext(ctx, &st, "SELECT * FROM stores WHERE user_id = $1", userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// UsernameTaken reports whether a store username is already in use.
// Usernames are stored lowercase, so the comparison is case-insensitive.
func (s *Store) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM stores WHERE username = $1)",
		strings.ToLower(username))
	return exists, err
}

// CreateStore persists a new vendor application in pending status
func (s *Store) CreateStore(ctx context.Context, st *models.Store) error {
	query := `
		INSERT INTO stores (user_id, name, username, description, email, contact, address, logo, status, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE)
		RETURNING id, is_active, created_at`

	return s.db.GetContext(ctx, st, query,
		st.UserID, st.Name, strings.ToLower(st.Username), st.Description,
		st.Email, st.Contact, st.Address, st.Logo, models.StoreStatusPending)
}

// GetActiveStoreByUsername retrieves an active storefront by username
func (s *Store) GetActiveStoreByUsername(ctx context.Context, username string) (*models.Store, error) {
	var st models.Store
	err := s.db.GetContext(ctx, &st,
		"SELECT * FROM stores WHERE username = $1 AND is_active = TRUE",
		strings.ToLower(username))
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// GetInStockProductsByStoreID retrieves the in-stock products of a storefront
func (s *Store) GetInStockProductsByStoreID(ctx context.Context, storeID int64) ([]models.Product, error) {
	var products []models.Product
	err := s.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE store_id = $1 AND in_stock = TRUE ORDER BY created_at DESC", storeID)
	return products, err
}

// GetRatingsByProductIDs retrieves ratings for a set of products
func (s *Store) GetRatingsByProductIDs(ctx context.Context, productIDs []int64) ([]models.Rating, error) {
	if len(productIDs) == 0 {
		return []models.Rating{}, nil
	}
	query, args, err := sqlx.In("SELECT * FROM ratings WHERE product_id IN (?)", productIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var ratings []models.Rating
	err = s.db.SelectContext(ctx, &ratings, query, args...)
	return ratings, err
}
