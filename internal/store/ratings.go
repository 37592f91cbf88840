package store

import (
	"context"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
)

// RatingExists reports whether a rating already exists for (order, product)
func (s *Store) RatingExists(ctx context.Context, orderID, productID int64) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM ratings WHERE order_id = $1 AND product_id = $2)",
		orderID, productID)
	return exists, err
}

// CreateRating inserts a new rating
func (s *Store) CreateRating(ctx context.Context, rating *models.Rating) error {
	query := `
		INSERT INTO ratings (user_id, order_id, product_id, rating, review)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, rating, query,
		rating.UserID, rating.OrderID, rating.ProductID, rating.Rating, rating.Review)
}

// GetRatingsByUserID retrieves all ratings left by a user
func (s *Store) GetRatingsByUserID(ctx context.Context, userID string) ([]models.Rating, error) {
	var ratings []models.Rating
	err := s.db.SelectContext(ctx, &ratings,
		"SELECT * FROM ratings WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return ratings, err
}
