package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"

	"go.uber.org/zap"
)

// RatingService handles post-delivery reviews
type RatingService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewRatingService creates a new rating service
func NewRatingService(store *store.Store) *RatingService {
	return &RatingService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// AddRatingRequest represents a new review submission
type AddRatingRequest struct {
	OrderID   int64  `json:"order_id" binding:"required"`
	ProductID int64  `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Review    string `json:"review"`
}

// AddRating accepts a rating only when the order belongs to the requester,
// the order has been delivered, and no rating exists yet for the
// (order, product) pair.
func (s *RatingService) AddRating(ctx context.Context, userID string, req *AddRatingRequest) (*models.Rating, error) {
	ctx, span := util.StartSpan(ctx, "RatingService.AddRating")
	defer span.End()

	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	order, err := s.store.GetOrderForUser(ctx, req.OrderID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up order: %w", err)
	}

	if order.Status != models.OrderStatusDelivered {
		return nil, ErrNotDelivered
	}

	exists, err := s.store.RatingExists(ctx, req.OrderID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing rating: %w", err)
	}
	if exists {
		return nil, ErrAlreadyRated
	}

	rating := &models.Rating{
		UserID:    userID,
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Review:    req.Review,
	}
	if err := s.store.CreateRating(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	s.logger.Info("Rating added",
		zap.String("user_id", userID),
		zap.Int64("order_id", req.OrderID),
		zap.Int64("product_id", req.ProductID))
	return rating, nil
}

// ListRatings returns the requester's ratings
func (s *RatingService) ListRatings(ctx context.Context, userID string) ([]models.Rating, error) {
	return s.store.GetRatingsByUserID(ctx, userID)
}
