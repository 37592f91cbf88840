package store

import (
	"context"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
)

// GetCouponByCode retrieves an unexpired coupon by its code
func (s *Store) GetCouponByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var coupon models.Coupon
	err := s.db.GetContext(ctx, &coupon,
		"SELECT * FROM coupons WHERE code = $1 AND expires_at > NOW()", code)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
