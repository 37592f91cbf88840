package store

import (
	"context"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"

	"github.com/jmoiron/sqlx"
)

// EnsureUser creates the local user row for an identity-provider id if it
// does not exist yet
func (s *Store) EnsureUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING", userID)
	return err
}

// CreateAddress inserts a delivery address for a user
func (s *Store) CreateAddress(ctx context.Context, addr *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, name, street, city, state, zip, country, phone)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	return s.db.GetContext(ctx, addr, query,
		addr.UserID, addr.Name, addr.Street, addr.City, addr.State,
		addr.Zip, addr.Country, addr.Phone)
}

// GetAddressesByUserID retrieves a user's delivery addresses
func (s *Store) GetAddressesByUserID(ctx context.Context, userID string) ([]models.Address, error) {
	var addrs []models.Address
	err := s.db.SelectContext(ctx, &addrs,
		"SELECT * FROM addresses WHERE user_id = $1 ORDER BY created_at DESC", userID)
	return addrs, err
}

// GetAddressesByIDs retrieves addresses for a set of ids
func (s *Store) GetAddressesByIDs(ctx context.Context, ids []int64) ([]models.Address, error) {
	if len(ids) == 0 {
		return []models.Address{}, nil
	}

	query, args, err := sqlx.In("SELECT * FROM addresses WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var addrs []models.Address
	err = s.db.SelectContext(ctx, &addrs, query, args...)
	return addrs, err
}
