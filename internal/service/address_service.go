package service

import (
	"context"
	"fmt"

	"github.com/aadhilm732/TGTPETSUAE/internal/models"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"
)

// AddressService manages delivery addresses
type AddressService struct {
	store *store.Store
}

// NewAddressService creates a new address service
func NewAddressService(store *store.Store) *AddressService {
	return &AddressService{store: store}
}

// AddAddressRequest represents a new delivery address
type AddAddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
}

// AddAddress persists a delivery address owned by the user
func (s *AddressService) AddAddress(ctx context.Context, userID string, req *AddAddressRequest) (*models.Address, error) {
	if err := s.store.EnsureUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	addr := &models.Address{
		UserID:  userID,
		Name:    req.Name,
		Street:  req.Street,
		City:    req.City,
		State:   req.State,
		Zip:     req.Zip,
		Country: req.Country,
		Phone:   req.Phone,
	}
	if err := s.store.CreateAddress(ctx, addr); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return addr, nil
}

// ListAddresses returns the user's delivery addresses
func (s *AddressService) ListAddresses(ctx context.Context, userID string) ([]models.Address, error) {
	return s.store.GetAddressesByUserID(ctx, userID)
}
