package service

import (
	"context"
	"errors"
	"strings"

	"grabwallet/internal/models"
	"grabwallet/internal/repository"
)

const maxAddressLength = 255

type AddressStore interface {
	Create(ctx context.Context, a *models.WithdrawalAddress) error
	ListByUser(ctx context.Context, userID string) ([]models.WithdrawalAddress, error)
}

// AddressService keeps the per-user book of payout addresses.
type AddressService struct {
	store AddressStore
	users UserLookup
}

func NewAddressService(store AddressStore, users UserLookup) *AddressService {
	return &AddressService{store: store, users: users}
}

// Save adds address to the user's book. Saving an address twice returns the stored row.
func (s *AddressService) Save(ctx context.Context, userID, address string) (*models.WithdrawalAddress, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrAddressRequired
	}
	if len(address) > maxAddressLength {
		return nil, ErrAddressTooLong
	}
	if _, err := s.users.GetByUserID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if existing, err := s.find(ctx, userID, address); err != nil || existing != nil {
		return existing, err
	}

	a := &models.WithdrawalAddress{UserID: userID, Address: address}
	if err := s.store.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return s.find(ctx, userID, address)
		}
		return nil, err
	}
	return a, nil
}

// List returns the user's saved addresses, newest first.
func (s *AddressService) List(ctx context.Context, userID string) ([]models.WithdrawalAddress, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *AddressService) find(ctx context.Context, userID, address string) (*models.WithdrawalAddress, error) {
	list, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Address == address {
			return &list[i], nil
		}
	}
	return nil, nil
}
