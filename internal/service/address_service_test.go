package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"grabwallet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memAddresses struct {
	mu   sync.Mutex
	rows []models.WithdrawalAddress
}

func (m *memAddresses) Create(_ context.Context, a *models.WithdrawalAddress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uint(len(m.rows) + 1)
	m.rows = append(m.rows, *a)
	return nil
}

func (m *memAddresses) ListByUser(_ context.Context, userID string) ([]models.WithdrawalAddress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WithdrawalAddress
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
	}
	return out, nil
}

func TestAddressBook(t *testing.T) {
	env := newTestEnv(t)
	env.users.add("U", "")
	store := &memAddresses{}
	svc := NewAddressService(store, env.users)
	ctx := context.Background()

	first, err := svc.Save(ctx, "U", "  addr-1 ")
	require.NoError(t, err)
	assert.Equal(t, "addr-1", first.Address)

	again, err := svc.Save(ctx, "U", "addr-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	_, err = svc.Save(ctx, "U", "addr-2")
	require.NoError(t, err)

	list, err := svc.List(ctx, "U")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "addr-2", list[0].Address)
}

func TestAddressBookValidation(t *testing.T) {
	env := newTestEnv(t)
	env.users.add("U", "")
	svc := NewAddressService(&memAddresses{}, env.users)
	ctx := context.Background()

	_, err := svc.Save(ctx, "U", " ")
	assert.ErrorIs(t, err, ErrAddressRequired)
	_, err = svc.Save(ctx, "U", strings.Repeat("x", 256))
	assert.ErrorIs(t, err, ErrAddressTooLong)
	_, err = svc.Save(ctx, "NOBODY", "addr")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
