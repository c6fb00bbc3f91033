package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareCountRefresh(t *testing.T) {
	env := newTestEnv(t)
	env.users.add("SP", "")
	env.users.add("R1", "SP")
	env.users.add("R2", "SP")
	env.users.add("R3", "R1")
	env.fund(t, "R1", "500")
	env.fund(t, "R2", "50")
	env.fund(t, "R3", "101")

	svc := NewShareCountService(env.users, env.shares, env.cfg.Referral.ShareBalanceThreshold, env.log)
	n, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, env.shares.get("SP").ShareCount)
	assert.Equal(t, 1, env.shares.get("R1").ShareCount)

	// the cumulative tally never drops
	_, err = env.ledger.Append(context.Background(), Entry{UserID: "R3", Debit: dec("100"), Type: "Withdrawal"})
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, env.shares.get("R1").ShareCount)
	assert.Equal(t, 1, env.shares.get("R1").TotalShareCount)
}

func TestShareCountRefreshStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	env.users.add("SP", "")
	env.users.add("R1", "SP")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewShareCountService(env.users, env.shares, env.cfg.Referral.ShareBalanceThreshold, env.log)
	_, err := svc.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
