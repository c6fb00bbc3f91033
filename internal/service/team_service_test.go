package service

import (
	"context"
	"testing"
	"time"

	"grabwallet/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamStore struct {
	ids      []string
	from, to time.Time
}

func (f *fakeTeamStore) SumBalances(_ context.Context, ids []string) (decimal.Decimal, error) {
	f.ids = ids
	return dec("300"), nil
}

func (f *fakeTeamStore) Totals(_ context.Context, _ []string, from, to time.Time) (*repository.TeamTotals, error) {
	f.from, f.to = from, to
	return &repository.TeamTotals{
		Credit:          dec("500"),
		Debit:           dec("120"),
		Withdrawn:       dec("100"),
		WithdrawRefund:  dec("40"),
		OrderCommission: dec("12.5"),
	}, nil
}

func (f *fakeTeamStore) FirstDepositors(context.Context, []string, time.Time, time.Time) (int64, error) {
	return 2, nil
}

func teamFixture(t *testing.T) (*testEnv, *fakeTeamStore, *TeamService) {
	t.Helper()
	env := newTestEnv(t)
	env.users.add("A", "")
	env.users.add("B", "A")
	env.users.add("C", "A")
	env.users.add("D", "B")
	env.users.add("E", "D")
	env.users.add("F", "E")
	store := &fakeTeamStore{}
	return env, store, NewTeamService(env.referrals, store, 3, time.UTC)
}

func TestTeamStats(t *testing.T) {
	_, store, svc := teamFixture(t)
	from := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 3, 8, 0, 0, 0, time.UTC)

	stats, err := svc.Stats(context.Background(), "A", from, to)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TeamSize)
	assert.Equal(t, 2, stats.FirstLevelMembers)
	assert.Equal(t, map[int]int{1: 2, 2: 1, 3: 1}, stats.Levels)
	assert.ElementsMatch(t, []string{"B", "C", "D", "E"}, store.ids)
	assert.True(t, stats.TeamWithdraw.Equal(dec("60")))
	assert.True(t, stats.TeamOrderCommission.Equal(dec("12.5")))
	assert.Equal(t, int64(2), stats.FirstTimeDepositors)

	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), store.from)
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), store.to)
	assert.Equal(t, time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC), stats.To)
}

func TestTeamStatsRejectsReversedRange(t *testing.T) {
	_, _, svc := teamFixture(t)
	from := time.Date(2026, 5, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Stats(context.Background(), "A", from, to)
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestDayRangeDefaultsToToday(t *testing.T) {
	_, _, svc := teamFixture(t)
	start, end, err := svc.DayRange(time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, StartOfDay(time.Now(), time.UTC), start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestTeamMembersAtLevel(t *testing.T) {
	_, _, svc := teamFixture(t)
	ctx := context.Background()

	members, err := svc.Members(ctx, "A", 2)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "D", members[0].User.UserID)

	members, err = svc.Members(ctx, "A", 4)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestStartOfDayUsesLocation(t *testing.T) {
	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 20:00 UTC on the 1st is already the 2nd in IST
	got := StartOfDay(time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC), kolkata)
	assert.Equal(t, 2, got.Day())
	assert.Equal(t, 0, got.Hour())
}
