package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// grabFixture: G is funded with 1000 and sits under S1 <- S2 <- S3.
func grabFixture(t *testing.T) (*testEnv, *time.Time) {
	t.Helper()
	env := newTestEnv(t)
	env.plans.plans = []models.Plan{
		{ID: 1, Title: "Silver", Price: dec("500"), Commission: dec("6"), GrabNo: 3},
	}
	env.products.products = []models.Product{
		{ID: 10, ProductName: "Headphones", Price: dec("550")},
		{ID: 11, ProductName: "Yacht", Price: dec("90000")},
	}
	env.users.add("S3", "")
	env.users.add("S2", "S3")
	env.users.add("S1", "S2")
	env.users.add("G", "S1")
	env.fund(t, "G", "1000")

	clock := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	env.grab.now = func() time.Time { return clock }
	return env, &clock
}

func TestGrabQuotaAndDailySnapshot(t *testing.T) {
	env, _ := grabFixture(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		res, err := env.grab.Grab(ctx, "G")
		require.NoError(t, err)
		assert.Equal(t, domain.GrabStatusGrabbed, res.Status)
		assert.True(t, res.Commission.Equal(dec("20")), "grab %d paid %s", i, res.Commission)
		assert.Equal(t, i, res.GrabCount)
		assert.Equal(t, 3-i, res.GrabCountLeft)
		require.NotNil(t, res.Product)
		assert.Equal(t, uint(10), res.Product.ID)
	}

	entries, saves := env.store.count(), env.shares.saves
	res, err := env.grab.Grab(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabStatusLimitReached, res.Status)
	assert.Equal(t, domain.GrabExhausted, res.State)
	assert.Equal(t, 0, res.GrabCountLeft)
	assert.Equal(t, entries, env.store.count())
	assert.Equal(t, saves, env.shares.saves)
	assert.Len(t, env.reports.list, 3)

	assert.True(t, env.store.balance("G").Equal(dec("1060")))
	assert.True(t, env.store.profit("G").Equal(dec("60")))
}

func TestGrabCascadesToThreeLevels(t *testing.T) {
	env, _ := grabFixture(t)
	_, err := env.grab.Grab(context.Background(), "G")
	require.NoError(t, err)

	assert.True(t, env.store.balance("S1").Equal(dec("3.2")), "S1 %s", env.store.balance("S1"))
	assert.True(t, env.store.balance("S2").Equal(dec("1.6")), "S2 %s", env.store.balance("S2"))
	assert.True(t, env.store.balance("S3").Equal(dec("0.8")), "S3 %s", env.store.balance("S3"))

	for _, id := range []string{"S1", "S2", "S3"} {
		entries := env.store.entriesOf(id)
		require.Len(t, entries, 1)
		assert.Equal(t, domain.TxLevelCommission, entries[0].TransactionType)
		assert.True(t, entries[0].Profit.Equal(entries[0].Credit))
	}
}

func TestGrabUsesStoredLevelRates(t *testing.T) {
	env, _ := grabFixture(t)
	env.levels.level = &models.LevelSetting{LevelFirst: dec("10"), LevelSecond: dec("5"), LevelThird: dec("0")}

	_, err := env.grab.Grab(context.Background(), "G")
	require.NoError(t, err)
	assert.True(t, env.store.balance("S1").Equal(dec("2")))
	assert.True(t, env.store.balance("S2").Equal(dec("1")))
	assert.Empty(t, env.store.entriesOf("S3"))
}

func TestGrabCascadeStopsAtBrokenChain(t *testing.T) {
	env, _ := grabFixture(t)
	env.users.add("S2", "GONE")

	_, err := env.grab.Grab(context.Background(), "G")
	require.NoError(t, err)
	assert.True(t, env.store.balance("S1").Equal(dec("3.2")))
	assert.True(t, env.store.balance("S2").Equal(dec("1.6")))
	assert.Empty(t, env.store.entriesOf("S3"))
}

func TestGrabResetsOnNewDay(t *testing.T) {
	env, clock := grabFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.grab.Grab(ctx, "G")
		require.NoError(t, err)
	}
	*clock = clock.Add(24 * time.Hour)

	res, err := env.grab.Grab(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabStatusGrabbed, res.Status)
	assert.Equal(t, 1, res.GrabCount)
	// the new snapshot is the balance after yesterday's three grabs
	assert.True(t, res.Commission.Equal(dec("21.2")), "paid %s", res.Commission)
	assert.True(t, env.shares.get("G").DailyInitialBalance.Equal(dec("1060")))
}

func TestGrabWithoutProduct(t *testing.T) {
	env, _ := grabFixture(t)
	env.products.products = nil
	before := env.store.count()

	res, err := env.grab.Grab(context.Background(), "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabStatusNoProduct, res.Status)
	assert.Equal(t, before, env.store.count())
	assert.Equal(t, 0, env.shares.get("G").GrabCount)
}

func TestGrabWithoutPlan(t *testing.T) {
	env, _ := grabFixture(t)
	env.users.add("POOR", "")
	env.fund(t, "POOR", "100")

	_, err := env.grab.Grab(context.Background(), "POOR")
	assert.ErrorIs(t, err, ErrNoEligiblePlan)
}

func TestGrabCompensatesFailedCascade(t *testing.T) {
	env, _ := grabFixture(t)
	env.store.failFor["S2"] = errBoom

	_, err := env.grab.Grab(context.Background(), "G")
	require.Error(t, err)
	assert.Equal(t, domain.KindIntegrity, domain.KindOf(err))

	assert.True(t, env.store.balance("G").Equal(dec("1000")))
	assert.True(t, env.store.profit("G").IsZero())
	assert.True(t, env.store.balance("S1").IsZero())
	assert.True(t, env.store.profit("S1").IsZero())
	assert.Equal(t, 0, env.shares.get("G").GrabCount)
	assert.Empty(t, env.reports.list)

	var reversals int
	for _, e := range append(env.store.entriesOf("G"), env.store.entriesOf("S1")...) {
		if e.TransactionType == domain.TxReversal {
			reversals++
		}
	}
	assert.Equal(t, 2, reversals)
}

func TestGrabRestoresStateWhenReportFails(t *testing.T) {
	env, _ := grabFixture(t)
	env.reports.err = errBoom

	_, err := env.grab.Grab(context.Background(), "G")
	require.Error(t, err)
	assert.Equal(t, domain.KindIntegrity, domain.KindOf(err))
	assert.Equal(t, 0, env.shares.get("G").GrabCount)
	assert.True(t, env.store.balance("G").Equal(dec("1000")))
	assert.True(t, env.store.balance("S3").IsZero())
}

func TestConcurrentGrabsRespectQuota(t *testing.T) {
	env, _ := grabFixture(t)
	const attempts = 6

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = map[string]int{}
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.grab.Grab(context.Background(), "G")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			statuses[res.Status]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, statuses[domain.GrabStatusGrabbed])
	assert.Equal(t, attempts-3, statuses[domain.GrabStatusLimitReached])
	assert.Len(t, env.reports.list, 3)
}

func TestLevelReportsProgress(t *testing.T) {
	env, clock := grabFixture(t)
	ctx := context.Background()

	view, err := env.grab.Level(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabIdle, view.State)
	assert.Equal(t, 3, view.GrabCountLeft)

	_, err = env.grab.Grab(ctx, "G")
	require.NoError(t, err)
	view, err = env.grab.Level(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabActive, view.State)
	assert.Equal(t, 1, view.GrabCount)
	assert.Equal(t, 2, view.GrabCountLeft)
	require.NotNil(t, view.Eligibility.Plan)
	assert.Equal(t, "Silver", view.Eligibility.Plan.Title)

	*clock = clock.Add(24 * time.Hour)
	view, err = env.grab.Level(ctx, "G")
	require.NoError(t, err)
	assert.Equal(t, domain.GrabIdle, view.State)
	assert.Equal(t, 0, view.GrabCount)
}

func TestDirectCommission(t *testing.T) {
	plan := &models.Plan{Commission: dec("6"), GrabNo: 3}
	assert.True(t, DirectCommission(dec("1000"), plan).Equal(dec("20")))

	plan = &models.Plan{Commission: dec("1"), GrabNo: 7}
	assert.True(t, DirectCommission(dec("1000"), plan).Equal(dec("1.4286")))

	plan = &models.Plan{Commission: dec("5"), GrabNo: 0}
	assert.True(t, DirectCommission(dec("1000"), plan).IsZero())
}

func TestPriceBand(t *testing.T) {
	cfg := config.GrabConfig{HighBandFloor: dec("500"), LowBandWindow: dec("0.2")}
	cases := []struct{ balance, lo, hi string }{
		{"600", "500", "600"},
		{"500", "500", "500"},
		{"400", "320", "400"},
		{"0", "0", "0"},
	}
	for _, tc := range cases {
		lo, hi := PriceBand(dec(tc.balance), cfg)
		assert.True(t, lo.Equal(dec(tc.lo)), "balance %s lo %s", tc.balance, lo)
		assert.True(t, hi.Equal(dec(tc.hi)), "balance %s hi %s", tc.balance, hi)
	}
}
