package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"grabwallet/config"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"
	"grabwallet/pkg/lock"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessExpiry:  time.Minute,
			RefreshExpiry: time.Hour,
			Issuer:        "test",
		},
		Ledger: config.LedgerConfig{
			Timezone:             "UTC",
			RetryMaxAttempts:     5,
			RetryInitialInterval: time.Millisecond,
			RetryMaxInterval:     2 * time.Millisecond,
			LockTimeout:          2 * time.Second,
		},
		Grab: config.GrabConfig{
			HighBandFloor: dec("500"),
			LowBandWindow: dec("0.2"),
		},
		Referral: config.ReferralConfig{
			MaxDepth:              3,
			MaxDownline:           1000,
			ShareBalanceThreshold: dec("100"),
			DefaultLevelRates:     [3]decimal.Decimal{dec("16"), dec("8"), dec("4")},
		},
		Withdrawal: config.WithdrawalConfig{
			RetentionRate: dec("0.93"),
			MinProfit:     dec("50"),
		},
		Deposit: config.DepositConfig{
			BonusRate:    dec("0.05"),
			BonusMinimum: dec("100"),
		},
	}
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memLedger enforces the same version check as the SQL store.
type memLedger struct {
	mu        sync.Mutex
	accounts  map[string]models.Account
	entries   []models.WalletTransaction
	conflicts int              // next Apply calls that report a version conflict
	failFor   map[string]error // users whose appends always fail
	applies   int
}

func newMemLedger() *memLedger {
	return &memLedger{accounts: map[string]models.Account{}, failFor: map[string]error{}}
}

func (m *memLedger) GetAccount(_ context.Context, userID string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memLedger) Apply(_ context.Context, next *models.Account, entry *models.WalletTransaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applies++
	if err, ok := m.failFor[next.UserID]; ok {
		return err
	}
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	if m.accounts[next.UserID].Version != next.Version-1 {
		return repository.ErrVersionConflict
	}
	m.accounts[next.UserID] = *next
	e := *entry
	e.ID = uint(len(m.entries) + 1)
	m.entries = append(m.entries, e)
	return nil
}

func (m *memLedger) Latest(_ context.Context, userID string) (*models.WalletTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			e := m.entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memLedger) History(_ context.Context, userID string, page, limit int) ([]models.WalletTransaction, int64, error) {
	list := m.entriesOf(userID)
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	total := int64(len(list))
	start := (page - 1) * limit
	if start >= len(list) {
		return nil, total, nil
	}
	return list[start:min(start+limit, len(list))], total, nil
}

func (m *memLedger) HasCredit(_ context.Context, userID, txType string) (bool, error) {
	entries := m.entriesOf(userID)
	reversed := map[string]bool{}
	for _, e := range entries {
		if e.TransactionType == domain.TxReversal {
			reversed[e.ReferenceID] = true
		}
	}
	for _, e := range entries {
		if e.TransactionType == txType && e.Credit.IsPositive() && !reversed[e.TransactionID] {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedger) entriesOf(userID string) []models.WalletTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.WalletTransaction
	for _, e := range m.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memLedger) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *memLedger) balance(userID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userID].Balance
}

func (m *memLedger) profit(userID string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[userID].TotalProfit
}

// memUsers is the user store and referral graph.
type memUsers struct {
	mu     sync.Mutex
	users  map[string]models.User
	ledger *memLedger
}

func newMemUsers(ledger *memLedger) *memUsers {
	return &memUsers{users: map[string]models.User{}, ledger: ledger}
}

func (m *memUsers) add(userID, sponsor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{
		ID:       uint(len(m.users) + 1),
		UserID:   userID,
		Username: strings.ToLower(userID),
		Email:    strings.ToLower(userID) + "@example.com",
		Role:     "USER",
	}
	if sponsor != "" {
		s := sponsor
		u.SharedID = &s
	}
	m.users[userID] = u
}

func (m *memUsers) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.UserID == u.UserID || other.Email == u.Email || other.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = uint(len(m.users) + 1)
	m.users[u.UserID] = *u
	return nil
}

func (m *memUsers) find(match func(models.User) bool) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByUserID(_ context.Context, userID string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.UserID == userID })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Email == email })
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return m.find(func(u models.User) bool { return u.Username == username })
}

func (m *memUsers) ListBySponsors(_ context.Context, sponsorIDs []string) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := map[string]bool{}
	for _, id := range sponsorIDs {
		want[id] = true
	}
	var out []models.User
	for _, u := range m.users {
		if want[u.Sponsor()] {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) CountQualifiedReferrals(ctx context.Context, sponsorID string, threshold decimal.Decimal) (int64, error) {
	children, _ := m.ListBySponsors(ctx, []string{sponsorID})
	var n int64
	for _, c := range children {
		if m.ledger.balance(c.UserID).GreaterThan(threshold) {
			n++
		}
	}
	return n, nil
}

func (m *memUsers) QualifiedReferralCounts(ctx context.Context, threshold decimal.Decimal) (map[string]int, error) {
	m.mu.Lock()
	sponsors := map[string]bool{}
	for _, u := range m.users {
		if s := u.Sponsor(); s != "" {
			sponsors[s] = true
		}
	}
	m.mu.Unlock()
	out := map[string]int{}
	for s := range sponsors {
		n, _ := m.CountQualifiedReferrals(ctx, s, threshold)
		out[s] = int(n)
	}
	return out, nil
}

type memPlans struct{ plans []models.Plan }

func (m *memPlans) List(context.Context) ([]models.Plan, error) { return m.plans, nil }

type memShares struct {
	mu      sync.Mutex
	rows    map[string]models.ShareCount
	saveErr error
	saves   int
}

func newMemShares() *memShares { return &memShares{rows: map[string]models.ShareCount{}} }

func (m *memShares) GetOrCreate(_ context.Context, userID string) (*models.ShareCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.rows[userID]
	if !ok {
		sc = models.ShareCount{UserID: userID}
		m.rows[userID] = sc
	}
	return &sc, nil
}

func (m *memShares) SaveGrabState(_ context.Context, sc *models.ShareCount) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	row := m.rows[sc.UserID]
	row.UserID = sc.UserID
	row.CallDate = sc.CallDate
	row.GrabCount = sc.GrabCount
	row.GrabCountLeft = sc.GrabCountLeft
	row.DailyInitialBalance = sc.DailyInitialBalance
	m.rows[sc.UserID] = row
	return nil
}

func (m *memShares) UpdateShares(_ context.Context, userID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row := m.rows[userID]
	row.UserID = userID
	row.ShareCount = count
	row.TotalShareCount = max(row.TotalShareCount, count)
	m.rows[userID] = row
	return nil
}

func (m *memShares) get(userID string) models.ShareCount {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[userID]
}

type memProducts struct{ products []models.Product }

func (m *memProducts) InPriceRange(_ context.Context, lo, hi decimal.Decimal) ([]models.Product, error) {
	var out []models.Product
	for _, p := range m.products {
		if p.Price.GreaterThanOrEqual(lo) && p.Price.LessThanOrEqual(hi) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memReports struct {
	mu   sync.Mutex
	list []models.CustomerProductReport
	err  error
}

func (m *memReports) Create(_ context.Context, rep *models.CustomerProductReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.list = append(m.list, *rep)
	return nil
}

type memLevels struct{ level *models.LevelSetting }

func (m *memLevels) Get(context.Context) (*models.LevelSetting, error) {
	if m.level == nil {
		return nil, repository.ErrNotFound
	}
	l := *m.level
	return &l, nil
}

func (m *memLevels) Save(_ context.Context, l *models.LevelSetting) error {
	saved := *l
	m.level = &saved
	return nil
}

type memSettings map[string]string

func (m memSettings) Get(_ context.Context, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

type memWithdrawals struct {
	mu        sync.Mutex
	rows      map[string]models.Withdrawal
	createErr error
}

func newMemWithdrawals() *memWithdrawals {
	return &memWithdrawals{rows: map[string]models.Withdrawal{}}
}

func (m *memWithdrawals) Create(_ context.Context, w *models.Withdrawal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	w.ID = uint(len(m.rows) + 1)
	m.rows[w.RequestID] = *w
	return nil
}

func (m *memWithdrawals) GetByRequestID(_ context.Context, requestID string) (*models.Withdrawal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.rows[requestID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &w, nil
}

func (m *memWithdrawals) UpdateStatus(_ context.Context, w *models.Withdrawal, from string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[w.RequestID]
	if !ok || cur.Status != from {
		return repository.ErrVersionConflict
	}
	m.rows[w.RequestID] = *w
	return nil
}

func (m *memWithdrawals) ListByUser(_ context.Context, userID string, _, _ int) ([]models.Withdrawal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range m.rows {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memWithdrawals) List(_ context.Context, status string, _, _ int) ([]models.Withdrawal, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Withdrawal
	for _, w := range m.rows {
		if status == "" || w.Status == status {
			out = append(out, w)
		}
	}
	return out, int64(len(out)), nil
}

// testEnv wires every service over the in-memory stores.
type testEnv struct {
	cfg         *config.Config
	log         *logrus.Logger
	store       *memLedger
	users       *memUsers
	plans       *memPlans
	shares      *memShares
	products    *memProducts
	reports     *memReports
	levels      *memLevels
	settings    memSettings
	withdrawals *memWithdrawals

	ledger     *LedgerService
	referrals  *ReferralService
	planSvc    *PlanService
	grab       *GrabService
	withdrawal *WithdrawalService
	deposit    *DepositService
	auth       *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	log := quietLogger()
	e := &testEnv{
		cfg:         cfg,
		log:         log,
		store:       newMemLedger(),
		plans:       &memPlans{},
		shares:      newMemShares(),
		products:    &memProducts{},
		reports:     &memReports{},
		levels:      &memLevels{},
		settings:    memSettings{},
		withdrawals: newMemWithdrawals(),
	}
	e.users = newMemUsers(e.store)
	e.ledger = NewLedgerService(e.store, lock.NewKeyedMutex(), cfg.Ledger, log)
	e.referrals = NewReferralService(e.users, cfg.Referral.MaxDownline)
	e.planSvc = NewPlanService(e.plans, e.ledger, e.users, cfg.Referral.ShareBalanceThreshold)
	e.grab = NewGrabService(e.ledger, e.planSvc, e.referrals, e.shares, e.products, e.reports, e.levels, cfg, log)
	e.grab.pick = func(int) int { return 0 }
	e.withdrawal = NewWithdrawalService(e.ledger, e.withdrawals, e.users, e.settings, cfg.Withdrawal, log)
	e.deposit = NewDepositService(e.ledger, e.users, e.settings, cfg.Deposit, log)
	e.auth = NewAuthService(cfg, e.users, e.shares, e.ledger, e.referrals, e.planSvc, log)
	return e
}

// fund appends a deposit-like credit without bonus rules.
func (e *testEnv) fund(t *testing.T, userID, amount string) {
	t.Helper()
	if _, err := e.ledger.Append(context.Background(), Entry{
		UserID: userID,
		Credit: dec(amount),
		Type:   "Credit Amount",
	}); err != nil {
		t.Fatalf("fund %s: %v", userID, err)
	}
}

// earn appends profit-bearing credit.
func (e *testEnv) earn(t *testing.T, userID, amount string) {
	t.Helper()
	if _, err := e.ledger.Append(context.Background(), Entry{
		UserID:      userID,
		Credit:      dec(amount),
		ProfitDelta: dec(amount),
		Type:        "Bonus",
	}); err != nil {
		t.Fatalf("earn %s: %v", userID, err)
	}
}

var errBoom = errors.New("boom")
