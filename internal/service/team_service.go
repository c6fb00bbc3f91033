package service

import (
	"context"
	"time"

	"grabwallet/internal/repository"

	"github.com/shopspring/decimal"
)

type TeamStore interface {
	SumBalances(ctx context.Context, userIDs []string) (decimal.Decimal, error)
	Totals(ctx context.Context, userIDs []string, from, to time.Time) (*repository.TeamTotals, error)
	FirstDepositors(ctx context.Context, userIDs []string, from, to time.Time) (int64, error)
}

// TeamStats summarizes a user's downline over a date range.
type TeamStats struct {
	From                time.Time       `json:"start_date"`
	To                  time.Time       `json:"end_date"`
	TeamSize            int             `json:"teamSize"`
	FirstLevelMembers   int             `json:"firstLevelMembers"`
	Levels              map[int]int     `json:"levels"`
	TeamBalance         decimal.Decimal `json:"teamBalance"`
	TeamCredit          decimal.Decimal `json:"teamCredit"`
	TeamDebit           decimal.Decimal `json:"teamDebit"`
	TeamWithdraw        decimal.Decimal `json:"teamWithdraw"`
	FirstTimeDepositors int64           `json:"firstTimeDepositors"`
	TeamOrderCommission decimal.Decimal `json:"teamOrderCommission"`
	Truncated           bool            `json:"truncated"`
}

type TeamService struct {
	referrals *ReferralService
	store     TeamStore
	maxDepth  int
	loc       *time.Location
}

func NewTeamService(referrals *ReferralService, store TeamStore, maxDepth int, loc *time.Location) *TeamService {
	return &TeamService{referrals: referrals, store: store, maxDepth: maxDepth, loc: loc}
}

// DayRange turns two calendar dates into [start of from, start of the day after to).
// Zero dates default to today.
func (s *TeamService) DayRange(from, to time.Time) (time.Time, time.Time, error) {
	today := StartOfDay(time.Now(), s.loc)
	if from.IsZero() {
		from = today
	}
	if to.IsZero() {
		to = today
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, s.loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, s.loc)
	if end.Before(start) {
		return time.Time{}, time.Time{}, ErrInvalidDateRange
	}
	return start, end.AddDate(0, 0, 1), nil
}

// Stats aggregates the downline of userID for the calendar days from..to inclusive.
func (s *TeamService) Stats(ctx context.Context, userID string, from, to time.Time) (*TeamStats, error) {
	start, end, err := s.DayRange(from, to)
	if err != nil {
		return nil, err
	}
	members, truncated, err := s.referrals.Downline(ctx, userID, s.maxDepth)
	if err != nil {
		return nil, err
	}

	stats := &TeamStats{
		From:      start,
		To:        end.AddDate(0, 0, -1),
		TeamSize:  len(members),
		Levels:    map[int]int{},
		Truncated: truncated,
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.User.UserID)
		stats.Levels[m.Level]++
	}
	stats.FirstLevelMembers = stats.Levels[1]

	if stats.TeamBalance, err = s.store.SumBalances(ctx, ids); err != nil {
		return nil, err
	}
	totals, err := s.store.Totals(ctx, ids, start, end)
	if err != nil {
		return nil, err
	}
	stats.TeamCredit = totals.Credit
	stats.TeamDebit = totals.Debit
	stats.TeamWithdraw = totals.Withdrawn.Sub(totals.WithdrawRefund)
	stats.TeamOrderCommission = totals.OrderCommission
	if stats.FirstTimeDepositors, err = s.store.FirstDepositors(ctx, ids, start, end); err != nil {
		return nil, err
	}
	return stats, nil
}

// Members returns the downline users at one level.
func (s *TeamService) Members(ctx context.Context, userID string, level int) ([]Member, error) {
	if level < 1 || level > s.maxDepth {
		return []Member{}, nil
	}
	members, _, err := s.referrals.Downline(ctx, userID, level)
	if err != nil {
		return nil, err
	}
	out := []Member{}
	for _, m := range members {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out, nil
}
