package service

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ReferralCounter interface {
	QualifiedReferralCounts(ctx context.Context, threshold decimal.Decimal) (map[string]int, error)
}

type ShareUpdater interface {
	UpdateShares(ctx context.Context, userID string, count int) error
}

// ShareCountService refreshes the stored share tallies shown to users.
type ShareCountService struct {
	counter   ReferralCounter
	shares    ShareUpdater
	threshold decimal.Decimal
	log       *logrus.Entry
}

func NewShareCountService(counter ReferralCounter, shares ShareUpdater, threshold decimal.Decimal, log *logrus.Logger) *ShareCountService {
	return &ShareCountService{
		counter:   counter,
		shares:    shares,
		threshold: threshold,
		log:       log.WithField("component", "share_count"),
	}
}

// Refresh recomputes every sponsor's share count and returns how many were written.
func (s *ShareCountService) Refresh(ctx context.Context) (int, error) {
	counts, err := s.counter.QualifiedReferralCounts(ctx, s.threshold)
	if err != nil {
		return 0, err
	}
	updated := 0
	for userID, n := range counts {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if err := s.shares.UpdateShares(ctx, userID, n); err != nil {
			s.log.WithError(err).WithField("user_id", userID).Warn("share count not updated")
			continue
		}
		updated++
	}
	return updated, nil
}
