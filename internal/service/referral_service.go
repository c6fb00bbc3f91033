package service

import (
	"context"
	"errors"

	"grabwallet/internal/models"
	"grabwallet/internal/repository"
)

// maxSponsorWalk bounds the acyclicity check on very deep trees.
const maxSponsorWalk = 10000

// ReferralStore reads the sponsor graph.
type ReferralStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	ListBySponsors(ctx context.Context, sponsorIDs []string) ([]models.User, error)
}

// Member is a downline user and its distance from the root (1 = direct referral).
type Member struct {
	User  models.User `json:"user"`
	Level int         `json:"level"`
}

// ReferralService walks the referral tree in both directions. Every walk keeps a
// visited set so a corrupted graph with cycles still terminates.
type ReferralService struct {
	users       ReferralStore
	maxDownline int
}

func NewReferralService(users ReferralStore, maxDownline int) *ReferralService {
	return &ReferralService{users: users, maxDownline: maxDownline}
}

// Downline returns referrals of rootID level by level up to maxDepth. The result is
// capped at the configured downline size; truncated reports whether the cap was hit.
func (s *ReferralService) Downline(ctx context.Context, rootID string, maxDepth int) (members []Member, truncated bool, err error) {
	visited := map[string]bool{rootID: true}
	frontier := []string{rootID}
	for level := 1; level <= maxDepth && len(frontier) > 0; level++ {
		children, err := s.users.ListBySponsors(ctx, frontier)
		if err != nil {
			return nil, false, err
		}
		next := make([]string, 0, len(children))
		for _, c := range children {
			if visited[c.UserID] {
				continue
			}
			visited[c.UserID] = true
			members = append(members, Member{User: c, Level: level})
			next = append(next, c.UserID)
			if s.maxDownline > 0 && len(members) >= s.maxDownline {
				return members, true, nil
			}
		}
		frontier = next
	}
	return members, false, nil
}

// Upline returns up to maxDepth sponsors of userID, nearest first. The walk stops
// at a root user, a sponsor id that no longer resolves, or a repeated user.
func (s *ReferralService) Upline(ctx context.Context, userID string, maxDepth int) ([]models.User, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	visited := map[string]bool{userID: true}
	var out []models.User
	next := u.Sponsor()
	for len(out) < maxDepth && next != "" && !visited[next] {
		visited[next] = true
		sponsor, err := s.users.GetByUserID(ctx, next)
		if errors.Is(err, repository.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *sponsor)
		next = sponsor.Sponsor()
	}
	return out, nil
}

// CreatesCycle reports whether making sponsorID the sponsor of userID would put
// userID among its own ancestors.
func (s *ReferralService) CreatesCycle(ctx context.Context, userID, sponsorID string) (bool, error) {
	visited := map[string]bool{}
	next := sponsorID
	for steps := 0; next != "" && steps < maxSponsorWalk; steps++ {
		if next == userID {
			return true, nil
		}
		if visited[next] {
			return false, nil
		}
		visited[next] = true
		u, err := s.users.GetByUserID(ctx, next)
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		next = u.Sponsor()
	}
	return false, nil
}
