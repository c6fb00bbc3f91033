package service

import (
	"context"
	"errors"
	"strings"

	"grabwallet/config"
	"grabwallet/internal/auth"
	"grabwallet/internal/domain"
	"grabwallet/internal/models"
	"grabwallet/internal/repository"

	"github.com/dchest/uniuri"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var userIDChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789")

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByUserID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type ShareCountCreator interface {
	GetOrCreate(ctx context.Context, userID string) (*models.ShareCount, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Mobile   string
	Password string
	SharedID string
}

// Session is a signed-in user with its tokens.
type Session struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	Eligibility  *Eligibility `json:"eligibility,omitempty"`
}

type AuthService struct {
	cfg       *config.Config
	users     UserStore
	shares    ShareCountCreator
	ledger    *LedgerService
	referrals *ReferralService
	plans     *PlanService
	newUserID func() string
	log       *logrus.Entry
}

func NewAuthService(
	cfg *config.Config,
	users UserStore,
	shares ShareCountCreator,
	ledger *LedgerService,
	referrals *ReferralService,
	plans *PlanService,
	log *logrus.Logger,
) *AuthService {
	return &AuthService{
		cfg:       cfg,
		users:     users,
		shares:    shares,
		ledger:    ledger,
		referrals: referrals,
		plans:     plans,
		newUserID: func() string { return uniuri.NewLenChars(domain.UserIDLength, userIDChars) },
		log:       log.WithField("component", "auth"),
	}
}

// Register creates a user under an optional sponsor, opens its ledger and share
// counter, and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	in.SharedID = strings.TrimSpace(in.SharedID)

	if err := s.ensureFree(ctx, in.Email, in.Username); err != nil {
		return nil, err
	}
	if in.SharedID != "" {
		if _, err := s.users.GetByUserID(ctx, in.SharedID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrSponsorNotFound
			}
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
	}
	if in.SharedID != "" {
		sponsor := in.SharedID
		u.SharedID = &sponsor
	}
	if err := s.createWithFreshID(ctx, u); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Append(ctx, Entry{
		UserID:    u.UserID,
		Credit:    decimal.Zero,
		Type:      domain.TxOpeningAmount,
		Reference: "account opened",
	}); err != nil {
		return nil, err
	}
	if _, err := s.shares.GetOrCreate(ctx, u.UserID); err != nil {
		return nil, domain.Internal("could not create share counter", err)
	}
	if in.SharedID != "" {
		if _, err := s.shares.GetOrCreate(ctx, in.SharedID); err != nil {
			return nil, domain.Internal("could not create sponsor share counter", err)
		}
	}

	s.log.WithFields(logrus.Fields{"user_id": u.UserID, "shared_id": in.SharedID}).Info("user registered")
	return s.session(ctx, u, false)
}

// createWithFreshID picks a random user id, rejecting ids that already exist or
// that would sit among the sponsor's ancestors.
func (s *AuthService) createWithFreshID(ctx context.Context, u *models.User) error {
	for i := 0; i < 10; i++ {
		id := s.newUserID()
		if _, err := s.users.GetByUserID(ctx, id); err == nil {
			continue
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		// A fresh id has no downline. This only fires when a dangling sponsor
		// pointer upline still names a freed id, and it guards a later re-sponsor path.
		if sponsor := u.Sponsor(); sponsor != "" {
			cyclic, err := s.referrals.CreatesCycle(ctx, id, sponsor)
			if err != nil {
				return err
			}
			if cyclic {
				return ErrSponsorCycle
			}
		}
		u.UserID = id
		err := s.users.Create(ctx, u)
		if errors.Is(err, repository.ErrDuplicate) {
			if _, lookupErr := s.users.GetByUserID(ctx, id); lookupErr == nil {
				continue
			}
			return s.ensureFree(ctx, u.Email, u.Username)
		}
		return err
	}
	return ErrUserIDExhausted
}

func (s *AuthService) ensureFree(ctx context.Context, email, username string) error {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return ErrUsernameExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	return nil
}

// Login checks credentials and recomputes the active plan.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCreds
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCreds
	}
	return s.session(ctx, u, !u.IsAdmin())
}

func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	userID, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.session(ctx, u, false)
}

// Me returns the user with a fresh plan evaluation.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, *Eligibility, error) {
	u, err := s.users.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	e, err := s.plans.Evaluate(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return u, e, nil
}

func (s *AuthService) session(ctx context.Context, u *models.User, withPlan bool) (*Session, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.UserID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.UserID)
	if err != nil {
		return nil, err
	}
	sess := &Session{User: u, AccessToken: access, RefreshToken: refresh}
	if withPlan {
		if sess.Eligibility, err = s.plans.Evaluate(ctx, u.UserID); err != nil {
			return nil, err
		}
	}
	return sess, nil
}
