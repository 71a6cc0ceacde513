package usage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/users"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

// FreeCalculations is the number of full calculations allowed before a
// payment is required.
const FreeCalculations = 5

// Remaining is either a count of free calculations or "unlimited".
type Remaining struct {
	Unlimited bool
	Count     int
}

// MarshalJSON renders unlimited as the string "unlimited".
func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return json.Marshal("unlimited")
	}
	return json.Marshal(r.Count)
}

// Status describes the caller's free-tier position.
type Status struct {
	Remaining                  Remaining  `json:"remaining"`
	Used                       int        `json:"used"`
	Limit                      int        `json:"limit"`
	IsAdmin                    bool       `json:"is_admin"`
	UnlimitedAccess            bool       `json:"unlimited_access"`
	UnlimitedAccessPurchasedAt *time.Time `json:"unlimited_access_purchased_at,omitempty"`
}

// CanCalculate reports whether another full calculation is allowed.
func (s Status) CanCalculate() bool {
	return s.Remaining.Unlimited || s.Remaining.Count > 0
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service implements the free usage gate.
type Service struct {
	repo  *Repository
	users userLookup
	now   func() time.Time
}

// ServiceParams bundles the usage service dependencies.
type ServiceParams struct {
	Repo  *Repository
	Users userLookup
	Now   func() time.Time
}

// NewService builds the usage gate.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("usage repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: params.Repo, users: params.Users, now: now}, nil
}

// Status returns the free-tier position for the user.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*Status, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	limit, err := s.repo.GetOrCreate(ctx, userID, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
	}
	return buildStatus(user, limit), nil
}

// CanCalculate reports whether the user may run another full calculation.
func (s *Service) CanCalculate(ctx context.Context, userID uuid.UUID) (bool, error) {
	status, err := s.Status(ctx, userID)
	if err != nil {
		return false, err
	}
	return status.CanCalculate(), nil
}

// Consume records one full calculation. Privileged and unlimited accounts are
// never counted. When tx is non-nil the update joins that transaction so the
// gate and the insert it guards commit together.
func (s *Service) Consume(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*Status, error) {
	repo := s.repo.WithTx(tx)
	user, err := s.loadUserWith(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	limit, err := repo.GetOrCreate(ctx, userID, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
	}
	if user.IsPrivileged() || limit.UnlimitedAccess {
		return buildStatus(user, limit), nil
	}

	ok, err := repo.TryIncrement(ctx, userID, FreeCalculations, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment usage")
	}
	if !ok {
		// The row may have been unlocked after it was read.
		current, err := repo.GetOrCreate(ctx, userID, now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
		}
		if current.UnlimitedAccess {
			return buildStatus(user, current), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodePaymentRequired, "free calculations exhausted").
			WithDetails(map[string]any{"limit": FreeCalculations, "used": current.FullCalculationsUsed})
	}
	limit.FullCalculationsUsed++
	return buildStatus(user, limit), nil
}

// GrantUnlimited gives the user unlimited access. Repeated grants keep the
// original purchase time.
func (s *Service) GrantUnlimited(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	repo := s.repo.WithTx(tx)
	now := s.now()
	if _, err := repo.GetOrCreate(ctx, userID, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
	}
	if err := repo.GrantUnlimited(ctx, userID, now); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant unlimited access")
	}
	return nil
}

// Reset sets the counter back to zero.
func (s *Service) Reset(ctx context.Context, userID uuid.UUID) (*Status, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := s.repo.GetOrCreate(ctx, userID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
	}
	if err := s.repo.Reset(ctx, userID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset usage")
	}
	return s.Status(ctx, userID)
}

// AddFree hands back another block of free calculations.
func (s *Service) AddFree(ctx context.Context, userID uuid.UUID) (*Status, error) {
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	now := s.now()
	if _, err := s.repo.GetOrCreate(ctx, userID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage limit")
	}
	if err := s.repo.Credit(ctx, userID, FreeCalculations, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "credit usage")
	}
	return s.Status(ctx, userID)
}

func (s *Service) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.loadUserWith(ctx, nil, userID)
}

func (s *Service) loadUserWith(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*models.User, error) {
	lookup := s.users
	if tx != nil {
		lookup = users.NewRepository(tx)
	}
	user, err := lookup.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func buildStatus(user *models.User, limit *models.UsageLimit) *Status {
	status := &Status{
		Used:                       limit.FullCalculationsUsed,
		Limit:                      FreeCalculations,
		IsAdmin:                    user.IsPrivileged(),
		UnlimitedAccess:            limit.UnlimitedAccess,
		UnlimitedAccessPurchasedAt: limit.UnlimitedAccessPurchasedAt,
	}
	if status.IsAdmin || limit.UnlimitedAccess {
		status.Remaining = Remaining{Unlimited: true}
		return status
	}
	remaining := FreeCalculations - limit.FullCalculationsUsed
	if remaining < 0 {
		remaining = 0
	}
	status.Remaining = Remaining{Count: remaining}
	return status
}

// StatusOf derives a status from already loaded rows. A nil limit is treated
// as an account that has not calculated yet.
func StatusOf(user *models.User, limit *models.UsageLimit) *Status {
	if limit == nil {
		limit = &models.UsageLimit{UserID: user.ID}
	}
	return buildStatus(user, limit)
}
