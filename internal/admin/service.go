package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/payments"
	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/internal/users"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/pagination"
)

type userStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	CountByFlags(ctx context.Context) (total, staff, superusers int64, err error)
}

type usageStore interface {
	ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.UsageLimit, error)
	CountUnlimited(ctx context.Context) (int64, error)
}

type usageAdmin interface {
	Status(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	GrantUnlimited(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
	Reset(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	AddFree(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
}

type resultStats interface {
	Aggregate(ctx context.Context) (results.Aggregate, error)
}

type paymentAdmin interface {
	SetStatus(ctx context.Context, paymentID string, status enums.PaymentStatus) (*payments.PaymentDTO, error)
	Totals(ctx context.Context) (payments.Totals, error)
}

// ServiceParams bundles the admin service dependencies.
type ServiceParams struct {
	Users     userStore
	UsageRows usageStore
	Usage     usageAdmin
	Results   resultStats
	Payments  paymentAdmin
	Logger    *logger.Logger
}

// Service backs the staff-only management routes.
type Service struct {
	users     userStore
	usageRows usageStore
	usage     usageAdmin
	results   resultStats
	payments  paymentAdmin
	logg      *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	switch {
	case params.Users == nil:
		return nil, errors.New("user store required")
	case params.UsageRows == nil:
		return nil, errors.New("usage store required")
	case params.Usage == nil:
		return nil, errors.New("usage service required")
	case params.Results == nil:
		return nil, errors.New("result stats required")
	case params.Payments == nil:
		return nil, errors.New("payment service required")
	case params.Logger == nil:
		return nil, errors.New("logger required")
	}
	return &Service{
		users:     params.Users,
		usageRows: params.UsageRows,
		usage:     params.Usage,
		results:   params.Results,
		payments:  params.Payments,
		logg:      params.Logger,
	}, nil
}

// UserSummary is one row of the staff user listing.
type UserSummary struct {
	User  *users.UserDTO `json:"user"`
	Usage *usage.Status  `json:"usage"`
}

// UserPage is a page of the staff user listing.
type UserPage struct {
	Items  []UserSummary `json:"items"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// Stats summarizes the whole service.
type Stats struct {
	Users        UserCounts        `json:"users"`
	Calculations results.Aggregate `json:"calculations"`
	Payments     PaymentTotals     `json:"payments"`
}

type UserCounts struct {
	Total      int64 `json:"total"`
	Staff      int64 `json:"staff"`
	Superusers int64 `json:"superusers"`
	Unlimited  int64 `json:"unlimited"`
}

type PaymentTotals struct {
	Completed int64           `json:"completed"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// ListUsers returns users newest first with their usage.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) (*UserPage, error) {
	limit = pagination.NormalizeLimit(limit)
	if offset < 0 {
		offset = 0
	}
	rows, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, u := range rows {
		ids = append(ids, u.ID)
	}
	limits, err := s.usageRows.ListByUsers(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load usage")
	}

	page := &UserPage{Items: make([]UserSummary, 0, len(rows)), Limit: limit, Offset: offset}
	for i := range rows {
		u := &rows[i]
		var lim *models.UsageLimit
		if row, ok := limits[u.ID]; ok {
			lim = &row
		}
		page.Items = append(page.Items, UserSummary{User: users.FromModel(u), Usage: usage.StatusOf(u, lim)})
	}
	return page, nil
}

// GrantUnlimited gives a user unlimited access.
func (s *Service) GrantUnlimited(ctx context.Context, userID uuid.UUID) (*usage.Status, error) {
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.usage.GrantUnlimited(ctx, nil, userID); err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "unlimited access granted by staff")
	return s.usage.Status(ctx, userID)
}

// ResetCalculations sets a user's counter back to zero.
func (s *Service) ResetCalculations(ctx context.Context, userID uuid.UUID) (*usage.Status, error) {
	status, err := s.usage.Reset(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "calculations reset by staff")
	return status, nil
}

// AddFreeCalculations credits a user another block of free calculations.
func (s *Service) AddFreeCalculations(ctx context.Context, userID uuid.UUID) (*usage.Status, error) {
	status, err := s.usage.AddFree(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), fmt.Sprintf("%d free calculations added by staff", usage.FreeCalculations))
	return status, nil
}

// SetPaymentStatus settles a payment by hand.
func (s *Service) SetPaymentStatus(ctx context.Context, paymentID string, status enums.PaymentStatus) (*payments.PaymentDTO, error) {
	return s.payments.SetStatus(ctx, paymentID, status)
}

// Stats gathers the dashboard figures.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	total, staff, superusers, err := s.users.CountByFlags(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}
	unlimited, err := s.usageRows.CountUnlimited(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count unlimited users")
	}
	agg, err := s.results.Aggregate(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate results")
	}
	totals, err := s.payments.Totals(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{
		Users:        UserCounts{Total: total, Staff: staff, Superusers: superusers, Unlimited: unlimited},
		Calculations: agg,
		Payments:     PaymentTotals{Completed: totals.Completed, Revenue: totals.Revenue},
	}, nil
}

func (s *Service) ensureUser(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return nil
}
