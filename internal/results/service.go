package results

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/roi"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/metrics"
	"github.com/sunkaracharan/roifinal/pkg/pagination"
)

const recentLimit = 5

// Service exposes calculation, persistence and history reads.
type Service interface {
	Preview(ctx context.Context, in roi.Inputs) (*PreviewResponse, error)
	Save(ctx context.Context, userID uuid.UUID, mode enums.CalculationMode, in roi.Inputs) (*SaveResponse, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[ResultDTO], error)
	Get(ctx context.Context, userID, id uuid.UUID) (*ResultDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)
	Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type usageGate interface {
	Status(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	Consume(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*usage.Status, error)
}

// ServiceParams bundles the results service dependencies.
type ServiceParams struct {
	DB      txRunner
	Repo    *Repository
	Usage   usageGate
	Logger  *logger.Logger
	Metrics *metrics.DomainMetrics
	Now     func() time.Time
}

type service struct {
	db      txRunner
	repo    *Repository
	usage   usageGate
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

// NewService builds the results service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("results repository required")
	}
	if params.Usage == nil {
		return nil, fmt.Errorf("usage gate required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:      params.DB,
		repo:    params.Repo,
		usage:   params.Usage,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

func (s *service) Preview(ctx context.Context, in roi.Inputs) (*PreviewResponse, error) {
	in = roi.Normalize(enums.CalculationModeQuick, in)
	if err := roi.Validate(enums.CalculationModeQuick, in); err != nil {
		return nil, err
	}
	return &PreviewResponse{Inputs: in, Results: roi.Calculate(in)}, nil
}

func (s *service) Save(ctx context.Context, userID uuid.UUID, mode enums.CalculationMode, in roi.Inputs) (*SaveResponse, error) {
	in = roi.Normalize(mode, in)
	if err := roi.Validate(mode, in); err != nil {
		return nil, err
	}
	res := roi.Calculate(in)
	row := toModel(userID, mode, in, res, s.now())

	var status *usage.Status
	if mode == enums.CalculationModeQuick {
		if err := s.repo.Create(ctx, row); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save calculation")
		}
		st, err := s.usage.Status(ctx, userID)
		if err != nil {
			return nil, err
		}
		status = st
	} else {
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			st, err := s.usage.Consume(ctx, tx, userID)
			if err != nil {
				return err
			}
			status = st
			if err := s.repo.WithTx(tx).Create(ctx, row); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save calculation")
			}
			return nil
		})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodePaymentRequired) {
				s.metrics.IncGateDenial()
				s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "full calculation refused: free usage exhausted")
			}
			return nil, err
		}
	}

	s.metrics.IncCalculation(mode.String())
	return &SaveResponse{
		Result:    FromModel(row),
		Remaining: status.Remaining,
		IsAdmin:   status.IsAdmin,
	}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[ResultDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, userID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list calculations")
	}
	return pagination.Build(rows, params.Limit, FromModel, func(m *models.ROIResult) pagination.Cursor {
		return pagination.Cursor{Timestamp: m.Timestamp, ID: m.ID}
	}), nil
}

func (s *service) Get(ctx context.Context, userID, id uuid.UUID) (*ResultDTO, error) {
	row, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "calculation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load calculation")
	}
	dto := FromModel(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete calculation")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "calculation not found")
	}
	return nil
}

func (s *service) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.DeleteAll(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete calculations")
	}
	return n, nil
}

func (s *service) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	status, err := s.usage.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	recent, err := s.repo.List(ctx, userID, nil, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recent calculations")
	}
	counts, err := s.repo.CountByMode(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count calculations")
	}
	best, err := s.repo.Best(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load best calculation")
	}

	out := &Dashboard{
		Recent:          make([]ResultDTO, 0, len(recent)),
		Counts:          counts,
		Usage:           status,
		IsAdmin:         status.IsAdmin,
		UnlimitedAccess: status.UnlimitedAccess,
		GeneratedAt:     s.now(),
	}
	for i := range recent {
		out.Recent = append(out.Recent, FromModel(&recent[i]))
	}
	if best != nil {
		dto := FromModel(best)
		out.Best = &dto
	}
	return out, nil
}
