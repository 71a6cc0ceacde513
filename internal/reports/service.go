package reports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

const contentTypePDF = "application/pdf"

type resultReader interface {
	Get(ctx context.Context, userID, id uuid.UUID) (*results.ResultDTO, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Archiver stores a copy of a rendered report.
type Archiver interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// Document is a rendered report ready for download.
type Document struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ServiceParams bundles the report service dependencies. Archiver is
// optional.
type ServiceParams struct {
	Results  resultReader
	Users    userLookup
	Archiver Archiver
	Logger   *logger.Logger
	Now      func() time.Time
}

type Service struct {
	results  resultReader
	users    userLookup
	archiver Archiver
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Results == nil {
		return nil, errors.New("results reader required")
	}
	if params.Users == nil {
		return nil, errors.New("user lookup required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		results:  params.Results,
		users:    params.Users,
		archiver: params.Archiver,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// Export renders the caller's saved result as a PDF.
func (s *Service) Export(ctx context.Context, userID, resultID uuid.UUID) (*Document, error) {
	result, err := s.results.Get(ctx, userID, resultID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}

	data, err := Render(Report{Result: *result, Username: user.Username, GeneratedAt: s.now()})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render report")
	}

	if s.archiver != nil {
		key := ArchiveKey(userID, resultID)
		if err := s.archiver.Put(ctx, key, data, contentTypePDF); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "archive_key", key), fmt.Sprintf("report archive failed: %v", err))
		}
	}

	return &Document{
		FileName:    FileName(user.Username, result.Timestamp),
		ContentType: contentTypePDF,
		Data:        data,
	}, nil
}

// ArchiveKey is the object key a report is archived under.
func ArchiveKey(userID, resultID uuid.UUID) string {
	return fmt.Sprintf("reports/%s/%s.pdf", userID, resultID)
}
