package reports

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/internal/roi"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type stubResults struct {
	dto *results.ResultDTO
}

func (s stubResults) Get(_ context.Context, _, id uuid.UUID) (*results.ResultDTO, error) {
	if s.dto == nil || s.dto.ID != id {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "calculation not found")
	}
	return s.dto, nil
}

type stubUsers struct {
	user *models.User
}

func (s stubUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if s.user == nil || s.user.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

type recordingArchiver struct {
	keys []string
	err  error
}

func (r *recordingArchiver) Put(_ context.Context, key string, data []byte, contentType string) error {
	r.keys = append(r.keys, key)
	return r.err
}

func sampleResult() results.ResultDTO {
	in := roi.QuickDefaults(roi.DefaultQuickRevenue, roi.DefaultQuickCloud, roi.DefaultQuickEngineers)
	return results.ResultDTO{
		ID:        uuid.New(),
		Timestamp: time.Date(2025, 2, 3, 14, 5, 0, 0, time.UTC),
		Mode:      enums.CalculationModeQuick,
		Inputs:    in,
		Results:   roi.Calculate(in),
	}
}

func TestFileName(t *testing.T) {
	got := FileName("ada", time.Date(2025, 2, 3, 14, 5, 0, 0, time.UTC))
	require.Equal(t, "ROI_Report_ada_20250203_1405.pdf", got)
}

func TestMoneyGroupsThousands(t *testing.T) {
	require.Equal(t, "$4,710,810", money(4710810))
}

func TestBuildLayoutCoversSections(t *testing.T) {
	l := buildLayout(Report{Result: sampleResult(), Username: "ada", GeneratedAt: time.Now()})
	require.Equal(t, "A4", l.Paper)
	var values []string
	for _, tb := range l.Pages["1"].Content.Text {
		values = append(values, tb.Value)
	}
	joined := strings.Join(values, "|")
	for _, want := range []string{"My ROI Results", "Quick Estimate", "$4,710,810", "471%", "2.5 mo", "Cloud", "Availability", "Key Inputs", "$100,000,000", "Prepared for ada"} {
		require.Contains(t, joined, want)
	}
}

func TestRenderProducesOnePagePDF(t *testing.T) {
	data, err := Render(Report{Result: sampleResult(), Username: "ada", GeneratedAt: time.Now()})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	pages, err := api.PageCount(bytes.NewReader(data), nil)
	require.NoError(t, err)
	require.Equal(t, 1, pages)
}

func TestExportArchivesAndToleratesArchiveFailure(t *testing.T) {
	ctx := context.Background()
	res := sampleResult()
	user := &models.User{ID: uuid.New(), Username: "ada"}
	archiver := &recordingArchiver{err: errors.New("bucket offline")}
	svc, err := NewService(ServiceParams{
		Results:  stubResults{dto: &res},
		Users:    stubUsers{user: user},
		Archiver: archiver,
		Logger:   logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)

	doc, err := svc.Export(ctx, user.ID, res.ID)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", doc.ContentType)
	require.Equal(t, "ROI_Report_ada_20250203_1405.pdf", doc.FileName)
	require.NotEmpty(t, doc.Data)
	require.Equal(t, []string{ArchiveKey(user.ID, res.ID)}, archiver.keys)

	_, err = svc.Export(ctx, user.ID, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
