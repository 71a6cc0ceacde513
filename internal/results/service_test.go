package results

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sunkaracharan/roifinal/internal/roi"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/internal/users"
	"github.com/sunkaracharan/roifinal/pkg/db"
	"github.com/sunkaracharan/roifinal/pkg/db/dbtest"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/pagination"
)

type harness struct {
	svc   Service
	repo  *Repository
	users *users.Repository
	clock *time.Time
}

func newHarness(t *testing.T) harness {
	t.Helper()
	conn := dbtest.Open(t)
	userRepo := users.NewRepository(conn)
	clock := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	now := func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	gate, err := usage.NewService(usage.ServiceParams{Repo: usage.NewRepository(conn), Users: userRepo, Now: now})
	require.NoError(t, err)
	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		DB:     db.FromConn(conn),
		Repo:   repo,
		Usage:  gate,
		Logger: logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:    now,
	})
	require.NoError(t, err)
	return harness{svc: svc, repo: repo, users: userRepo, clock: &clock}
}

func (h harness) user(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := h.users.Create(context.Background(), users.CreateUserDTO{Username: name, Email: name + "@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	return u.ID
}

func fullInputs() roi.Inputs {
	return roi.QuickDefaults(roi.DefaultQuickRevenue, roi.DefaultQuickCloud, roi.DefaultQuickEngineers)
}

func TestSaveFullIsGated(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := h.user(t, "gated")

	for i := 0; i < usage.FreeCalculations; i++ {
		resp, err := h.svc.Save(ctx, userID, enums.CalculationModeFull, fullInputs())
		require.NoError(t, err)
		require.Equal(t, usage.FreeCalculations-i-1, resp.Remaining.Count)
		require.True(t, resp.Result.PaymentCompleted)
	}

	_, err := h.svc.Save(ctx, userID, enums.CalculationModeFull, fullInputs())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodePaymentRequired))

	counts, err := h.repo.CountByMode(ctx, userID)
	require.NoError(t, err)
	require.EqualValues(t, usage.FreeCalculations, counts.Full)
}

func TestSaveQuickIsNotGatedAndUsesDefaults(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := h.user(t, "quick")

	in := roi.Inputs{AnnualRevenue: 50_000_000, AnnualCloudSpend: 2_000_000, NumEngineers: 20, GrossMargin: 5}
	resp, err := h.svc.Save(ctx, userID, enums.CalculationModeQuick, in)
	require.NoError(t, err)
	require.Equal(t, float64(80), resp.Result.Inputs.GrossMargin)
	require.Equal(t, usage.FreeCalculations, resp.Remaining.Count)
	require.Equal(t, roi.Calculate(roi.QuickDefaults(50_000_000, 2_000_000, 20)), resp.Result.Results)
}

func TestSaveQuickDefaultsOmittedRevenue(t *testing.T) {
	h := newHarness(t)
	userID := h.user(t, "quick-partial")

	in := roi.Inputs{AnnualCloudSpend: 2_000_000, NumEngineers: 20}
	resp, err := h.svc.Save(context.Background(), userID, enums.CalculationModeQuick, in)
	require.NoError(t, err)
	require.Equal(t, float64(roi.DefaultQuickRevenue), resp.Result.Inputs.AnnualRevenue)
	require.Equal(t, roi.Calculate(roi.QuickDefaults(roi.DefaultQuickRevenue, 2_000_000, 20)), resp.Result.Results)
}

func TestSaveRejectsOutOfRangeInputs(t *testing.T) {
	h := newHarness(t)
	userID := h.user(t, "bad")
	in := fullInputs()
	in.NumEngineers = 5000
	_, err := h.svc.Save(context.Background(), userID, enums.CalculationModeFull, in)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := h.user(t, "pager")

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		resp, err := h.svc.Save(ctx, userID, enums.CalculationModeQuick, fullInputs())
		require.NoError(t, err)
		ids = append(ids, resp.Result.ID)
	}

	page, err := h.svc.List(ctx, userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, ids[2], page.Items[0].ID)
	require.Equal(t, ids[1], page.Items[1].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := h.svc.List(ctx, userID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Items, 1)
	require.Equal(t, ids[0], next.Items[0].ID)
	require.Empty(t, next.NextCursor)
}

func TestGetAndDeleteAreScopedToOwner(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	owner := h.user(t, "owner")
	other := h.user(t, "other")

	resp, err := h.svc.Save(ctx, owner, enums.CalculationModeQuick, fullInputs())
	require.NoError(t, err)

	_, err = h.svc.Get(ctx, other, resp.Result.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(h.svc.Delete(ctx, other, resp.Result.ID), pkgerrors.CodeNotFound))

	got, err := h.svc.Get(ctx, owner, resp.Result.ID)
	require.NoError(t, err)
	require.Equal(t, resp.Result.Results.TotalAnnualGain, got.Results.TotalAnnualGain)

	require.NoError(t, h.svc.Delete(ctx, owner, resp.Result.ID))
	_, err = h.svc.Get(ctx, owner, resp.Result.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteAllAndDashboard(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := h.user(t, "dash")

	_, err := h.svc.Save(ctx, userID, enums.CalculationModeQuick, fullInputs())
	require.NoError(t, err)
	better := fullInputs()
	better.RevenueLiftPer100ms = 3
	best, err := h.svc.Save(ctx, userID, enums.CalculationModeFull, better)
	require.NoError(t, err)

	dash, err := h.svc.Dashboard(ctx, userID)
	require.NoError(t, err)
	require.Len(t, dash.Recent, 2)
	require.EqualValues(t, 2, dash.Counts.Total)
	require.EqualValues(t, 1, dash.Counts.Quick)
	require.EqualValues(t, 1, dash.Counts.Full)
	require.NotNil(t, dash.Best)
	require.Equal(t, best.Result.ID, dash.Best.ID)
	require.Equal(t, usage.FreeCalculations-1, dash.Usage.Remaining.Count)

	n, err := h.svc.DeleteAll(ctx, userID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	dash, err = h.svc.Dashboard(ctx, userID)
	require.NoError(t, err)
	require.Empty(t, dash.Recent)
	require.Nil(t, dash.Best)
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	userID := h.user(t, "agg")
	for _, pct := range []float64{10, 30} {
		require.NoError(t, h.repo.Create(ctx, &models.ROIResult{UserID: userID, Timestamp: time.Now().UTC(), Mode: enums.CalculationModeQuick, ROIPercent: pct}))
	}
	agg, err := h.repo.Aggregate(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, agg.Count)
	require.InDelta(t, 20, agg.AverageROI, 0.001)
	require.InDelta(t, 30, agg.MaxROI, 0.001)
	require.InDelta(t, 10, agg.MinROI, 0.001)
}
