package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/pkg/db/dbtest"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		in    string
		name  string
		days  int
		group string
	}{
		{"10d", "10d", 10, GroupDay},
		{"1m", "1m", 30, GroupDay},
		{"3m", "3m", 90, GroupMonth},
		{"6m", "6m", 180, GroupMonth},
		{"1y", "1y", 365, GroupMonth},
		{"", "2m", 60, GroupMonth},
		{"5y", "2m", 60, GroupMonth},
	}
	for _, tc := range cases {
		name, days, group := Resolve(tc.in)
		require.Equal(t, tc.name, name, tc.in)
		require.Equal(t, tc.days, days, tc.in)
		require.Equal(t, tc.group, group, tc.in)
	}
}

func TestSeriesGroupsByPeriod(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	repo := results.NewRepository(conn)
	userID := uuid.New()
	other := uuid.New()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	insert := func(owner uuid.UUID, at time.Time, roiPct float64) {
		require.NoError(t, repo.Create(ctx, &models.ROIResult{
			UserID:     owner,
			Timestamp:  at,
			Mode:       enums.CalculationModeQuick,
			ROIPercent: roiPct,
		}))
	}
	insert(userID, now.AddDate(0, 0, -100), 1)
	insert(userID, now.AddDate(0, 0, -40), 10)
	insert(userID, now.AddDate(0, 0, -5), 20)
	insert(userID, now.AddDate(0, 0, -5).Add(time.Hour), 30)
	insert(userID, now.AddDate(0, 0, -1), 40)
	insert(other, now.AddDate(0, 0, -1), 99)

	svc, err := NewService(repo, func() time.Time { return now })
	require.NoError(t, err)

	days, err := svc.Series(ctx, userID, "10d")
	require.NoError(t, err)
	require.Equal(t, GroupDay, days.Group)
	require.Equal(t, []string{"2025-06-10", "2025-06-10", "2025-06-14"}, days.Dates)
	require.Equal(t, []float64{20, 30, 40}, days.ROIPercent)
	require.Equal(t, map[string]int{"2025-06-10": 2, "2025-06-14": 1}, days.CalculationsPerPeriod)

	months, err := svc.Series(ctx, userID, "bogus")
	require.NoError(t, err)
	require.Equal(t, DefaultRange, months.Range)
	require.Equal(t, GroupMonth, months.Group)
	require.Len(t, months.Dates, 4)
	require.Equal(t, map[string]int{"2025-05": 1, "2025-06": 3}, months.CalculationsPerPeriod)

	empty, err := svc.Series(ctx, uuid.New(), "1y")
	require.NoError(t, err)
	require.Empty(t, empty.Dates)
	require.NotNil(t, empty.CalculationsPerPeriod)
}
