package roi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

func TestCalculateQuickDefaults(t *testing.T) {
	res := Calculate(QuickDefaults(DefaultQuickRevenue, DefaultQuickCloud, DefaultQuickEngineers))

	assert.InDelta(t, 1_410_000, res.CloudSavings, 0.01)
	assert.InDelta(t, 506_250, res.ProductivityGain, 0.01)
	assert.InDelta(t, 1_594_560, res.PerformanceGain, 0.01)
	assert.InDelta(t, 1_200_000, res.AvailabilityGain, 0.01)
	assert.InDelta(t, 4_710_810, res.TotalAnnualGain, 0.01)
	assert.InDelta(t, 1_000_000, res.EstimatedCost, 0.01)
	assert.InDelta(t, 471.08, res.ROIPercent, 0.001)
	assert.InDelta(t, 2.5, res.PaybackMonths, 0.001)
}

func TestCalculateIsDeterministic(t *testing.T) {
	in := QuickDefaults(250_000_000, 4_000_000, 40)
	in.GrossMargin = 62.5
	assert.Equal(t, Calculate(in), Calculate(in))
}

func TestCalculateZeroGainHasNoPayback(t *testing.T) {
	in := QuickDefaults(DefaultQuickRevenue, DefaultQuickCloud, DefaultQuickEngineers)
	in.CostSensitiveFraction = 0
	in.ToilReductionFraction = 0
	in.RevenueLiftPer100ms = 0
	in.FCIReductionFraction = 0

	res := Calculate(in)
	assert.Zero(t, res.TotalAnnualGain)
	assert.Zero(t, res.ROIPercent)
	assert.Zero(t, res.PaybackMonths)
}

func TestEstimatedCostPicksLargestBasis(t *testing.T) {
	in := Inputs{AnnualCloudSpend: 100_000, NumEngineers: 1000, EngineerCostPerYear: 500_000, AnnualRevenue: 1_000_000}
	assert.InDelta(t, 25_000_000, EstimatedCost(in), 0.001)

	in = Inputs{AnnualCloudSpend: 100_000, NumEngineers: 1, EngineerCostPerYear: 50_000, AnnualRevenue: 1_000_000_000}
	assert.InDelta(t, 5_000_000, EstimatedCost(in), 0.001)
}

func TestNormalizeQuickOverridesEverythingButEntryFields(t *testing.T) {
	in := Inputs{AnnualRevenue: 5_000_000, AnnualCloudSpend: 200_000, NumEngineers: 3, GrossMargin: 10, OpsTimeFraction: 99}
	got := Normalize(enums.CalculationModeQuick, in)
	assert.Equal(t, QuickDefaults(5_000_000, 200_000, 3), got)

	full := Normalize(enums.CalculationModeFull, in)
	assert.Equal(t, in, full)
}

func TestNormalizeQuickFillsOmittedEntryFields(t *testing.T) {
	got := Normalize(enums.CalculationModeQuick, Inputs{AnnualCloudSpend: 2_000_000, NumEngineers: 20})
	assert.Equal(t, QuickDefaults(DefaultQuickRevenue, 2_000_000, 20), got)
	require.NoError(t, Validate(enums.CalculationModeQuick, got))

	full := Normalize(enums.CalculationModeFull, Inputs{})
	assert.Zero(t, full.AnnualRevenue)
}

func TestValidateFullRanges(t *testing.T) {
	in := QuickDefaults(DefaultQuickRevenue, DefaultQuickCloud, DefaultQuickEngineers)
	require.NoError(t, Validate(enums.CalculationModeFull, in))

	in.AnnualRevenue = 10
	in.GrossMargin = 101
	in.AvgResponseTimeSec = 0
	err := Validate(enums.CalculationModeFull, in)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at least 1000000", details["annual_revenue"])
	assert.Equal(t, "must be at most 100", details["gross_margin"])
	assert.Contains(t, details, "avg_response_time_sec")
}

func TestValidateQuickOnlyChecksEntryFields(t *testing.T) {
	in := Inputs{AnnualRevenue: DefaultQuickRevenue, AnnualCloudSpend: DefaultQuickCloud, NumEngineers: DefaultQuickEngineers}
	require.NoError(t, Validate(enums.CalculationModeQuick, in))

	in.NumEngineers = 0
	err := Validate(enums.CalculationModeQuick, in)
	require.Error(t, err)
	details := pkgerrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "num_engineers")
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	err := Validate("turbo", Inputs{})
	require.Error(t, err)
}
