package results

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/internal/roi"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// ResultDTO is the transport shape of a saved calculation.
type ResultDTO struct {
	ID               uuid.UUID             `json:"id"`
	Timestamp        time.Time             `json:"timestamp"`
	Mode             enums.CalculationMode `json:"mode"`
	Inputs           roi.Inputs            `json:"inputs"`
	Results          roi.Result            `json:"results"`
	PaymentRequired  bool                  `json:"payment_required"`
	PaymentCompleted bool                  `json:"payment_completed"`
}

// SaveResponse is returned after a calculation is stored.
type SaveResponse struct {
	Result    ResultDTO       `json:"result"`
	Remaining usage.Remaining `json:"remaining"`
	IsAdmin   bool            `json:"is_admin"`
}

// PreviewResponse is the unsaved quick estimate.
type PreviewResponse struct {
	Inputs  roi.Inputs `json:"inputs"`
	Results roi.Result `json:"results"`
}

// Dashboard summarizes a user's calculation history.
type Dashboard struct {
	Recent          []ResultDTO   `json:"recent"`
	Counts          ModeCounts    `json:"counts"`
	Best            *ResultDTO    `json:"best,omitempty"`
	Usage           *usage.Status `json:"usage"`
	IsAdmin         bool          `json:"is_admin"`
	UnlimitedAccess bool          `json:"unlimited_access"`
	GeneratedAt     time.Time     `json:"generated_at"`
}

// FromModel rebuilds the transport shape, recomputing the estimated cost
// from the stored inputs.
func FromModel(m *models.ROIResult) ResultDTO {
	in := InputsFromModel(m)
	return ResultDTO{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		Mode:      m.Mode,
		Inputs:    in,
		Results: roi.Result{
			CloudSavings:     m.CloudSavings,
			ProductivityGain: m.ProductivityGain,
			PerformanceGain:  m.PerformanceGain,
			AvailabilityGain: m.AvailabilityGain,
			TotalAnnualGain:  m.TotalAnnualGain,
			EstimatedCost:    roi.EstimatedCost(in),
			ROIPercent:       m.ROIPercent,
			PaybackMonths:    m.PaybackMonths,
		},
		PaymentRequired:  m.PaymentRequired,
		PaymentCompleted: m.PaymentCompleted,
	}
}

// InputsFromModel extracts the stored inputs.
func InputsFromModel(m *models.ROIResult) roi.Inputs {
	return roi.Inputs{
		AnnualRevenue:             m.AnnualRevenue,
		GrossMargin:               m.GrossMargin,
		ContainerAppFraction:      m.ContainerAppFraction,
		AnnualCloudSpend:          m.AnnualCloudSpend,
		ComputeSpendFraction:      m.ComputeSpendFraction,
		CostSensitiveFraction:     m.CostSensitiveFraction,
		NumEngineers:              m.NumEngineers,
		EngineerCostPerYear:       m.EngineerCostPerYear,
		OpsTimeFraction:           m.OpsTimeFraction,
		OpsToilFraction:           m.OpsToilFraction,
		ToilReductionFraction:     m.ToilReductionFraction,
		AvgResponseTimeSec:        m.AvgResponseTimeSec,
		ExecTimeInfluenceFraction: m.ExecTimeInfluenceFraction,
		LatRedContainer:           m.LatRedContainer,
		LatRedServerless:          m.LatRedServerless,
		RevenueLiftPer100ms:       m.RevenueLiftPer100ms,
		CurrentFCIFraction:        m.CurrentFCIFraction,
		FCIReductionFraction:      m.FCIReductionFraction,
		CostPer1PctFCI:            m.CostPer1PctFCI,
	}
}

func toModel(userID uuid.UUID, mode enums.CalculationMode, in roi.Inputs, res roi.Result, at time.Time) *models.ROIResult {
	return &models.ROIResult{
		ID:                        uuid.New(),
		UserID:                    userID,
		Timestamp:                 at,
		Mode:                      mode,
		AnnualRevenue:             in.AnnualRevenue,
		GrossMargin:               in.GrossMargin,
		ContainerAppFraction:      in.ContainerAppFraction,
		AnnualCloudSpend:          in.AnnualCloudSpend,
		ComputeSpendFraction:      in.ComputeSpendFraction,
		CostSensitiveFraction:     in.CostSensitiveFraction,
		NumEngineers:              in.NumEngineers,
		EngineerCostPerYear:       in.EngineerCostPerYear,
		OpsTimeFraction:           in.OpsTimeFraction,
		OpsToilFraction:           in.OpsToilFraction,
		ToilReductionFraction:     in.ToilReductionFraction,
		AvgResponseTimeSec:        in.AvgResponseTimeSec,
		ExecTimeInfluenceFraction: in.ExecTimeInfluenceFraction,
		LatRedContainer:           in.LatRedContainer,
		LatRedServerless:          in.LatRedServerless,
		RevenueLiftPer100ms:       in.RevenueLiftPer100ms,
		CurrentFCIFraction:        in.CurrentFCIFraction,
		FCIReductionFraction:      in.FCIReductionFraction,
		CostPer1PctFCI:            in.CostPer1PctFCI,
		CloudSavings:              res.CloudSavings,
		ProductivityGain:          res.ProductivityGain,
		PerformanceGain:           res.PerformanceGain,
		AvailabilityGain:          res.AvailabilityGain,
		TotalAnnualGain:           res.TotalAnnualGain,
		ROIPercent:                res.ROIPercent,
		PaybackMonths:             res.PaybackMonths,
		PaymentCompleted:          mode == enums.CalculationModeFull,
	}
}
