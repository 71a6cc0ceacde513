package roi

import "math"

// Result holds the figures derived from one set of inputs.
type Result struct {
	CloudSavings     float64 `json:"cloud_savings"`
	ProductivityGain float64 `json:"productivity_gain"`
	PerformanceGain  float64 `json:"performance_gain"`
	AvailabilityGain float64 `json:"availability_gain"`
	TotalAnnualGain  float64 `json:"total_annual_gain"`
	EstimatedCost    float64 `json:"estimated_cost"`
	ROIPercent       float64 `json:"roi_percent"`
	PaybackMonths    float64 `json:"payback_months"`
}

// Calculate runs the ROI model. It is pure: the same inputs always give the
// same result.
func Calculate(in Inputs) Result {
	container := in.ContainerAppFraction / 100

	computeSpend := in.AnnualCloudSpend * in.ComputeSpendFraction / 100
	costSensitive := computeSpend * in.CostSensitiveFraction / 100
	cloudSavings := costSensitive * (container*0.5 + (1-container)*0.2)

	productivity := float64(in.NumEngineers) * in.EngineerCostPerYear *
		in.OpsTimeFraction / 100 * in.OpsToilFraction / 100 * in.ToilReductionFraction / 100

	weightedLatRed := container*in.LatRedContainer/100 + (1-container)*in.LatRedServerless/100
	timeSaved := in.AvgResponseTimeSec * weightedLatRed
	revGainPct := (timeSaved / 0.1) * in.RevenueLiftPer100ms / 100
	performance := in.AnnualRevenue * revGainPct * in.GrossMargin / 100 * in.ExecTimeInfluenceFraction / 100

	fciCostFraction := (in.CostPer1PctFCI / 100) * ((in.CurrentFCIFraction / 100) / 0.01)
	fciCost := in.AnnualRevenue * fciCostFraction * in.GrossMargin / 100
	availability := fciCost * in.FCIReductionFraction / 100

	total := cloudSavings + productivity + performance + availability
	cost := EstimatedCost(in)

	var roiPct, payback float64
	if cost > 0 {
		roiPct = total / cost * 100
	}
	if total > 0 {
		payback = 12 * cost / total
	}

	return Result{
		CloudSavings:     round(cloudSavings, 2),
		ProductivityGain: round(productivity, 2),
		PerformanceGain:  round(performance, 2),
		AvailabilityGain: round(availability, 2),
		TotalAnnualGain:  round(total, 2),
		EstimatedCost:    round(cost, 2),
		ROIPercent:       round(roiPct, 2),
		PaybackMonths:    round(payback, 1),
	}
}

// EstimatedCost is the implementation cost proxy: the largest of 10% of
// cloud spend, 5% of engineering payroll and 0.5% of revenue.
func EstimatedCost(in Inputs) float64 {
	return math.Max(
		in.AnnualCloudSpend*0.1,
		math.Max(float64(in.NumEngineers)*in.EngineerCostPerYear*0.05, in.AnnualRevenue*0.005),
	)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
