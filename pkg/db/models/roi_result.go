package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// ROIResult is one saved calculation: the inputs and the figures derived
// from them. Rows are never updated after insert.
type ROIResult struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	Timestamp time.Time             `gorm:"column:timestamp;not null"`
	Mode      enums.CalculationMode `gorm:"column:mode;type:calculation_mode;not null"`

	AnnualRevenue             float64 `gorm:"column:annual_revenue;not null"`
	GrossMargin               float64 `gorm:"column:gross_margin;not null"`
	ContainerAppFraction      float64 `gorm:"column:container_app_fraction;not null"`
	AnnualCloudSpend          float64 `gorm:"column:annual_cloud_spend;not null"`
	ComputeSpendFraction      float64 `gorm:"column:compute_spend_fraction;not null"`
	CostSensitiveFraction     float64 `gorm:"column:cost_sensitive_fraction;not null"`
	NumEngineers              int     `gorm:"column:num_engineers;not null"`
	EngineerCostPerYear       float64 `gorm:"column:engineer_cost_per_year;not null"`
	OpsTimeFraction           float64 `gorm:"column:ops_time_fraction;not null"`
	OpsToilFraction           float64 `gorm:"column:ops_toil_fraction;not null"`
	ToilReductionFraction     float64 `gorm:"column:toil_reduction_fraction;not null"`
	AvgResponseTimeSec        float64 `gorm:"column:avg_response_time_sec;not null"`
	ExecTimeInfluenceFraction float64 `gorm:"column:exec_time_influence_fraction;not null"`
	LatRedContainer           float64 `gorm:"column:lat_red_container;not null"`
	LatRedServerless          float64 `gorm:"column:lat_red_serverless;not null"`
	RevenueLiftPer100ms       float64 `gorm:"column:revenue_lift_per_100ms;not null"`
	CurrentFCIFraction        float64 `gorm:"column:current_fci_fraction;not null"`
	FCIReductionFraction      float64 `gorm:"column:fci_reduction_fraction;not null"`
	CostPer1PctFCI            float64 `gorm:"column:cost_per_1pct_fci;not null"`

	CloudSavings     float64 `gorm:"column:cloud_savings;not null"`
	ProductivityGain float64 `gorm:"column:productivity_gain;not null"`
	PerformanceGain  float64 `gorm:"column:performance_gain;not null"`
	AvailabilityGain float64 `gorm:"column:availability_gain;not null"`
	TotalAnnualGain  float64 `gorm:"column:total_annual_gain;not null"`
	ROIPercent       float64 `gorm:"column:roi_percent;not null"`
	PaybackMonths    float64 `gorm:"column:payback_months;not null"`

	PaymentRequired  bool `gorm:"column:payment_required;not null;default:false"`
	PaymentCompleted bool `gorm:"column:payment_completed;not null;default:false"`
}

func (ROIResult) TableName() string {
	return "roi_results"
}
