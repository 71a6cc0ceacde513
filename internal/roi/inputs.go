package roi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

// Inputs are the business metrics a calculation runs on. Every *Fraction,
// LatRed* and GrossMargin field is a percentage in the 0-100 range.
type Inputs struct {
	AnnualRevenue             float64 `json:"annual_revenue" validate:"gte=1000000,lte=1000000000"`
	GrossMargin               float64 `json:"gross_margin" validate:"gte=0,lte=100"`
	ContainerAppFraction      float64 `json:"container_app_fraction" validate:"gte=0,lte=100"`
	AnnualCloudSpend          float64 `json:"annual_cloud_spend" validate:"gte=100000,lte=100000000"`
	ComputeSpendFraction      float64 `json:"compute_spend_fraction" validate:"gte=0,lte=100"`
	CostSensitiveFraction     float64 `json:"cost_sensitive_fraction" validate:"gte=0,lte=100"`
	NumEngineers              int     `json:"num_engineers" validate:"gte=1,lte=1000"`
	EngineerCostPerYear       float64 `json:"engineer_cost_per_year" validate:"gte=50000,lte=500000"`
	OpsTimeFraction           float64 `json:"ops_time_fraction" validate:"gte=0,lte=100"`
	OpsToilFraction           float64 `json:"ops_toil_fraction" validate:"gte=0,lte=100"`
	ToilReductionFraction     float64 `json:"toil_reduction_fraction" validate:"gte=0,lte=100"`
	AvgResponseTimeSec        float64 `json:"avg_response_time_sec" validate:"gte=0.1,lte=10"`
	ExecTimeInfluenceFraction float64 `json:"exec_time_influence_fraction" validate:"gte=0,lte=100"`
	LatRedContainer           float64 `json:"lat_red_container" validate:"gte=0,lte=100"`
	LatRedServerless          float64 `json:"lat_red_serverless" validate:"gte=0,lte=100"`
	RevenueLiftPer100ms       float64 `json:"revenue_lift_per_100ms" validate:"gte=0,lte=10"`
	CurrentFCIFraction        float64 `json:"current_fci_fraction" validate:"gte=0,lte=10"`
	FCIReductionFraction      float64 `json:"fci_reduction_fraction" validate:"gte=0,lte=100"`
	CostPer1PctFCI            float64 `json:"cost_per_1pct_fci" validate:"gte=0,lte=10"`
}

// Quick-estimate entry defaults used when the caller omits a value.
const (
	DefaultQuickRevenue   = 100_000_000
	DefaultQuickCloud     = 10_000_000
	DefaultQuickEngineers = 100
)

// QuickDefaults returns a full input set for the quick estimate: the three
// entry figures are kept and everything else takes the industry defaults.
func QuickDefaults(revenue, cloudSpend float64, engineers int) Inputs {
	return Inputs{
		AnnualRevenue:             revenue,
		GrossMargin:               80,
		ContainerAppFraction:      90,
		AnnualCloudSpend:          cloudSpend,
		ComputeSpendFraction:      60,
		CostSensitiveFraction:     50,
		NumEngineers:              engineers,
		EngineerCostPerYear:       150_000,
		OpsTimeFraction:           15,
		OpsToilFraction:           50,
		ToilReductionFraction:     45,
		AvgResponseTimeSec:        2,
		ExecTimeInfluenceFraction: 33,
		LatRedContainer:           28,
		LatRedServerless:          50,
		RevenueLiftPer100ms:       1,
		CurrentFCIFraction:        2,
		FCIReductionFraction:      75,
		CostPer1PctFCI:            1,
	}
}

// Normalize applies the quick defaults when mode is quick and returns the
// inputs unchanged otherwise. Omitted entry figures take the
// DefaultQuick* values.
func Normalize(mode enums.CalculationMode, in Inputs) Inputs {
	if mode != enums.CalculationModeQuick {
		return in
	}
	revenue, cloud, engineers := in.AnnualRevenue, in.AnnualCloudSpend, in.NumEngineers
	if revenue == 0 {
		revenue = DefaultQuickRevenue
	}
	if cloud == 0 {
		cloud = DefaultQuickCloud
	}
	if engineers == 0 {
		engineers = DefaultQuickEngineers
	}
	return QuickDefaults(revenue, cloud, engineers)
}

var quickFields = []string{"AnnualRevenue", "AnnualCloudSpend", "NumEngineers"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// Validate checks the inputs against the accepted ranges. Quick mode only
// checks the three entry figures.
func Validate(mode enums.CalculationMode, in Inputs) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid calculation mode").WithDetails(map[string]string{"mode": "must be quick or full"})
	}
	var err error
	if mode == enums.CalculationModeQuick {
		err = validate.StructPartial(in, quickFields...)
	} else {
		err = validate.Struct(in)
	}
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inputs")
	}
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		details[fe.Field()] = rangeMessage(fe)
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "inputs out of range").WithDetails(details)
}

func rangeMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}
