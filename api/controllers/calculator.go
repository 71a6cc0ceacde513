package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/api/responses"
	"github.com/sunkaracharan/roifinal/api/validators"
	"github.com/sunkaracharan/roifinal/internal/results"
	"github.com/sunkaracharan/roifinal/internal/roi"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type CalculatorService interface {
	Preview(ctx context.Context, in roi.Inputs) (*results.PreviewResponse, error)
	Save(ctx context.Context, userID uuid.UUID, mode enums.CalculationMode, in roi.Inputs) (*results.SaveResponse, error)
}

// CalculatorQuick previews the quick estimate from query parameters. Nothing
// is stored and the free-usage counter is untouched.
func CalculatorQuick(svc CalculatorService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "calculator service unavailable"))
			return
		}

		revenue, err := validators.ParseQueryFloat(r, "annual_revenue", roi.DefaultQuickRevenue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cloud, err := validators.ParseQueryFloat(r, "annual_cloud_spend", roi.DefaultQuickCloud)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		engineers, err := validators.ParseQueryInt(r, "num_engineers", roi.DefaultQuickEngineers, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preview, err := svc.Preview(r.Context(), roi.Inputs{
			AnnualRevenue:    revenue,
			AnnualCloudSpend: cloud,
			NumEngineers:     engineers,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// CalculatorFull runs and stores a full calculation, consuming one free use.
func CalculatorFull(svc CalculatorService, logg *logger.Logger) http.HandlerFunc {
	return saveCalculation(svc, enums.CalculationModeFull, logg)
}

// ResultsSaveQuick stores a quick estimate. Quick saves are never gated.
func ResultsSaveQuick(svc CalculatorService, logg *logger.Logger) http.HandlerFunc {
	return saveCalculation(svc, enums.CalculationModeQuick, logg)
}

// ResultsSaveFull stores a full calculation, consuming one free use.
func ResultsSaveFull(svc CalculatorService, logg *logger.Logger) http.HandlerFunc {
	return saveCalculation(svc, enums.CalculationModeFull, logg)
}

func saveCalculation(svc CalculatorService, mode enums.CalculationMode, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "calculator service unavailable"))
			return
		}

		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var in roi.Inputs
		if err := validators.DecodeJSON(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saved, err := svc.Save(r.Context(), userID, mode, in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, saved)
	}
}
