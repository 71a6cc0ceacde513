package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/api/responses"
	"github.com/sunkaracharan/roifinal/internal/analysis"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type AnalysisService interface {
	Series(ctx context.Context, userID uuid.UUID, requested string) (*analysis.Series, error)
}

// HistoryAnalysis returns chart series for the requested range. Unknown
// ranges fall back to the default window.
func HistoryAnalysis(svc AnalysisService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analysis service unavailable"))
			return
		}
		userID, err := requestUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		series, err := svc.Series(r.Context(), userID, strings.TrimSpace(r.URL.Query().Get("range")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, series)
	}
}
