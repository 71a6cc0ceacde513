package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/api/middleware"
	"github.com/sunkaracharan/roifinal/api/responses"
	"github.com/sunkaracharan/roifinal/api/validators"
	"github.com/sunkaracharan/roifinal/internal/admin"
	"github.com/sunkaracharan/roifinal/internal/payments"
	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/pagination"
)

type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) (*admin.UserPage, error)
	GrantUnlimited(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	ResetCalculations(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	AddFreeCalculations(ctx context.Context, userID uuid.UUID) (*usage.Status, error)
	SetPaymentStatus(ctx context.Context, paymentID string, status enums.PaymentStatus) (*payments.PaymentDTO, error)
	Stats(ctx context.Context) (*admin.Stats, error)
}

type PaymentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed failed refunded"`
}

func AdminListUsers(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListUsers(r.Context(), limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminStats(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminGrantUnlimited gives a user unlimited calculations.
func AdminGrantUnlimited(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminUsageAction(svc, "grant unlimited access", func(ctx context.Context, id uuid.UUID) (*usage.Status, error) {
		return svc.GrantUnlimited(ctx, id)
	}, logg)
}

// AdminResetCalculations zeroes a user's free usage counter.
func AdminResetCalculations(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminUsageAction(svc, "reset calculations", func(ctx context.Context, id uuid.UUID) (*usage.Status, error) {
		return svc.ResetCalculations(ctx, id)
	}, logg)
}

// AdminAddFreeCalculations hands back one batch of free calculations.
func AdminAddFreeCalculations(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return adminUsageAction(svc, "add free calculations", func(ctx context.Context, id uuid.UUID) (*usage.Status, error) {
		return svc.AddFreeCalculations(ctx, id)
	}, logg)
}

func adminUsageAction(svc AdminService, action string, fn func(context.Context, uuid.UUID) (*usage.Status, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := validators.ParseUUIDParam(chi.URLParam(r, "userId"), "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := fn(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if logg != nil {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"target_user_id": userID.String(),
				"actor_user_id":  middleware.UserIDFromContext(r.Context()),
			})
			logg.Info(ctx, "admin "+action)
		}
		responses.WriteSuccess(w, map[string]any{"user_id": userID, "usage": status})
	}
}

// AdminSetPaymentStatus settles a payment by hand.
func AdminSetPaymentStatus(svc AdminService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		paymentID := strings.TrimSpace(chi.URLParam(r, "paymentId"))
		if paymentID == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "payment id is required").WithDetails(map[string]any{"field": "paymentId"}))
			return
		}

		var body PaymentStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParsePaymentStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status"))
			return
		}

		payment, err := svc.SetPaymentStatus(r.Context(), paymentID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
