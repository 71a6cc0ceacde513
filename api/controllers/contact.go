package controllers

import (
	"context"
	"net/http"

	"github.com/sunkaracharan/roifinal/api/responses"
	"github.com/sunkaracharan/roifinal/api/validators"
	"github.com/sunkaracharan/roifinal/internal/contact"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type ContactService interface {
	Submit(ctx context.Context, req contact.Request) (*contact.Acknowledgement, error)
}

func ContactSubmit(svc ContactService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "contact service unavailable"))
			return
		}

		var body contact.Request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ack, err := svc.Submit(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusAccepted, ack)
	}
}
