package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/api/middleware"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

// requestUserID reads the authenticated caller set by middleware.Auth.
func requestUserID(r *http.Request) (uuid.UUID, error) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}
