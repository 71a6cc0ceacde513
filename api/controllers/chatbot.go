package controllers

import (
	"context"
	"net/http"

	"github.com/sunkaracharan/roifinal/api/responses"
	"github.com/sunkaracharan/roifinal/api/validators"
	"github.com/sunkaracharan/roifinal/internal/chatbot"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

const maxChatMessageLen = 2000

type ChatbotService interface {
	Ask(ctx context.Context, message string) (*chatbot.Reply, error)
}

type ChatbotRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func Chatbot(svc ChatbotService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chatbot service unavailable"))
			return
		}

		var body ChatbotRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reply, err := svc.Ask(r.Context(), validators.SanitizeString(body.Message, maxChatMessageLen))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reply)
	}
}
