package contact

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

// Request is the public contact form.
type Request struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// Acknowledgement is returned once a message has been accepted.
type Acknowledgement struct {
	ReferenceID uuid.UUID `json:"reference_id"`
	ReceivedAt  time.Time `json:"received_at"`
	Message     string    `json:"message"`
}

// Service accepts contact messages. Messages are recorded in the service log
// only.
type Service struct {
	logg *logger.Logger
	now  func() time.Time
}

func NewService(logg *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{logg: logg, now: now}
}

func (s *Service) Submit(ctx context.Context, req Request) (*Acknowledgement, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and message are required")
	}

	ack := &Acknowledgement{
		ReferenceID: uuid.New(),
		ReceivedAt:  s.now(),
		Message:     "Thank you for your message! We'll get back to you soon.",
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"contact_ref":    ack.ReferenceID.String(),
			"contact_name":   name,
			"contact_email":  email,
			"message_length": len(message),
		})
		s.logg.Info(logCtx, "contact message received")
	}
	return ack, nil
}
