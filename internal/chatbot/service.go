package chatbot

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/metrics"
)

// Reply is the chatbot answer.
type Reply struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ServiceParams bundles the chatbot dependencies. A nil Generator means the
// API key is not configured.
type ServiceParams struct {
	Generator Generator
	Limiter   *rate.Limiter
	Logger    *logger.Logger
	Metrics   *metrics.DomainMetrics
	Now       func() time.Time
}

// Service answers calculator questions with a hosted model.
type Service struct {
	gen     Generator
	limiter *rate.Limiter
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	now     func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		gen:     params.Generator,
		limiter: params.Limiter,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Ask forwards the message with the calculator context and returns the
// model's answer.
func (s *Service) Ask(ctx context.Context, message string) (*Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message cannot be empty")
	}
	if s.gen == nil {
		s.metrics.IncChatbot("unconfigured")
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gemini api key not configured")
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			s.metrics.IncChatbot("throttled")
			return nil, pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "chatbot is busy, try again shortly")
		}
	}

	text, err := s.gen.Generate(ctx, BuildPrompt(message))
	if err != nil {
		if isResourceExhausted(err) {
			s.metrics.IncChatbot("rate_limited")
			return nil, pkgerrors.Wrap(pkgerrors.CodeRateLimit, err, "model quota exhausted")
		}
		s.metrics.IncChatbot("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "failed to generate response")
	}
	s.metrics.IncChatbot("ok")
	return &Reply{Response: text, Timestamp: s.now()}, nil
}

func isResourceExhausted(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var statusErr interface{ GRPCStatus() *status.Status }
	if errors.As(err, &statusErr) {
		if st := statusErr.GRPCStatus(); st != nil {
			return st.Code() == codes.ResourceExhausted
		}
	}
	return false
}
