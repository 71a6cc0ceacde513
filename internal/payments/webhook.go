package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

// EventPaymentCaptured is the only gateway event that changes state.
const EventPaymentCaptured = "payment.captured"

// Webhook result statuses.
const (
	WebhookProcessed = "success"
	WebhookIgnored   = "ignored"
)

// maxAmount is the first value that no longer fits the numeric(10,2)
// amount column.
var maxAmount = decimal.New(1, 8)

// Event is the subset of a gateway webhook body the service reads.
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string          `json:"id"`
				Amount json.RawMessage `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// ParseEvent decodes a raw webhook body.
func ParseEvent(body []byte) (*Event, error) {
	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload")
	}
	return &evt, nil
}

// EntityID returns the gateway payment id carried by the event.
func (e *Event) EntityID() string {
	return strings.TrimSpace(e.Payload.Payment.Entity.ID)
}

// Amount converts the entity amount to a decimal in major units. Integer
// amounts are minor units and are divided by 100; strings and fractional
// numbers are taken as given. A missing amount reports ok=false.
func (e *Event) Amount() (amount decimal.Decimal, ok bool) {
	raw := bytes.TrimSpace(e.Payload.Payment.Entity.Amount)
	if len(raw) == 0 || string(raw) == "null" {
		return decimal.Decimal{}, false
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return decimal.Zero, true
		}
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, true
		}
		return d, true
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.Zero, true
	}
	if !bytes.ContainsAny(raw, ".eE") {
		return d.Shift(-2), true
	}
	return d, true
}

// HandleEvent applies a gateway webhook. A captured payment completes the
// matching pending record and unlocks its owner.
func (s *Service) HandleEvent(ctx context.Context, evt *Event) (string, error) {
	if evt == nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}
	if evt.Event != EventPaymentCaptured {
		s.logg.Debug(ctx, fmt.Sprintf("webhook event %q ignored", evt.Event))
		return WebhookIgnored, nil
	}
	gatewayID := evt.EntityID()
	if gatewayID == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	amount, err := eventAmount(evt)
	if err != nil {
		return "", err
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		payment, err := repo.FindPendingByGatewayPaymentID(ctx, gatewayID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load payment")
		}
		if payment == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		completion := Completion{PaidAt: s.now(), Amount: amount}
		done, err := repo.Complete(ctx, payment.ID, completion)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete payment")
		}
		if !done {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		if err := s.usage.GrantUnlimited(ctx, tx, payment.UserID); err != nil {
			return err
		}
		s.logg.Info(s.logg.WithPaymentID(ctx, payment.PaymentID), "payment captured via webhook")
		return nil
	})
	if err != nil {
		return "", err
	}
	s.metrics.IncPayment(enums.PaymentStatusCompleted.String(), "webhook")
	return WebhookProcessed, nil
}

// eventAmount returns the event amount when present, rejecting values the
// payments table cannot store.
func eventAmount(evt *Event) (*decimal.Decimal, error) {
	amount, ok := evt.Amount()
	if !ok {
		return nil, nil
	}
	if amount.IsNegative() || amount.GreaterThanOrEqual(maxAmount) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook amount out of range").
			WithDetails(map[string]string{"amount": amount.String()})
	}
	return &amount, nil
}
