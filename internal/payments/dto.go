package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sunkaracharan/roifinal/internal/usage"
	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// PaymentDTO is the transport shape of a payment record.
type PaymentDTO struct {
	ID               uuid.UUID           `json:"id"`
	PaymentID        string              `json:"payment_id"`
	Amount           decimal.Decimal     `json:"amount"`
	Currency         string              `json:"currency"`
	Method           enums.PaymentMethod `json:"method"`
	Status           enums.PaymentStatus `json:"status"`
	GatewayPaymentID *string             `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
}

// FromModel converts a stored payment.
func FromModel(p *models.Payment) PaymentDTO {
	return PaymentDTO{
		ID:               p.ID,
		PaymentID:        p.PaymentID,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Method:           p.Method,
		Status:           p.Status,
		GatewayPaymentID: p.GatewayPaymentID,
		CreatedAt:        p.CreatedAt,
		PaidAt:           p.PaidAt,
	}
}

// Checkout is returned when a pending payment is opened. It carries what
// the client needs to launch the hosted payment button.
type Checkout struct {
	PaymentID       string          `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Key             string          `json:"key"`
	PaymentButtonID string          `json:"payment_button_id"`
	SuccessURL      string          `json:"success_url"`
	UserName        string          `json:"user_name"`
	UserEmail       string          `json:"user_email"`
}

// Confirmation is the gateway data posted back after checkout.
type Confirmation struct {
	PaymentID        string `json:"payment_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}

// Outcome reports the state of a payment after verification or a status
// lookup.
type Outcome struct {
	PaymentID       string `json:"payment_id"`
	Status          string `json:"status"`
	UnlimitedAccess bool   `json:"unlimited_access"`
	Message         string `json:"message"`
}

// History lists the caller's payments with their usage position.
type History struct {
	Payments []PaymentDTO  `json:"payments"`
	Usage    *usage.Status `json:"usage"`
}

// Requirement describes why a payment is being asked for.
type Requirement struct {
	Remaining usage.Remaining `json:"remaining_calculations"`
	TotalUsed int             `json:"total_used"`
	IsAdmin   bool            `json:"is_admin"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
}
