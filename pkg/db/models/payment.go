package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// Payment records a purchase of unlimited access through the (mock) gateway.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	ROIResultID      *uuid.UUID          `gorm:"column:roi_result_id;type:uuid"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	Currency         string              `gorm:"column:currency;not null;default:'INR'"`
	PaymentID        string              `gorm:"column:payment_id;not null;uniqueIndex"`
	Method           enums.PaymentMethod `gorm:"column:method;type:payment_method;not null;default:'razorpay'"`
	Status           enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	TransactionID    *string             `gorm:"column:transaction_id"`
	GatewayOrderID   *string             `gorm:"column:gateway_order_id"`
	GatewayPaymentID *string             `gorm:"column:gateway_payment_id;index"`
	GatewaySignature *string             `gorm:"column:gateway_signature"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
}
