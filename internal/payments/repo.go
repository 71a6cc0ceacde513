package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
)

// Repository persists payment records.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a repository to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts a payment, assigning an id when missing.
func (r *Repository) Create(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// FindForUser loads a payment by its public id, scoped to the owner.
func (r *Repository) FindForUser(ctx context.Context, userID uuid.UUID, paymentID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND payment_id = ?", userID, paymentID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByPaymentID loads a payment by its public id regardless of owner.
func (r *Repository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPendingByGatewayPaymentID locates the pending payment the gateway
// reported a capture for. It returns nil when none matches.
func (r *Repository) FindPendingByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.WithContext(ctx).
		Where("gateway_payment_id = ? AND status = ?", gatewayPaymentID, enums.PaymentStatusPending).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Completion carries the gateway data recorded when a payment completes.
type Completion struct {
	GatewayPaymentID *string
	GatewaySignature *string
	Amount           *decimal.Decimal
	PaidAt           time.Time
}

// Complete moves a pending payment to completed. It reports false when the
// payment was no longer pending.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, c Completion) (bool, error) {
	updates := map[string]any{
		"status":     enums.PaymentStatusCompleted,
		"paid_at":    c.PaidAt,
		"updated_at": c.PaidAt,
	}
	if c.GatewayPaymentID != nil {
		updates["gateway_payment_id"] = *c.GatewayPaymentID
	}
	if c.GatewaySignature != nil {
		updates["gateway_signature"] = *c.GatewaySignature
	}
	if c.Amount != nil {
		updates["amount"] = *c.Amount
	}
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, enums.PaymentStatusPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// SetStatus overwrites the status. paidAt is only written when non-nil.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, paidAt *time.Time, now time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": now,
	}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListByUser returns the user's payments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Payment, error) {
	var rows []models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// ExpirePending marks pending payments created before cutoff as failed.
func (r *Repository) ExpirePending(ctx context.Context, cutoff, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", enums.PaymentStatusPending, cutoff).
		Updates(map[string]any{
			"status":     enums.PaymentStatusFailed,
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// Totals summarizes completed payments.
type Totals struct {
	Completed int64
	Revenue   decimal.Decimal
}

// CompletedTotals counts completed payments and sums their amounts.
func (r *Repository) CompletedTotals(ctx context.Context) (Totals, error) {
	var (
		out     Totals
		revenue decimal.NullDecimal
	)
	row := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Select("COUNT(*), SUM(amount)").
		Where("status = ?", enums.PaymentStatusCompleted).
		Row()
	if err := row.Scan(&out.Completed, &revenue); err != nil {
		return Totals{}, err
	}
	if revenue.Valid {
		out.Revenue = revenue.Decimal
	}
	return out, nil
}
