package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sunkaracharan/roifinal/pkg/db/models"
)

// Repository persists per-user usage counters.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a usage repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// GetOrCreate returns the limit row for the user, inserting a zeroed one on
// first access.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID, now time.Time) (*models.UsageLimit, error) {
	row := models.UsageLimit{UserID: userID, LastResetDate: now}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	var limit models.UsageLimit
	if err := r.db.WithContext(ctx).First(&limit, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &limit, nil
}

// TryIncrement bumps the counter only while it is below max and the user has
// no unlimited access. It reports whether a row was updated.
func (r *Repository) TryIncrement(ctx context.Context, userID uuid.UUID, max int, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.UsageLimit{}).
		Where("user_id = ? AND unlimited_access = ? AND full_calculations_used < ?", userID, false, max).
		Updates(map[string]any{
			"full_calculations_used": gorm.Expr("full_calculations_used + 1"),
			"updated_at":             now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// GrantUnlimited sets the unlimited flag. The purchase timestamp is only
// written the first time.
func (r *Repository) GrantUnlimited(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UsageLimit{}).
		Where("user_id = ? AND unlimited_access = ?", userID, false).
		Updates(map[string]any{
			"unlimited_access":              true,
			"unlimited_access_purchased_at": now,
			"updated_at":                    now,
		}).Error
}

// Reset zeroes the counter.
func (r *Repository) Reset(ctx context.Context, userID uuid.UUID, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UsageLimit{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"full_calculations_used": 0,
			"last_reset_date":        now,
			"updated_at":             now,
		}).Error
}

// Credit gives back up to n calculations without going below zero.
func (r *Repository) Credit(ctx context.Context, userID uuid.UUID, n int, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.UsageLimit{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"full_calculations_used": gorm.Expr("CASE WHEN full_calculations_used > ? THEN full_calculations_used - ? ELSE 0 END", n, n),
			"updated_at":             now,
		}).Error
}

// ListByUsers returns the limit rows for the provided users keyed by user id.
func (r *Repository) ListByUsers(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.UsageLimit, error) {
	out := make(map[uuid.UUID]models.UsageLimit, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	var rows []models.UsageLimit
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.UserID] = row
	}
	return out, nil
}

// CountUnlimited returns how many users hold unlimited access.
func (r *Repository) CountUnlimited(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.UsageLimit{}).Where("unlimited_access = ?", true).Count(&n).Error
	return n, err
}
