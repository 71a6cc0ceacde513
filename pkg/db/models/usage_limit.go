package models

import (
	"time"

	"github.com/google/uuid"
)

// UsageLimit tracks how many free full calculations a user has spent and
// whether they bought unlimited access.
type UsageLimit struct {
	UserID                     uuid.UUID  `gorm:"column:user_id;type:uuid;primaryKey"`
	FullCalculationsUsed       int        `gorm:"column:full_calculations_used;not null;default:0"`
	UnlimitedAccess            bool       `gorm:"column:unlimited_access;not null;default:false"`
	UnlimitedAccessPurchasedAt *time.Time `gorm:"column:unlimited_access_purchased_at"`
	LastResetDate              time.Time  `gorm:"column:last_reset_date;not null"`
	CreatedAt                  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt                  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
