package results

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sunkaracharan/roifinal/pkg/db/models"
	"github.com/sunkaracharan/roifinal/pkg/enums"
	"github.com/sunkaracharan/roifinal/pkg/pagination"
)

// Repository persists saved calculations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a results repo bound to the provided GORM DB.
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

// Create inserts a calculation.
func (r *Repository) Create(ctx context.Context, row *models.ROIResult) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(row).Error
}

// FindByID loads one of the user's calculations.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.ROIResult, error) {
	var row models.ROIResult
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns the user's calculations newest first, starting after cursor.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ROIResult, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		q = q.Where(`("timestamp" < ? OR ("timestamp" = ? AND id < ?))`, cursor.Timestamp, cursor.Timestamp, cursor.ID)
	}
	var rows []models.ROIResult
	err := q.Order(`"timestamp" DESC`).Order("id DESC").Limit(limit).Find(&rows).Error
	return rows, err
}

// ListSince returns calculations at or after since, oldest first.
func (r *Repository) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ROIResult, error) {
	var rows []models.ROIResult
	err := r.db.WithContext(ctx).
		Where(`user_id = ? AND "timestamp" >= ?`, userID, since).
		Order(`"timestamp" ASC`).
		Find(&rows).Error
	return rows, err
}

// Best returns the calculation with the highest ROI percent, or nil.
func (r *Repository) Best(ctx context.Context, userID uuid.UUID) (*models.ROIResult, error) {
	var rows []models.ROIResult
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("roi_percent DESC").
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ModeCounts holds per-mode totals for a user.
type ModeCounts struct {
	Total int64 `json:"total"`
	Quick int64 `json:"quick"`
	Full  int64 `json:"full"`
}

// CountByMode returns how many calculations the user saved per mode.
func (r *Repository) CountByMode(ctx context.Context, userID uuid.UUID) (ModeCounts, error) {
	var rows []struct {
		Mode  enums.CalculationMode
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.ROIResult{}).
		Select("mode, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("mode").
		Scan(&rows).Error; err != nil {
		return ModeCounts{}, err
	}
	var counts ModeCounts
	for _, row := range rows {
		switch row.Mode {
		case enums.CalculationModeQuick:
			counts.Quick = row.Count
		case enums.CalculationModeFull:
			counts.Full = row.Count
		}
		counts.Total += row.Count
	}
	return counts, nil
}

// Delete removes one of the user's calculations and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.ROIResult{})
	return res.RowsAffected > 0, res.Error
}

// DeleteAll removes every calculation the user saved.
func (r *Repository) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ROIResult{})
	return res.RowsAffected, res.Error
}

// Aggregate summarizes ROI across every user for the admin dashboard.
type Aggregate struct {
	Count      int64   `gorm:"column:count" json:"count"`
	AverageROI float64 `gorm:"column:average_roi" json:"average_roi"`
	MaxROI     float64 `gorm:"column:max_roi" json:"max_roi"`
	MinROI     float64 `gorm:"column:min_roi" json:"min_roi"`
}

// Aggregate computes global ROI statistics.
func (r *Repository) Aggregate(ctx context.Context) (Aggregate, error) {
	var agg Aggregate
	err := r.db.WithContext(ctx).
		Model(&models.ROIResult{}).
		Select("COUNT(*) AS count, COALESCE(AVG(roi_percent), 0) AS average_roi, COALESCE(MAX(roi_percent), 0) AS max_roi, COALESCE(MIN(roi_percent), 0) AS min_roi").
		Scan(&agg).Error
	return agg, err
}
