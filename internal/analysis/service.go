package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/sunkaracharan/roifinal/pkg/db/models"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

// Range windows accepted by Series. Anything else falls back to DefaultRange.
const (
	Range10Days  = "10d"
	Range1Month  = "1m"
	Range3Months = "3m"
	Range6Months = "6m"
	Range1Year   = "1y"
	DefaultRange = "2m"
)

// Grouping granularities.
const (
	GroupDay   = "day"
	GroupMonth = "month"
)

type window struct {
	days  int
	group string
}

var windows = map[string]window{
	Range10Days:  {days: 10, group: GroupDay},
	Range1Month:  {days: 30, group: GroupDay},
	Range3Months: {days: 90, group: GroupMonth},
	Range6Months: {days: 180, group: GroupMonth},
	Range1Year:   {days: 365, group: GroupMonth},
	DefaultRange: {days: 60, group: GroupMonth},
}

// Series holds chart-ready history for one user.
type Series struct {
	Range                 string         `json:"range"`
	Group                 string         `json:"group"`
	Dates                 []string       `json:"dates"`
	ROIPercent            []float64      `json:"roi_percent"`
	AvailabilityGain      []float64      `json:"availability_gain"`
	PerformanceGain       []float64      `json:"performance_gain"`
	CloudSavings          []float64      `json:"cloud_savings"`
	ProductivityGain      []float64      `json:"productivity_gain"`
	CalculationsPerPeriod map[string]int `json:"calculations_per_period"`
}

type historyReader interface {
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.ROIResult, error)
}

type Service struct {
	repo historyReader
	now  func() time.Time
}

func NewService(repo historyReader, now func() time.Time) (*Service, error) {
	if repo == nil {
		return nil, errors.New("history reader required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, now: now}, nil
}

// Resolve normalizes a requested range and returns its window.
func Resolve(requested string) (string, int, string) {
	if w, ok := windows[requested]; ok {
		return requested, w.days, w.group
	}
	w := windows[DefaultRange]
	return DefaultRange, w.days, w.group
}

// Series returns the user's results since the start of the requested range,
// oldest first, with per-period counts.
func (s *Service) Series(ctx context.Context, userID uuid.UUID, requested string) (*Series, error) {
	name, days, group := Resolve(requested)
	since := s.now().AddDate(0, 0, -days)
	rows, err := s.repo.ListSince(ctx, userID, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load history")
	}
	return build(name, group, rows), nil
}

func build(name, group string, rows []models.ROIResult) *Series {
	out := &Series{
		Range:                 name,
		Group:                 group,
		Dates:                 make([]string, 0, len(rows)),
		ROIPercent:            make([]float64, 0, len(rows)),
		AvailabilityGain:      make([]float64, 0, len(rows)),
		PerformanceGain:       make([]float64, 0, len(rows)),
		CloudSavings:          make([]float64, 0, len(rows)),
		ProductivityGain:      make([]float64, 0, len(rows)),
		CalculationsPerPeriod: map[string]int{},
	}
	periodFormat := "2006-01"
	if group == GroupDay {
		periodFormat = "2006-01-02"
	}
	for _, r := range rows {
		ts := r.Timestamp.UTC()
		out.Dates = append(out.Dates, ts.Format("2006-01-02"))
		out.ROIPercent = append(out.ROIPercent, r.ROIPercent)
		out.AvailabilityGain = append(out.AvailabilityGain, r.AvailabilityGain)
		out.PerformanceGain = append(out.PerformanceGain, r.PerformanceGain)
		out.CloudSavings = append(out.CloudSavings, r.CloudSavings)
		out.ProductivityGain = append(out.ProductivityGain, r.ProductivityGain)
		out.CalculationsPerPeriod[ts.Format(periodFormat)]++
	}
	return out
}
