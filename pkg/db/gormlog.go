package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sunkaracharan/roifinal/pkg/logger"
)

// gormLogger sends GORM's query log through the service logger. Only
// failed statements and statements slower than slowThreshold are written;
// record-not-found is an expected outcome and stays silent.
type gormLogger struct {
	logg          *logger.Logger
	slowThreshold time.Duration
}

func newGormLogger(logg *logger.Logger, slowThreshold time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &gormLogger{logg: logg, slowThreshold: slowThreshold}
}

func (g *gormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return g }

func (g *gormLogger) Info(ctx context.Context, msg string, _ ...any) { g.logg.Debug(ctx, msg) }

func (g *gormLogger) Warn(ctx context.Context, msg string, _ ...any) { g.logg.Warn(ctx, msg) }

func (g *gormLogger) Error(ctx context.Context, msg string, _ ...any) {
	g.logg.Error(ctx, msg, nil)
}

func (g *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := g.slowThreshold > 0 && elapsed > g.slowThreshold
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	ctx = g.logg.WithFields(ctx, map[string]any{
		"sql":         sql,
		"rows":        rows,
		"duration_ms": elapsed.Milliseconds(),
	})
	if failed {
		g.logg.Error(ctx, "query failed", err)
		return
	}
	g.logg.Warn(ctx, "slow query")
}
