// Package dbtest opens throwaway sqlite databases with the service schema for
// repository and service tests.
package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// The uuid defaults and enum types of the Postgres migrations do not exist in
// sqlite, so the schema is restated here with portable types.
var schema = []string{
	`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT 1,
		is_staff BOOLEAN NOT NULL DEFAULT 0,
		is_superuser BOOLEAN NOT NULL DEFAULT 0,
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE usage_limits (
		user_id TEXT PRIMARY KEY,
		full_calculations_used INTEGER NOT NULL DEFAULT 0,
		unlimited_access BOOLEAN NOT NULL DEFAULT 0,
		unlimited_access_purchased_at DATETIME,
		last_reset_date DATETIME NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE roi_results (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		mode TEXT NOT NULL,
		annual_revenue REAL NOT NULL,
		gross_margin REAL NOT NULL,
		container_app_fraction REAL NOT NULL,
		annual_cloud_spend REAL NOT NULL,
		compute_spend_fraction REAL NOT NULL,
		cost_sensitive_fraction REAL NOT NULL,
		num_engineers INTEGER NOT NULL,
		engineer_cost_per_year REAL NOT NULL,
		ops_time_fraction REAL NOT NULL,
		ops_toil_fraction REAL NOT NULL,
		toil_reduction_fraction REAL NOT NULL,
		avg_response_time_sec REAL NOT NULL,
		exec_time_influence_fraction REAL NOT NULL,
		lat_red_container REAL NOT NULL,
		lat_red_serverless REAL NOT NULL,
		revenue_lift_per_100ms REAL NOT NULL,
		current_fci_fraction REAL NOT NULL,
		fci_reduction_fraction REAL NOT NULL,
		cost_per_1pct_fci REAL NOT NULL,
		cloud_savings REAL NOT NULL,
		productivity_gain REAL NOT NULL,
		performance_gain REAL NOT NULL,
		availability_gain REAL NOT NULL,
		total_annual_gain REAL NOT NULL,
		roi_percent REAL NOT NULL,
		payback_months REAL NOT NULL,
		payment_required BOOLEAN NOT NULL DEFAULT 0,
		payment_completed BOOLEAN NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		roi_result_id TEXT,
		amount TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'INR',
		payment_id TEXT NOT NULL UNIQUE,
		method TEXT NOT NULL DEFAULT 'razorpay',
		status TEXT NOT NULL DEFAULT 'pending',
		transaction_id TEXT,
		gateway_order_id TEXT,
		gateway_payment_id TEXT,
		gateway_signature TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		paid_at DATETIME
	)`,
}

// Open returns an isolated in-memory database with every table created.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, stmt := range schema {
		if err := conn.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}
