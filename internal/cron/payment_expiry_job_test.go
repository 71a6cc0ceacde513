package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type fakeExpirer struct {
	expired int64
	err     error
	called  int
}

func (f *fakeExpirer) ExpireStale(context.Context) (int64, error) {
	f.called++
	return f.expired, f.err
}

func TestPaymentExpiryJobRuns(t *testing.T) {
	expirer := &fakeExpirer{expired: 3}
	job, err := NewPaymentExpiryJob(PaymentExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: expirer,
	})
	if err != nil {
		t.Fatalf("NewPaymentExpiryJob: %v", err)
	}
	if job.Name() != "payment-expiry" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if expirer.called != 1 {
		t.Fatalf("expected one call, got %d", expirer.called)
	}
}

func TestPaymentExpiryJobPropagatesErrors(t *testing.T) {
	job, err := NewPaymentExpiryJob(PaymentExpiryJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: &fakeExpirer{err: errors.New("boom")},
	})
	if err != nil {
		t.Fatalf("NewPaymentExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestPaymentExpiryJobRequiresPayments(t *testing.T) {
	if _, err := NewPaymentExpiryJob(PaymentExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	}); err == nil {
		t.Fatal("expected error without payments service")
	}
}
