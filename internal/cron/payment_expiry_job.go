package cron

import (
	"context"
	"fmt"

	"github.com/sunkaracharan/roifinal/pkg/logger"
)

type PaymentExpiryJobParams struct {
	Logger   *logger.Logger
	Payments paymentExpirer
}

type paymentExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

// NewPaymentExpiryJob fails checkouts that were never confirmed.
func NewPaymentExpiryJob(params PaymentExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	return &paymentExpiryJob{
		logg:     params.Logger,
		payments: params.Payments,
	}, nil
}

type paymentExpiryJob struct {
	logg     *logger.Logger
	payments paymentExpirer
}

func (j *paymentExpiryJob) Name() string { return "payment-expiry" }

func (j *paymentExpiryJob) Run(ctx context.Context) error {
	expired, err := j.payments.ExpireStale(ctx)
	if err != nil {
		return fmt.Errorf("payment expiry: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "payments_expired", expired)
	j.logg.Info(logCtx, "payment expiry complete")
	return nil
}
