package payments

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sunkaracharan/roifinal/pkg/enums"
	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
)

func TestEventAmount(t *testing.T) {
	cases := []struct {
		body string
		want string
		ok   bool
	}{
		{`{"payload":{"payment":{"entity":{"amount":100}}}}`, "1", true},
		{`{"payload":{"payment":{"entity":{"amount":"2.50"}}}}`, "2.5", true},
		{`{"payload":{"payment":{"entity":{"amount":3.75}}}}`, "3.75", true},
		{`{"payload":{"payment":{"entity":{"amount":"abc"}}}}`, "0", true},
		{`{"payload":{"payment":{"entity":{}}}}`, "", false},
	}
	for _, tc := range cases {
		evt, err := ParseEvent([]byte(tc.body))
		require.NoError(t, err)
		got, ok := evt.Amount()
		require.Equal(t, tc.ok, ok, tc.body)
		if tc.ok {
			require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "%s: got %s", tc.body, got)
		}
	}
}

func TestParseEventRejectsGarbage(t *testing.T) {
	_, err := ParseEvent([]byte("{"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestHandleEventIgnoresOtherEvents(t *testing.T) {
	f := newFixture(t, "")
	evt, err := ParseEvent([]byte(`{"event":"order.paid"}`))
	require.NoError(t, err)
	status, err := f.svc.HandleEvent(context.Background(), evt)
	require.NoError(t, err)
	require.Equal(t, WebhookIgnored, status)
}

func TestHandleEventCompletesPendingPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	userID := f.exhaustedUser(t, "hooked")
	checkout, err := f.svc.Create(ctx, userID)
	require.NoError(t, err)

	stored, err := f.repo.FindForUser(ctx, userID, checkout.PaymentID)
	require.NoError(t, err)
	require.NoError(t, f.conn.Exec("UPDATE payments SET gateway_payment_id = ? WHERE id = ?", "pay_hook", stored.ID).Error)

	missing, err := ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_other","amount":100}}}}`))
	require.NoError(t, err)
	_, err = f.svc.HandleEvent(ctx, missing)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	evt, err := ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_hook","amount":250}}}}`))
	require.NoError(t, err)
	status, err := f.svc.HandleEvent(ctx, evt)
	require.NoError(t, err)
	require.Equal(t, WebhookProcessed, status)

	stored, err = f.repo.FindForUser(ctx, userID, checkout.PaymentID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusCompleted, stored.Status)
	require.True(t, stored.Amount.Equal(decimal.RequireFromString("2.50")))
	require.NotNil(t, stored.PaidAt)

	usageStatus, err := f.usage.Status(ctx, userID)
	require.NoError(t, err)
	require.True(t, usageStatus.UnlimitedAccess)

	_, err = f.svc.HandleEvent(ctx, evt)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestHandleEventRejectsAmountOutOfRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, "")
	userID := f.exhaustedUser(t, "whale")
	checkout, err := f.svc.Create(ctx, userID)
	require.NoError(t, err)
	stored, err := f.repo.FindForUser(ctx, userID, checkout.PaymentID)
	require.NoError(t, err)
	require.NoError(t, f.conn.Exec("UPDATE payments SET gateway_payment_id = ? WHERE id = ?", "pay_big", stored.ID).Error)

	for _, amount := range []string{`10000000000`, `"100000000.00"`, `-5`} {
		evt, err := ParseEvent([]byte(`{"event":"payment.captured","payload":{"payment":{"entity":{"id":"pay_big","amount":` + amount + `}}}}`))
		require.NoError(t, err)
		_, err = f.svc.HandleEvent(ctx, evt)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), amount)
	}

	stored, err = f.repo.FindForUser(ctx, userID, checkout.PaymentID)
	require.NoError(t, err)
	require.Equal(t, enums.PaymentStatusPending, stored.Status)
}
