package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), buf.String())
	return entry
}

func TestErrorCarriesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithPaymentID(ctx, "pay-1")
	log.Error(ctx, "capture failed", errors.New("gateway timeout"))

	entry := decodeEntry(t, buf)
	require.Equal(t, "req-123", entry["request_id"])
	require.Equal(t, "pay-1", entry["payment_id"])
	require.Equal(t, "gateway timeout", entry["error"])
	require.Equal(t, "test", entry["service"])
	require.Contains(t, entry, "stack")
}

func TestWithFieldsRedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{
		"razorpay_signature": "abc123",
		"refresh_token":      "tok",
		"email":              "user@example.com",
	})
	log.Info(ctx, "payment verified")

	entry := decodeEntry(t, buf)
	require.Equal(t, redacted, entry["razorpay_signature"])
	require.Equal(t, redacted, entry["refresh_token"])
	require.Equal(t, "user@example.com", entry["email"])
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "test", Output: buf}).Warn(context.Background(), "slow")
	require.NotContains(t, decodeEntry(t, buf), "stack")

	buf.Reset()
	New(Options{ServiceName: "test", Output: buf, WarnStack: true}).Warn(context.Background(), "slow")
	require.Contains(t, decodeEntry(t, buf), "stack")
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("warn"), Output: buf})
	log.Info(context.Background(), "hidden")
	log.Debug(context.Background(), "hidden")
	require.Zero(t, buf.Len())
}

func TestConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	New(Options{ServiceName: "test", Format: "console", Output: buf}).Info(context.Background(), "hello")
	require.Contains(t, buf.String(), "hello")
	require.False(t, json.Valid(buf.Bytes()))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	require.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
	require.Equal(t, zerolog.WarnLevel, ParseLevel(" WARN "))
	require.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
}
