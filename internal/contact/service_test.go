package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pkgerrors "github.com/sunkaracharan/roifinal/pkg/errors"
	"github.com/sunkaracharan/roifinal/pkg/logger"
)

func TestSubmitLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("info"), Output: &buf})
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewService(logg, func() time.Time { return fixed })

	ack, err := svc.Submit(context.Background(), Request{
		Name:    "Dana",
		Email:   "Dana@Example.com",
		Message: "Interested in a demo.",
	})
	require.NoError(t, err)
	require.Equal(t, fixed, ack.ReceivedAt)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "contact message received", entry["message"])
	require.Equal(t, "dana@example.com", entry["contact_email"])
	require.Equal(t, ack.ReferenceID.String(), entry["contact_ref"])
}

func TestSubmitRejectsBlankFields(t *testing.T) {
	svc := NewService(nil, nil)
	_, err := svc.Submit(context.Background(), Request{Name: "Dana", Email: "d@example.com", Message: "   "})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
