package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	a, b := &stubJob{name: "a"}, &stubJob{name: "b"}
	registry, err := NewRegistry(a, nil, b)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, registry.Names())

	jobs := registry.Jobs()
	jobs[0] = nil
	require.Equal(t, Job(a), registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "payment-expiry"}, &stubJob{name: "payment-expiry"})
	require.ErrorContains(t, err, "registered twice")
}

func TestRegistryOnly(t *testing.T) {
	registry, err := NewRegistry(&stubJob{name: "a"}, &stubJob{name: "b"}, &stubJob{name: "c"})
	require.NoError(t, err)

	subset, err := registry.Only("c", "a")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "c"}, subset.Names())

	_, err = registry.Only("missing")
	require.ErrorContains(t, err, "unknown cron job")
}
