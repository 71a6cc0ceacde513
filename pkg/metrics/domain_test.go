package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDomainMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDomainMetrics(reg)
	m.IncCalculation("full")
	m.IncCalculation("full")
	m.IncPayment("completed", "webhook")
	m.IncChatbot("")
	m.IncGateDenial()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "roi_calculations_total", "mode", "full"); err != nil || got != 2 {
		t.Fatalf("expected 2 full calculations, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "roi_payments_total", "source", "webhook"); err != nil || got != 1 {
		t.Fatalf("expected 1 webhook payment, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "roi_chatbot_requests_total", "outcome", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty outcome to be labeled unknown, got %f (%v)", got, err)
	}
	mf := findMetricFamily(mfs, "roi_usage_gate_denials_total")
	if mf == nil || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one gate denial")
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var d *DomainMetrics
	d.IncCalculation("quick")
	d.IncGateDenial()
	NewDomainMetrics(nil).IncPayment("failed", "cron")

	var h *HTTPMetrics
	h.Observe(http.MethodGet, "/", 200, time.Millisecond)
}

func TestHTTPMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)
	m.Observe(http.MethodPost, "/api/v1/results/full", http.StatusCreated, 40*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "roi_http_requests_total", "status", "201"); err != nil || got != 1 {
		t.Fatalf("expected one 201 request, got %f (%v)", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "roi_http_request_duration_seconds", "route", "/api/v1/results/full"); err != nil || got <= 0 {
		t.Fatalf("expected latency observation, got %f (%v)", got, err)
	}
}

func TestEmptyLabelsFallBackToUnknown(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewHTTPMetrics(reg).Observe(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	NewDomainMetrics(reg).IncPayment("", "cron")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	if got, err := fetchCounterValue(mfs, "roi_http_requests_total", "route", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected unmatched route to be labeled unknown, got %f (%v)", got, err)
	}
	if got, err := fetchCounterValue(mfs, "roi_payments_total", "status", "unknown"); err != nil || got != 1 {
		t.Fatalf("expected empty status to be labeled unknown, got %f (%v)", got, err)
	}
}
