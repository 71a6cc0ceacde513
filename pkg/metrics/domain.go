package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business events: saved calculations, payment
// transitions and chatbot calls.
type DomainMetrics struct {
	calculations *prometheus.CounterVec
	payments     *prometheus.CounterVec
	chatbot      *prometheus.CounterVec
	gateDenials  prometheus.Counter
}

// NewDomainMetrics registers the business counters on the provided registerer.
func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	calculations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roi_calculations_total",
		Help: "Saved ROI calculations by mode.",
	}, []string{"mode"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roi_payments_total",
		Help: "Payment status transitions by resulting status and source.",
	}, []string{"status", "source"})
	chatbot := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "roi_chatbot_requests_total",
		Help: "Chatbot requests by outcome.",
	}, []string{"outcome"})
	gateDenials := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roi_usage_gate_denials_total",
		Help: "Full calculations refused because free usage was exhausted.",
	})
	reg.MustRegister(calculations, payments, chatbot, gateDenials)
	return &DomainMetrics{
		calculations: calculations,
		payments:     payments,
		chatbot:      chatbot,
		gateDenials:  gateDenials,
	}
}

// IncCalculation counts a persisted calculation.
func (d *DomainMetrics) IncCalculation(mode string) {
	if d == nil || d.calculations == nil {
		return
	}
	d.calculations.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncPayment counts a payment reaching status through source (verify, webhook, admin, cron).
func (d *DomainMetrics) IncPayment(status, source string) {
	if d == nil || d.payments == nil {
		return
	}
	d.payments.WithLabelValues(normalizeLabel(status), normalizeLabel(source)).Inc()
}

// IncChatbot counts a chatbot request outcome.
func (d *DomainMetrics) IncChatbot(outcome string) {
	if d == nil || d.chatbot == nil {
		return
	}
	d.chatbot.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncGateDenial counts a refused full calculation.
func (d *DomainMetrics) IncGateDenial() {
	if d == nil || d.gateDenials == nil {
		return
	}
	d.gateDenials.Inc()
}
