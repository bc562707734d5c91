package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the conversation engine.
type ChatMetrics struct {
	turnsTotal        *prometheus.CounterVec
	llmFailures       prometheus.Counter
	appointmentsTotal prometheus.Counter
	replyDelay        prometheus.Histogram
}

// NewChatMetrics registers the chat metric family on the given registerer.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "helptech",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total processed chat turns",
		}, []string{"mode", "status"}),
		llmFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "helptech",
			Subsystem: "chat",
			Name:      "llm_failures_total",
			Help:      "Total generative completion failures",
		}),
		appointmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "helptech",
			Subsystem: "chat",
			Name:      "appointments_created_total",
			Help:      "Total bookings persisted by the chat engine",
		}),
		replyDelay: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "helptech",
			Subsystem: "chat",
			Name:      "reply_delay_seconds",
			Help:      "Simulated typing delay applied before bot replies",
			Buckets:   []float64{0.1, 0.25, 0.5, 0.7, 0.85, 1},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.llmFailures, m.appointmentsTotal, m.replyDelay)
	return m
}

// ObserveTurn counts one processed turn.
func (m *ChatMetrics) ObserveTurn(mode, status string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(mode, status).Inc()
}

// ObserveLLMFailure counts a generative completion failure.
func (m *ChatMetrics) ObserveLLMFailure() {
	if m == nil {
		return
	}
	m.llmFailures.Inc()
}

// ObserveAppointment counts a persisted booking.
func (m *ChatMetrics) ObserveAppointment() {
	if m == nil {
		return
	}
	m.appointmentsTotal.Inc()
}

// ObserveReplyDelay records the typing delay applied to a reply.
func (m *ChatMetrics) ObserveReplyDelay(seconds float64) {
	if m == nil {
		return
	}
	m.replyDelay.Observe(seconds)
}
