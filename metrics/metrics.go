// Package metrics exposes prometheus counters and histograms for the chat flow.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Message kinds recorded by ObserveMessage.
const (
	KindAvailability = "availability"
	KindOutOfHours   = "out_of_hours"
	KindCompletion   = "completion"
)

// ChatMetrics counts HTTP requests, classified messages and gateway calls.
type ChatMetrics struct {
	requestsTotal  *prometheus.CounterVec
	messagesTotal  *prometheus.CounterVec
	gatewayLatency *prometheus.HistogramVec
	slotsOffered   prometheus.Histogram
}

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigbot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status code",
		}, []string{"route", "method", "status"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rigbot",
			Subsystem: "chat",
			Name:      "messages_total",
			Help:      "Chat messages by how they were answered",
		}, []string{"kind"}),
		gatewayLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rigbot",
			Subsystem: "gateway",
			Name:      "latency_seconds",
			Help:      "Latency of calendar and completion calls",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 12, 20},
		}, []string{"gateway", "outcome"}),
		slotsOffered: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rigbot",
			Subsystem: "chat",
			Name:      "available_slots",
			Help:      "Number of free slots found per availability question",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100, 200},
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.messagesTotal, m.gatewayLatency, m.slotsOffered)
	return m
}

func (m *ChatMetrics) ObserveRequest(route, method string, status int) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(route, method, statusLabel(status)).Inc()
}

func (m *ChatMetrics) ObserveMessage(kind string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(kind).Inc()
}

// ObserveGateway records one outbound call. gateway is "calendar" or "completion".
func (m *ChatMetrics) ObserveGateway(gateway string, seconds float64, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.gatewayLatency.WithLabelValues(gateway, outcome).Observe(seconds)
}

func (m *ChatMetrics) ObserveSlots(n int) {
	if m == nil {
		return
	}
	m.slotsOffered.Observe(float64(n))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
