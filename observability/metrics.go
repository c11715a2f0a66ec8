package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ClientCountName  = "chat_client_count"
	MessageCountName = "chat_message_count"
)

// Metrics exposes the chat counters to Prometheus.
type Metrics struct {
	clients  prometheus.Gauge
	messages prometheus.Counter
}

// NewMetrics registers the collectors on reg. Passing a dedicated registry
// keeps tests independent from the global one.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: ClientCountName,
			Help: "Number of connected clients",
		}),
		messages: factory.NewCounter(prometheus.CounterOpts{
			Name: MessageCountName,
			Help: "Number of chat messages relayed",
		}),
	}
}

func (m *Metrics) IncrementActiveClients() { m.clients.Inc() }
func (m *Metrics) DecrementActiveClients() { m.clients.Dec() }
func (m *Metrics) IncrementMessagesSent()  { m.messages.Inc() }
