package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ChatMetrics records messaging and realtime activity.
type ChatMetrics struct {
	messagesSent  *prometheus.CounterVec
	notifications *prometheus.CounterVec
	wsConnections prometheus.Gauge
}

// NewChatMetrics registers the chat metrics on the provided registerer.
func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	if reg == nil {
		return &ChatMetrics{}
	}
	messagesSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_messages_sent_total",
		Help: "Messages appended to conversations.",
	}, []string{"transport"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notifications_created_total",
		Help: "Notifications persisted by the dispatcher.",
	}, []string{"type"})
	wsConnections := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_connections",
		Help: "Currently connected websocket clients.",
	})
	reg.MustRegister(messagesSent, notifications, wsConnections)
	return &ChatMetrics{
		messagesSent:  messagesSent,
		notifications: notifications,
		wsConnections: wsConnections,
	}
}

// IncMessageSent increments the sent counter for the given transport label.
func (c *ChatMetrics) IncMessageSent(transport string) {
	if c == nil || c.messagesSent == nil {
		return
	}
	c.messagesSent.WithLabelValues(normalizeLabel(transport)).Inc()
}

// IncNotification increments the created counter for the notification type.
func (c *ChatMetrics) IncNotification(kind string) {
	if c == nil || c.notifications == nil {
		return
	}
	c.notifications.WithLabelValues(normalizeLabel(kind)).Inc()
}

// ConnOpened records a new websocket connection.
func (c *ChatMetrics) ConnOpened() {
	if c == nil || c.wsConnections == nil {
		return
	}
	c.wsConnections.Inc()
}

// ConnClosed records a websocket disconnect.
func (c *ChatMetrics) ConnClosed() {
	if c == nil || c.wsConnections == nil {
		return
	}
	c.wsConnections.Dec()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
