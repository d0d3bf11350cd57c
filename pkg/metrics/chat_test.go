package metrics

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestChatMetricsExportsCountersAndGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewChatMetrics(reg)

	metrics.IncMessageSent("rest")
	metrics.IncMessageSent("rest")
	metrics.IncMessageSent("")
	metrics.IncNotification("new_message")
	metrics.ConnOpened()
	metrics.ConnOpened()
	metrics.ConnClosed()

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "chat_messages_sent_total", "transport", "rest"); err != nil {
		t.Fatalf("fetch sent: %v", err)
	} else if got != 2 {
		t.Fatalf("expected sent=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "chat_messages_sent_total", "transport", "unknown"); err != nil {
		t.Fatalf("fetch sent unknown: %v", err)
	} else if got != 1 {
		t.Fatalf("expected unknown=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "notifications_created_total", "type", "new_message"); err != nil {
		t.Fatalf("fetch notifications: %v", err)
	} else if got != 1 {
		t.Fatalf("expected notifications=1, got %f", got)
	}

	if got := fetchGaugeValue(mfs, "realtime_connections"); got != 1 {
		t.Fatalf("expected 1 open connection, got %f", got)
	}
}

func TestChatMetricsNilRegistererIsNoop(t *testing.T) {
	metrics := NewChatMetrics(nil)
	metrics.IncMessageSent("rest")
	metrics.IncNotification("new_message")
	metrics.ConnOpened()
	metrics.ConnClosed()

	var nilMetrics *ChatMetrics
	nilMetrics.IncMessageSent("rest")
	nilMetrics.ConnClosed()
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchGaugeValue(mfs []*dto.MetricFamily, name string) float64 {
	mf := findMetricFamily(mfs, name)
	if mf == nil || len(mf.GetMetric()) == 0 {
		return -1
	}
	return mf.GetMetric()[0].GetGauge().GetValue()
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
