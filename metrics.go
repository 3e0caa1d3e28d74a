package cordial

import (
	"log/slog"

	"github.com/hashicorp/go-metrics"
)

var (
	// MetricCordialConnsActive tracks how many connection identifiers
	// are currently allocated.
	MetricCordialConnsActive        = []string{"cordial", "conns", "active"}
	MetricCordialConnExhaustedCount = []string{"cordial", "conns", "exhausted", "count"}
	MetricCordialCommandOutCount    = []string{"cordial", "commands", "out", "count"}
	MetricCordialCommandQueueDepth  = []string{"cordial", "commands", "queue", "depth"}
	MetricCordialStartupCount       = []string{"cordial", "sessions", "startup", "count"}
	MetricCordialStartupErrorCount  = []string{"cordial", "sessions", "startup", "error", "count"}
	MetricCordialTerminateCount     = []string{"cordial", "sessions", "terminate", "count"}
	MetricCordialCancelOutCount     = []string{"cordial", "cancel", "out", "count"}
)

type TelemetryLabel string

var (
	LabelError     TelemetryLabel = "error"
	LabelCommand   TelemetryLabel = "command"
	LabelConnID    TelemetryLabel = "conn_id"
	LabelUser      TelemetryLabel = "user"
	LabelStatement TelemetryLabel = "statement"
	LabelPortal    TelemetryLabel = "portal"
)

func (lab TelemetryLabel) M(val string) metrics.Label {
	return metrics.Label{Name: string(lab), Value: val}
}

func (lab TelemetryLabel) L(val any) slog.Attr {
	return slog.Attr{
		Key:   string(lab),
		Value: slog.AnyValue(val),
	}
}
