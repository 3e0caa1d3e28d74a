package cordial

import (
	"log/slog"

	"github.com/hashicorp/go-metrics"
)

type config struct {
	idLo         uint32
	idHi         uint32
	logHandler   slog.Handler
	msink        metrics.MetricSink
	metricLabels []metrics.Label
}

// Option to pass to `NewClient`
type Option func(*config) error

// WithConnIDRange bounds the half-open range `[lo, hi)` that connection
// identifiers are drawn from. The default range supports tens of
// thousands of overlapping connections; narrow it when the surrounding
// system multiplexes several coordinators behind one identifier space.
func WithConnIDRange(lo, hi uint32) Option {
	return func(c *config) error {
		if lo >= hi {
			return ErrIDRangeEmpty
		}
		c.idLo = lo
		c.idHi = hi
		return nil
	}
}

// WithLog specifies which `slog.Handler` to use.
func WithLog(handler slog.Handler) Option {
	return func(c *config) error {
		c.logHandler = handler
		return nil
	}
}

// WithMetricSink allows you to chose how to collect the metrics emitted
// by your `Client`.
func WithMetricSink(ms metrics.MetricSink) Option {
	return func(c *config) error {
		if ms == nil {
			ms = &metrics.BlackholeSink{}
		}
		c.msink = ms
		return nil
	}
}

// WithMetricLabels adds static labels to all metrics produced by the
// `Client`.
func WithMetricLabels(labels []metrics.Label) Option {
	return func(c *config) error {
		c.metricLabels = labels
		return nil
	}
}
