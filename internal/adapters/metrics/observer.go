package metrics

import (
	"net/http"
	"time"

	"github.com/bnema/neruai/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "neru"

// Observer records exchange and tool-call metrics on its own registry.
type Observer struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	rounds    prometheus.Histogram
	latency   *prometheus.HistogramVec
	toolCalls *prometheus.CounterVec
}

var _ ports.ExchangeObserver = (*Observer)(nil)

func NewObserver() *Observer {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Observer{
		registry: registry,
		exchanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "Total number of exchanges by outcome",
			},
			[]string{"outcome"},
		),
		rounds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_tool_rounds",
				Help:      "Tool rounds needed per exchange",
				Buckets:   []float64{0, 1, 2, 3, 4, 5},
			},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Exchange duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"outcome"},
		),
		toolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tool_calls_total",
				Help:      "Total number of tool calls by tool and outcome",
			},
			[]string{"tool", "outcome"},
		),
	}
}

func (o *Observer) ObserveExchange(outcome string, rounds int, elapsed time.Duration) {
	o.exchanges.WithLabelValues(outcome).Inc()
	o.rounds.Observe(float64(rounds))
	o.latency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (o *Observer) ObserveToolCall(tool string, outcome string) {
	o.toolCalls.WithLabelValues(tool, outcome).Inc()
}

func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{Registry: o.registry})
}
