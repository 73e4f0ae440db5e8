package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

const metricsNamespace = "inventory_api"

var (
	logStatements     *prometheus.CounterVec //nolint:gochecknoglobals
	logStatementsOnce sync.Once              //nolint:gochecknoglobals
)

// PrometheusHook counts every leveled log statement in
// inventory_api_log_statements_total.
type PrometheusHook struct {
	counter *prometheus.CounterVec
}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level == zerolog.NoLevel || h.counter == nil {
		return
	}

	h.counter.WithLabelValues(level.String()).Inc()
}

// NewPrometheusHook registers the log counter on first use. The service label
// is fixed by the first caller; the default registry allows one registration.
func NewPrometheusHook(service string) PrometheusHook {
	logStatementsOnce.Do(func() {
		logStatements = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   metricsNamespace,
				Name:        "log_statements_total",
				Help:        "Log statements of the inventory API by level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return PrometheusHook{counter: logStatements}
}
