package host

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semka",
			Subsystem: "host",
			Name:      "commands_total",
			Help:      "Commands run by the host, by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "semka",
			Subsystem: "host",
			Name:      "command_duration_seconds",
			Help:      "Command duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)
	documentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "semka",
			Subsystem: "tree",
			Name:      "document_transitions_total",
			Help:      "Documents entering each lifecycle state.",
		},
		[]string{"state"},
	)
)

// RegisterMetrics registers the host's metrics with the default Prometheus
// registry. It's safe to call more than once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(commands, commandDuration, documentTransitions)
	})
}

func recordCommand(kind, outcome string, duration time.Duration) {
	RegisterMetrics()
	commands.WithLabelValues(kind, outcome).Inc()
	commandDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
}

func recordTransition(state string) {
	RegisterMetrics()
	documentTransitions.WithLabelValues(state).Inc()
}
