// Package obs holds the runner's Prometheus metrics.
//
// The counters exist as soon as the package is linked; Init only attaches
// them to the default registry. A library caller that never calls Init pays
// nothing beyond counter increments.
package obs

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tasksRunTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmill_tasks_run_total",
			Help: "Tasks executed, labeled by the decision reason.",
		},
		[]string{"reason"},
	)

	tasksSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "taskmill_tasks_skipped_total",
		Help: "Tasks whose outputs were fresh and therefore skipped.",
	})

	runFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskmill_run_failures_total",
			Help: "Aborted runs, labeled by failure kind.",
		},
		[]string{"kind"},
	)
)

var initOnce sync.Once

// Init registers the metrics with the default Prometheus registry.
// Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(tasksRunTotal, tasksSkippedTotal, runFailuresTotal)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// TaskRan records an executed task and the reason it ran.
func TaskRan(reason string) {
	tasksRunTotal.WithLabelValues(reason).Inc()
}

// TaskSkipped records a skipped task.
func TaskSkipped() {
	tasksSkippedTotal.Inc()
}

// RunFailed records an aborted run.
// kind is one of "missing_input", "stat" or "task".
func RunFailed(kind string) {
	runFailuresTotal.WithLabelValues(kind).Inc()
}
