// Package metrics exports accumulator activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/undocalc/internal/engine/history"
)

const namespace = "undocalc"

// Collector counts accumulator events. It implements history.Observer.
type Collector struct {
	registry *prometheus.Registry

	executed  *prometheus.CounterVec
	undone    *prometheus.CounterVec
	redone    *prometheus.CounterVec
	depth     *prometheus.GaugeVec
	lastValue prometheus.Gauge
}

// New creates a collector registered on its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		executed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "executed_total",
			Help:      "Operations executed, by kind.",
		}, []string{"op"}),
		undone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "undo_total",
			Help:      "Undo requests, by result.",
		}, []string{"result"}),
		redone: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "redo_total",
			Help:      "Redo requests, by result.",
		}, []string{"result"}),
		depth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "history_depth",
			Help:      "Entries on the undo and redo stacks.",
		}, []string{"stack"}),
		lastValue: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "accumulator",
			Name:      "value",
			Help:      "Current accumulator value.",
		}),
	}

	c.registry.MustRegister(c.executed, c.undone, c.redone, c.depth, c.lastValue)
	return c
}

// Observe records one accumulator event.
func (c *Collector) Observe(ev history.Event) {
	switch ev.Kind {
	case history.EventExecute:
		c.executed.WithLabelValues(ev.Op.String()).Inc()
	case history.EventUndo:
		c.undone.WithLabelValues(result(ev.Applied)).Inc()
	case history.EventRedo:
		c.redone.WithLabelValues(result(ev.Applied)).Inc()
	}

	c.depth.WithLabelValues("undo").Set(float64(ev.UndoDepth))
	c.depth.WithLabelValues("redo").Set(float64(ev.RedoDepth))
	c.lastValue.Set(ev.Value)
}

func result(applied bool) string {
	if applied {
		return "applied"
	}
	return "noop"
}

// Registry returns the registry the collector's metrics live on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns a router serving /metrics and /health.
func (c *Collector) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))

	return r
}
