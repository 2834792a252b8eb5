package observability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the dashboard collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiDuration   *prometheus.HistogramVec
	graphBuilds   *prometheus.CounterVec
	graphNodes    prometheus.Gauge
	graphEdges    prometheus.Gauge
	graphDangling prometheus.Gauge
	saves         *prometheus.CounterVec
}

// New creates the collectors and registers them in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atendente_api_requests_total",
				Help: "Backend requests by method, route and status (0 for transport failures)",
			},
			[]string{"method", "route", "status"},
		),
		apiDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atendente_api_request_duration_seconds",
				Help:    "Duration of backend requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		graphBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atendente_graph_builds_total",
				Help: "Flow graph builds by mode",
			},
			[]string{"mode"},
		),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atendente_graph_nodes",
			Help: "Nodes in the last built flow graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atendente_graph_edges",
			Help: "Edges in the last built flow graph",
		}),
		graphDangling: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "atendente_graph_dangling_options",
			Help: "Options pointing to unknown steps in the last built flow graph",
		}),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atendente_step_saves_total",
				Help: "Step saves by result",
			},
			[]string{"result"},
		),
	}
	m.registry.MustRegister(
		m.apiRequests, m.apiDuration,
		m.graphBuilds, m.graphNodes, m.graphEdges, m.graphDangling,
		m.saves,
	)
	return m
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one backend call. route is the path template, not the concrete path.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveBuild records a rebuilt graph.
func (m *Metrics) ObserveBuild(g *flowgraph.Graph) {
	if m == nil || g == nil {
		return
	}
	mode := "collapsed"
	if g.ExpandAll {
		mode = "expand_all"
	}
	m.graphBuilds.WithLabelValues(mode).Inc()
	m.graphNodes.Set(float64(len(g.Nodes)))
	m.graphEdges.Set(float64(len(g.Edges)))
	m.graphDangling.Set(float64(len(g.Dangling)))
}

// ObserveSave records the outcome of a step save.
func (m *Metrics) ObserveSave(err error) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(SaveResult(err)).Inc()
}

// SaveResult classifies a save error into a low-cardinality label.
func SaveResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrSaveInProgress):
		return "conflict"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrDanglingOption), errors.Is(err, domain.ErrEditorClosed):
		return "invalid"
	default:
		return "error"
	}
}
