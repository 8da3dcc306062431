package promobs

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/searchgpt/providers/observability"
)

// labelsByAttr maps attribute keys to Prometheus label names.
var labelsByAttr = map[string]string{
	observability.AttrToolName:    "tool",
	observability.AttrToolOutcome: "outcome",
	observability.AttrLLMProvider: "provider",
}

// knownMetrics lists the label set of every metric emitted by the agent.
var knownMetrics = map[string]struct {
	help      string
	labels    []string
	histogram bool
}{
	observability.MetricToolDispatchTotal: {
		help:   "Tool calls dispatched, by tool and outcome.",
		labels: []string{"tool", "outcome"},
	},
	observability.MetricToolDispatchSeconds: {
		help:      "Tool call latency in seconds.",
		labels:    []string{"tool"},
		histogram: true,
	},
	observability.MetricModelRoundsTotal: {
		help:   "Model calls made by the orchestration loop.",
		labels: []string{"provider"},
	},
}

// Observer is an observability.Provider whose metrics land in a Prometheus registry.
type Observer struct {
	observability.Tracer
	observability.Logger

	registry   *prometheus.Registry
	mu         sync.Mutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

var _ observability.Provider = (*Observer)(nil)

// New wraps base, replacing its metrics with Prometheus collectors registered
// on a fresh registry that also carries the Go and process collectors.
func New(base observability.Provider) *Observer {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Observer{
		Tracer:     base,
		Logger:     base,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

// Handler serves the registry for scraping.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *Observer) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()

	vec, ok := o.counters[name]
	if !ok {
		def := knownMetrics[name]
		vec = prometheus.NewCounterVec(prometheus.CounterOpts{Name: sanitize(name), Help: helpFor(name, def.help)}, def.labels)
		o.registry.MustRegister(vec)
		o.counters[name] = vec
	}
	return counter{vec: vec, labels: knownMetrics[name].labels}
}

func (o *Observer) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()

	vec, ok := o.histograms[name]
	if !ok {
		def := knownMetrics[name]
		vec = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    sanitize(name),
			Help:    helpFor(name, def.help),
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, def.labels)
		o.registry.MustRegister(vec)
		o.histograms[name] = vec
	}
	return histogram{vec: vec, labels: knownMetrics[name].labels}
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []string
}

func (c counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	c.vec.With(labelValues(c.labels, attrs)).Add(float64(value))
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []string
}

func (h histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.vec.With(labelValues(h.labels, attrs)).Observe(value)
}

// labelValues fills every declared label, leaving unmatched ones empty.
func labelValues(labels []string, attrs []observability.Attribute) prometheus.Labels {
	values := make(prometheus.Labels, len(labels))
	for _, label := range labels {
		values[label] = ""
	}
	for _, attr := range attrs {
		label, ok := labelsByAttr[attr.Key]
		if !ok {
			continue
		}
		if _, declared := values[label]; !declared {
			continue
		}
		if s, isString := attr.Value.(string); isString {
			values[label] = s
		}
	}
	return values
}

func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func helpFor(name, help string) string {
	if help != "" {
		return help
	}
	return name
}
