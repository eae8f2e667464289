package metrics

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metric types accepted by Register and RegisterWithLabels.
const (
	Counter   = "Counter"
	Gauge     = "Gauge"
	Histogram = "Histogram"
)

// PrometheusMetrics keeps named Prometheus collectors in its own registry
// so several instances can coexist in one process.
type PrometheusMetrics struct {
	mu            sync.RWMutex
	registry      *prometheus.Registry
	log           *slog.Logger
	counters      map[string]prometheus.Counter
	counterVecs   map[string]*prometheus.CounterVec
	gauges        map[string]prometheus.Gauge
	histograms    map[string]prometheus.Histogram
	histogramVecs map[string]*prometheus.HistogramVec
	customBuckets map[string][]float64
}

// NewPrometheusMetrics creates an empty registry with Go runtime and process collectors.
func NewPrometheusMetrics(log *slog.Logger) *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		registry:      registry,
		log:           log,
		counters:      make(map[string]prometheus.Counter),
		counterVecs:   make(map[string]*prometheus.CounterVec),
		gauges:        make(map[string]prometheus.Gauge),
		histograms:    make(map[string]prometheus.Histogram),
		histogramVecs: make(map[string]*prometheus.HistogramVec),
		customBuckets: make(map[string][]float64),
	}
}

// SetCustomBuckets sets the buckets used when the named histogram is registered.
func (p *PrometheusMetrics) SetCustomBuckets(name string, buckets []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.customBuckets[name] = buckets
}

func (p *PrometheusMetrics) buckets(name string) []float64 {
	if b, ok := p.customBuckets[name]; ok {
		return b
	}
	return prometheus.DefBuckets
}

// Register creates and registers an unlabeled metric.
func (p *PrometheusMetrics) Register(name, metricType, help string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help})
		p.registry.MustRegister(counter)
		p.counters[name] = counter
	case Gauge:
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
		p.registry.MustRegister(gauge)
		p.gauges[name] = gauge
	case Histogram:
		histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: p.buckets(name),
		})
		p.registry.MustRegister(histogram)
		p.histograms[name] = histogram
	default:
		p.log.Error("unknown metric type", slog.String("type", metricType), slog.String("name", name))
	}
}

// RegisterWithLabels creates and registers a labeled metric.
func (p *PrometheusMetrics) RegisterWithLabels(name, metricType, help string, labels []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch metricType {
	case Counter:
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help}, labels)
		p.registry.MustRegister(vec)
		p.counterVecs[name] = vec
	case Histogram:
		vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: p.buckets(name),
		}, labels)
		p.registry.MustRegister(vec)
		p.histogramVecs[name] = vec
	default:
		p.log.Error("unsupported labeled metric type", slog.String("type", metricType), slog.String("name", name))
	}
}

// Record adds to a counter, sets a gauge or observes a histogram.
func (p *PrometheusMetrics) Record(name string, value float64) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if counter, ok := p.counters[name]; ok {
		counter.Add(value)
		return
	}
	if gauge, ok := p.gauges[name]; ok {
		gauge.Set(value)
		return
	}
	if histogram, ok := p.histograms[name]; ok {
		histogram.Observe(value)
	}
}

// RecordWithLabels is Record for labeled metrics.
func (p *PrometheusMetrics) RecordWithLabels(name string, value float64, labelValues ...string) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if vec, ok := p.counterVecs[name]; ok {
		vec.WithLabelValues(labelValues...).Add(value)
		return
	}
	if vec, ok := p.histogramVecs[name]; ok {
		vec.WithLabelValues(labelValues...).Observe(value)
	}
}

// Handler exposes the registry for scraping.
func (p *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Gatherer gives tests access to collected values.
func (p *PrometheusMetrics) Gatherer() prometheus.Gatherer {
	return p.registry
}
