package reporting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

const (
	SourceCache    = "cache"
	SourceDatabase = "database"

	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics karşılaştırma ve özet üretimi için Prometheus metrikleri.
// nil alıcıyla güvenle çağrılabilir.
type Metrics struct {
	comparisons *prometheus.CounterVec
	buildTime   *prometheus.HistogramVec
	cache       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	comparisons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bilanco_comparisons_total",
		Help: "Bilanço karşılaştırma istekleri, mod ve sonuca göre.",
	}, []string{"mode", "outcome"})
	buildTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bilanco_snapshot_build_duration_seconds",
		Help:    "Dönem özeti üretim süresi.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bilanco_snapshot_cache_total",
		Help: "Dönem özeti önbellek isabetleri.",
	}, []string{"result"})
	reg.MustRegister(comparisons, buildTime, cache)
	return &Metrics{comparisons: comparisons, buildTime: buildTime, cache: cache}
}

func (m *Metrics) IncComparison(mode, outcome string) {
	if m == nil || m.comparisons == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	m.comparisons.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) ObserveBuild(source string, d time.Duration) {
	if m == nil || m.buildTime == nil {
		return
	}
	m.buildTime.WithLabelValues(source).Observe(d.Seconds())
}

// ObserveCache yalnızca önbellek açıkken çağrılır.
func (m *Metrics) ObserveCache(result string) {
	if m == nil || m.cache == nil {
		return
	}
	m.cache.WithLabelValues(result).Inc()
}
