package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	RestrictionQueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "restriction_queries_total", Help: "Restriction lookups by variant and result"}, []string{"variant", "result"})
	RestrictionQueryLatencyUs = prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "restriction_query_latency_us", Help: "Restriction lookup latency in microseconds", Buckets: prometheus.ExponentialBuckets(0.5, 2, 16)}, []string{"variant", "kind"})
	RestrictionBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "restriction_batch_size", Help: "Assets per batch lookup", Buckets: prometheus.ExponentialBuckets(1, 4, 10)})
	RestrictionIndexAssets = prometheus.NewGauge(prometheus.GaugeOpts{Name: "restriction_index_assets", Help: "Assets present in the active restriction index"})
	RestrictionIndexTransitions = prometheus.NewGauge(prometheus.GaugeOpts{Name: "restriction_index_transitions", Help: "State transitions in the active restriction index"})
	RestrictionReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "restriction_reloads_total", Help: "Restriction source reloads by outcome"}, []string{"outcome"})
	ComplianceBlocksTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "compliance_blocks_total"})
	RestrictedActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "restricted_actions_total", Help: "Blocked trading actions by reason"}, []string{"reason"})
	AdminDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "admin_denied_total", Help: "Admin endpoint requests rejected by the CIDR gate"})
	BacktestIntentsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "backtest_intents_total", Help: "Replayed order intents by outcome"}, []string{"outcome"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		RestrictionQueriesTotal, RestrictionQueryLatencyUs, RestrictionBatchSize,
		RestrictionIndexAssets, RestrictionIndexTransitions, RestrictionReloadsTotal,
		ComplianceBlocksTotal, RestrictedActionsTotal, AdminDeniedTotal, BacktestIntentsTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("Prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
