package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DomainsCreatedTotal    prometheus.Counter
	JudgmentsRecordedTotal *prometheus.CounterVec
	TierTransitionsTotal   *prometheus.CounterVec
	BlacklistOpsTotal      *prometheus.CounterVec
	UpdateConflictsTotal   prometheus.Counter
	BlacklistCacheHits     prometheus.Counter
	BlacklistCacheMisses   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		DomainsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_domainquality_domains_created_total",
			Help: "Total number of domain records created on first sighting",
		}),
		JudgmentsRecordedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "northstar_domainquality_judgments_recorded_total",
			Help: "Total number of judgments folded into domain aggregates",
		}, []string{"confidence"}),
		TierTransitionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "northstar_domainquality_tier_transitions_total",
			Help: "Total number of quality tier transitions",
		}, []string{"to"}),
		BlacklistOpsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "northstar_domainquality_blacklist_ops_total",
			Help: "Total number of blacklist status operations",
		}, []string{"op"}),
		UpdateConflictsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_domainquality_update_conflicts_total",
			Help: "Total number of optimistic update conflicts retried",
		}),
		BlacklistCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_domainquality_blacklist_cache_hits_total",
			Help: "Total number of blacklist cache hits",
		}),
		BlacklistCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_domainquality_blacklist_cache_misses_total",
			Help: "Total number of blacklist cache misses",
		}),
	}
}

func (m *Metrics) IncrementDomainsCreated() {
	m.DomainsCreatedTotal.Inc()
}

func (m *Metrics) IncrementJudgmentsRecorded(highConfidence bool) {
	label := "low"
	if highConfidence {
		label = "high"
	}
	m.JudgmentsRecordedTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) IncrementTierTransitions(to string) {
	m.TierTransitionsTotal.WithLabelValues(to).Inc()
}

func (m *Metrics) IncrementBlacklistOps(op string) {
	m.BlacklistOpsTotal.WithLabelValues(op).Inc()
}

func (m *Metrics) IncrementUpdateConflicts() {
	m.UpdateConflictsTotal.Inc()
}

func (m *Metrics) IncrementBlacklistCacheHits() {
	m.BlacklistCacheHits.Inc()
}

func (m *Metrics) IncrementBlacklistCacheMisses() {
	m.BlacklistCacheMisses.Inc()
}
