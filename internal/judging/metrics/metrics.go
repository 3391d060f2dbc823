package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	BatchesProcessedTotal prometheus.Counter
	ResultsJudgedTotal    *prometheus.CounterVec
	ResultsRejectedTotal  *prometheus.CounterVec
	DomainFailuresTotal   prometheus.Counter
	BatchDuration         prometheus.Histogram
	ConfidenceScores      prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		BatchesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_judging_batches_processed_total",
			Help: "Total number of result batches processed",
		}),
		ResultsJudgedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "northstar_judging_results_judged_total",
			Help: "Total number of search results judged",
		}, []string{"verdict"}),
		ResultsRejectedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "northstar_judging_results_rejected_total",
			Help: "Total number of search results rejected before judging",
		}, []string{"reason"}),
		DomainFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "northstar_judging_domain_failures_total",
			Help: "Total number of domain groups that failed processing",
		}),
		BatchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "northstar_judging_batch_duration_seconds",
			Help:    "Wall-clock duration of batch processing",
			Buckets: prometheus.DefBuckets,
		}),
		ConfidenceScores: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "northstar_judging_confidence_scores",
			Help:    "Distribution of computed confidence scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
	}
}

func (m *Metrics) IncrementBatchesProcessed() {
	m.BatchesProcessedTotal.Inc()
}

func (m *Metrics) IncrementResultsJudged(highConfidence bool) {
	verdict := "low_confidence"
	if highConfidence {
		verdict = "high_confidence"
	}
	m.ResultsJudgedTotal.WithLabelValues(verdict).Inc()
}

func (m *Metrics) IncrementResultsRejected(reason string) {
	m.ResultsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementDomainFailures() {
	m.DomainFailuresTotal.Inc()
}

func (m *Metrics) ObserveBatchDuration(seconds float64) {
	m.BatchDuration.Observe(seconds)
}

func (m *Metrics) ObserveConfidenceScore(score float64) {
	m.ConfidenceScores.Observe(score)
}
