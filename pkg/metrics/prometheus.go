package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	QueriesTotal    *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	AnswerLatency   prometheus.Histogram
	FlightsFetched  prometheus.Counter
	NoMatchReplies  prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_queries_total",
			Help:      "The total number of assistant queries, by answering provider",
		}, []string{"provider"}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "The total number of external provider failures",
		}, []string{"provider"}),
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "The total number of cache hits",
		}, []string{"cache"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "The total number of cache misses",
		}, []string{"cache"}),
		AnswerLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assistant_answer_seconds",
			Help:      "Time taken to answer an assistant query",
			Buckets:   prometheus.DefBuckets,
		}),
		FlightsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_fetched_total",
			Help:      "The total number of flight records fetched from providers",
		}),
		NoMatchReplies: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "no_match_replies_total",
			Help:      "The total number of queries answered with the not-found message",
		}),
	}
}
