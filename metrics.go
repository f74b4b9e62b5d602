package signet

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID uint16

const (
	// MetricIssueSuccess counts tokens produced by EncodeAndSign.
	MetricIssueSuccess MetricID = iota
	// MetricIssueFailure counts failed issuance attempts at any stage.
	MetricIssueFailure
	// MetricVerifySuccess counts tokens that passed the full decode path.
	MetricVerifySuccess
	// MetricVerifyFailure counts verification failures of any kind.
	MetricVerifyFailure
	// MetricTokenExpired counts verifications rejected on exp/max_age.
	MetricTokenExpired
	// MetricTokenNotYetValid counts verifications rejected on nbf.
	MetricTokenNotYetValid
	// MetricSingleUseReplay counts single-use tokens presented after
	// consumption or revocation.
	MetricSingleUseReplay
	// MetricRefreshSuccess counts completed refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refreshes.
	MetricRefreshFailure
	// MetricExchangeSuccess counts completed type exchanges.
	MetricExchangeSuccess
	// MetricExchangeFailure counts rejected type exchanges.
	MetricExchangeFailure
	// MetricRevokeSuccess counts completed revocations.
	MetricRevokeSuccess
	// MetricRevokeFailure counts failed revocations.
	MetricRevokeFailure
	// MetricVerifyLatency is the histogram of DecodeAndVerify durations.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different metrics never false-share.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional verify-latency
// histogram. All write-path operations are allocation-free.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a [Metrics] instance. When cfg.Enabled is false all
// operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc atomically increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records one duration into the verify-latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id != MetricVerifyLatency {
		return
	}
	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot deep-copies all counters and histogram buckets.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
