package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type MarketMetrics struct {
	instructions  *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	feesCollected prometheus.Counter
	creditsMinted prometheus.Counter
	bidsPlaced    prometheus.Counter
}

var (
	marketOnce     sync.Once
	marketRegistry *MarketMetrics
)

// Market returns the lazily registered marketplace metrics.
func Market() *MarketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &MarketMetrics{
			instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "market",
				Name:      "instructions_total",
				Help:      "Marketplace instructions processed, by instruction and outcome.",
			}, []string{"instruction", "outcome"}),
			latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "nftmarket",
				Subsystem: "market",
				Name:      "instruction_duration_seconds",
				Help:      "Latency distribution for marketplace instructions.",
				Buckets:   prometheus.DefBuckets,
			}, []string{"instruction"}),
			feesCollected: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "market",
				Name:      "fees_collected_lamports_total",
				Help:      "Buyout fees paid into marketplace treasuries.",
			}),
			creditsMinted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "market",
				Name:      "credits_minted_total",
				Help:      "Bid credits minted, in base units.",
			}),
			bidsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "nftmarket",
				Subsystem: "market",
				Name:      "bids_placed_total",
				Help:      "Accepted bids.",
			}),
		}
		prometheus.MustRegister(
			marketRegistry.instructions,
			marketRegistry.latency,
			marketRegistry.feesCollected,
			marketRegistry.creditsMinted,
			marketRegistry.bidsPlaced,
		)
	})
	return marketRegistry
}

// ObserveInstruction records one processed instruction. outcome is "ok" or the
// error kind.
func (m *MarketMetrics) ObserveInstruction(instruction, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	if instruction == "" {
		instruction = "unknown"
	}
	if outcome == "" {
		outcome = "ok"
	}
	m.instructions.WithLabelValues(instruction, outcome).Inc()
	m.latency.WithLabelValues(instruction).Observe(elapsed.Seconds())
}

func (m *MarketMetrics) AddFeesCollected(lamports uint64) {
	if m == nil || lamports == 0 {
		return
	}
	m.feesCollected.Add(float64(lamports))
}

func (m *MarketMetrics) AddCreditsMinted(amount uint64) {
	if m == nil || amount == 0 {
		return
	}
	m.creditsMinted.Add(float64(amount))
}

func (m *MarketMetrics) IncBidsPlaced() {
	if m == nil {
		return
	}
	m.bidsPlaced.Inc()
}
