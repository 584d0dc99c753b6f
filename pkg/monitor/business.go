package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// BusinessMetrics covers the wallet session operations.
type BusinessMetrics struct {
	ConnectTotal          *prometheus.CounterVec
	BalanceFetchTotal     *prometheus.CounterVec
	TransferTotal         *prometheus.CounterVec
	TransferLamportsTotal prometheus.Counter
	TransferDuration      prometheus.Histogram
}

// NewBusinessMetrics registers the session metrics on reg.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	f := promauto.With(reg)
	return &BusinessMetrics{
		ConnectTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_connect_total",
			Help: "Wallet connect attempts by result",
		}, []string{"result"}),
		BalanceFetchTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_balance_fetch_total",
			Help: "Balance queries by result",
		}, []string{"result"}),
		TransferTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_transfer_total",
			Help: "Transfer attempts by result",
		}, []string{"result"}),
		TransferLamportsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "wallet_transfer_lamports_total",
			Help: "Lamports moved by confirmed transfers",
		}),
		TransferDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_transfer_duration_seconds",
			Help:    "Time from signing request to confirmation",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}
}

func resultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// ObserveConnect is nil-safe.
func (m *BusinessMetrics) ObserveConnect(err error) {
	if m == nil {
		return
	}
	m.ConnectTotal.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveBalance is nil-safe.
func (m *BusinessMetrics) ObserveBalance(err error) {
	if m == nil {
		return
	}
	m.BalanceFetchTotal.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveTransfer is nil-safe. lamports is only counted on success.
func (m *BusinessMetrics) ObserveTransfer(lamports uint64, seconds float64, err error) {
	if m == nil {
		return
	}
	m.TransferTotal.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		m.TransferLamportsTotal.Add(float64(lamports))
		m.TransferDuration.Observe(seconds)
	}
}
