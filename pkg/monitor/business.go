package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds wallet-level counters.
type BusinessMetrics struct {
	BatchSubmittedTotal      *prometheus.CounterVec // label: result (success/failure)
	BatchSizeObserved        prometheus.Histogram
	PaymentChannelsSynced    prometheus.Counter
	HistoryRecordsReconciled prometheus.Counter
	DepositRefreshTotal      *prometheus.CounterVec // label: result
	BalanceRefreshTotal      *prometheus.CounterVec // label: result
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics initializes the wallet business metrics.
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		BatchSubmittedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_batch_submitted_total",
			Help: "Batch submissions by result",
		}, []string{"result"}),
		BatchSizeObserved: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_batch_size",
			Help:    "Number of transactions per submitted batch",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		PaymentChannelsSynced: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_payment_channels_synced_total",
			Help: "Payment channels fetched from the gateway",
		}),
		HistoryRecordsReconciled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wallet_history_records_reconciled_total",
			Help: "New history records produced by channel reconciliation",
		}),
		DepositRefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_deposit_refresh_total",
			Help: "Deposit balance refreshes by result",
		}, []string{"result"}),
		BalanceRefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_balance_refresh_total",
			Help: "Account balance refreshes by result",
		}, []string{"result"}),
	}
}
