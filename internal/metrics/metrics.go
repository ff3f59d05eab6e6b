package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/insightdelivered/statement-ledger/internal/models"
)

const metricPrefix = "ledger_"

// Parse results used as label values.
const (
	ResultSuccess     = "success"
	ResultPassword    = "password"
	ResultUnknownBank = "unknown_bank"
	ResultUnreadable  = "unreadable"
	ResultError       = "error"
)

// Recorder holds the statement parsing metrics. A nil *Recorder records nothing.
type Recorder struct {
	parses       *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	transactions *prometheus.CounterVec
	diagnostics  *prometheus.CounterVec
	exports      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "parses_total",
				Help: "Total statement parses by bank and result",
			},
			[]string{"bank", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "parse_latency_seconds",
				Help:    "Statement extraction and parse latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"bank"},
		),
		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "transactions_total",
				Help: "Transactions emitted by bank and direction",
			},
			[]string{"bank", "direction"},
		),
		diagnostics: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "diagnostics_total",
				Help: "Lines or windows that produced no transaction, by reason",
			},
			[]string{"bank", "reason"},
		),
		exports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "exports_total",
				Help: "Ledger exports by format and result",
			},
			[]string{"format", "result"},
		),
	}
	reg.MustRegister(r.parses, r.latency, r.transactions, r.diagnostics, r.exports)
	return r
}

// ObserveParse records one parse attempt.
func (r *Recorder) ObserveParse(bank models.BankType, result string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.parses.WithLabelValues(string(bank), result).Inc()
	r.latency.WithLabelValues(string(bank)).Observe(elapsed.Seconds())
}

// ObserveStatement records what a successful parse produced.
func (r *Recorder) ObserveStatement(info *models.StatementInfo) {
	if r == nil || info == nil {
		return
	}
	bank := string(info.Bank)
	for _, txn := range info.Transactions {
		r.transactions.WithLabelValues(bank, string(txn.Direction)).Inc()
	}
	for reason, n := range info.DiagnosticCounts() {
		r.diagnostics.WithLabelValues(bank, string(reason)).Add(float64(n))
	}
}

// ObserveExport records one ledger export.
func (r *Recorder) ObserveExport(format string, err error) {
	if r == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	r.exports.WithLabelValues(format, result).Inc()
}
