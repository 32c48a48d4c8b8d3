// Package metrics exports transaction outcomes as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"duopane/internal/errors"
	"duopane/internal/transaction"
)

// Collector tracks duopane transaction metrics. A nil *Collector is a valid
// no-op observer.
type Collector struct {
	// TransactionsTotal counts transactions by kind and outcome
	TransactionsTotal *prometheus.CounterVec

	// TransactionDuration tracks how long Execute took
	TransactionDuration *prometheus.HistogramVec

	// CopiedBytesTotal counts bytes written by Copy and cross-device Move
	CopiedBytesTotal prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the duopane_ metrics and registers them on reg.
func New(reg *prometheus.Registry) *Collector {
	c := &Collector{
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "duopane_transactions_total",
				Help: "Total transactions by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		TransactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "duopane_transaction_duration_seconds",
				Help:    "Transaction duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		CopiedBytesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "duopane_copied_bytes_total",
				Help: "Total bytes written by copies",
			},
		),
		gatherer: reg,
	}

	reg.MustRegister(c.TransactionsTotal, c.TransactionDuration, c.CopiedBytesTotal)
	return c
}

// Outcome maps a transaction error to the outcome label.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	kind := errors.KindOf(err)
	if kind == errors.Unknown {
		return "error"
	}
	return kind.String()
}

func (c *Collector) TransactionFinished(kind transaction.Kind, err error, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.TransactionsTotal.WithLabelValues(kind.String(), Outcome(err)).Inc()
	c.TransactionDuration.WithLabelValues(kind.String()).Observe(elapsed.Seconds())
}

func (c *Collector) BytesCopied(n int64) {
	if c == nil || n <= 0 {
		return
	}
	c.CopiedBytesTotal.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

var _ transaction.Observer = (*Collector)(nil)
