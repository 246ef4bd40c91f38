package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the ticketing counters. Build one per registry.
type Metrics struct {
	PaymentInitiations *prometheus.CounterVec
	PaymentCallbacks   *prometheus.CounterVec
	Reconciliations    *prometheus.CounterVec
	CheckIns           *prometheus.CounterVec
	ProviderDuration   *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PaymentInitiations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventtribe",
			Name:      "payment_initiations_total",
			Help:      "STK Push initiations by outcome.",
		}, []string{"outcome"}),

		PaymentCallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventtribe",
			Name:      "payment_callbacks_total",
			Help:      "Payment callbacks by outcome.",
		}, []string{"outcome"}),

		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventtribe",
			Name:      "payment_reconciliations_total",
			Help:      "Pending payments examined by the reconciler, by outcome.",
		}, []string{"outcome"}),

		CheckIns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventtribe",
			Name:      "checkins_total",
			Help:      "Ticket verifications by result kind.",
		}, []string{"kind"}),

		ProviderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventtribe",
			Name:      "mpesa_request_duration_seconds",
			Help:      "Latency of calls to the M-Pesa API.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// NewNop returns metrics bound to a throwaway registry.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) ObserveProvider(operation string, start time.Time) {
	m.ProviderDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
