package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_payments_total",
			Help: "Payment ledger operations",
		},
		[]string{"op"}, // recorded|deleted
	)

	InvoicesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_invoices_total",
			Help: "Saved invoice operations",
		},
		[]string{"op"}, // saved|deleted
	)

	CustomersByStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "billing_customers",
			Help: "Customers by derived display status at the last dashboard computation",
		},
		[]string{"status"}, // paid|pending|overdue|due_soon
	)

	RemindersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_reminders_total",
			Help: "Reminder notifications by outcome and kind",
		},
		[]string{"stage", "kind"}, // sent|failed , due_soon|overdue
	)

	ProjectedEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_projected_events_total",
			Help: "Billing events handled by the analytics projector",
		},
		[]string{"result"}, // inserted|skipped|failed
	)
)

var once sync.Once

// MustRegister registers all collectors once; later calls are no-ops so the
// server and workers can share a process in tests.
func MustRegister(r prometheus.Registerer) {
	once.Do(func() {
		r.MustRegister(
			PaymentsTotal,
			InvoicesTotal,
			CustomersByStatus,
			RemindersTotal,
			ProjectedEventsTotal,
		)
	})
}
