package command

import "github.com/prometheus/client_golang/prometheus"

var (
	mutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Total number of committed ledger mutations",
		},
		[]string{"action"},
	)

	mutationQuantity = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutation_units_total",
			Help: "Total units moved by committed ledger mutations",
		},
		[]string{"action"},
	)

	rejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "Total number of rejected ledger mutations",
		},
		[]string{"action", "reason"},
	)
)

func init() {
	prometheus.MustRegister(mutationsTotal)
	prometheus.MustRegister(mutationQuantity)
	prometheus.MustRegister(rejectionsTotal)
}
