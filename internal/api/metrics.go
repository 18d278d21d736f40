package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	allocationRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kraft_allocation_runs_total",
		Help: "Allocation runs by strategy.",
	}, []string{"strategy"})

	allocationAssignments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kraft_allocation_assignments_total",
		Help: "Tasks successfully assigned across all runs.",
	})

	allocationUnassigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kraft_allocation_unassigned_total",
		Help: "Tasks left unassigned across all runs.",
	})

	allocationRunErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kraft_allocation_run_errors_total",
		Help: "Allocation runs rejected or failed before completing.",
	})
)
