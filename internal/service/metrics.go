package service

import "github.com/prometheus/client_golang/prometheus"

const (
	opListing  = "listing"
	opFetching = "fetching"
	opCreating = "creating"
	opUpdating = "updating"
	opDeleting = "deleting"

	outcomeOK       = "ok"
	outcomeInvalid  = "invalid"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

var TaskOperations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "task_operations_total",
		Help: "Task service operations by kind and outcome",
	},
	[]string{"op", "outcome"},
)

func init() {
	prometheus.MustRegister(TaskOperations)
}

func observe(op, outcome string) {
	TaskOperations.WithLabelValues(op, outcome).Inc()
}
