package usecase

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_operations_total",
			Help: "Service operations by entity, action and result",
		},
		[]string{"entity", "action", "result"},
	)

	auditPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_audit_published_total",
			Help: "Audit messages handed to the publisher",
		},
		[]string{"result"},
	)
)

func observe(entityType, action string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationsTotal.WithLabelValues(entityType, action, result).Inc()
}
