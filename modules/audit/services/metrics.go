package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "audit_write_failures_total",
	Help: "Audit entries dropped because the trail could not be written.",
})
