package access

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "access",
	Subsystem: "policy",
	Name:      "verdicts_total",
	Help:      "Authorization verdicts broken down by capability and outcome.",
}, []string{"capability", "verdict"})

func observeVerdict(capability Capability, v Verdict) {
	verdicts.With(prometheus.Labels{
		"capability": string(capability),
		"verdict":    v.String(),
	}).Inc()
}
