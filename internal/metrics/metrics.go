// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	EvaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formcheck_evaluations_total",
			Help: "Form evaluations by form and outcome (valid or invalid).",
		}, []string{"form", "outcome"})

	FieldErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formcheck_field_errors_total",
			Help: "Fields that failed sanitation, by form and field type.",
		}, []string{"form", "type"})

	UnknownFormTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "formcheck_unknown_form_total",
			Help: "Evaluations requested for a form name that is not registered.",
		})

	FormsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "formcheck_forms_loaded",
			Help: "Number of form definitions in the active registry.",
		})
)

func init() {
	prometheus.MustRegister(
		EvaluationsTotal,
		FieldErrorsTotal,
		UnknownFormTotal,
		FormsLoaded,
	)
}
