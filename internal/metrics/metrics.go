// Package metrics declares the Prometheus collectors served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ListRendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govuk_admin_list_renders_total",
		Help: "List views rendered, by view endpoint.",
	}, []string{"view"})

	DateFiltersCombinedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govuk_admin_date_filters_combined_total",
		Help: "Day/month/year filter inputs combined into a single date.",
	}, []string{"view"})

	InvalidFilterValuesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govuk_admin_invalid_filter_values_total",
		Help: "Filter parameters ignored because their value did not parse.",
	}, []string{"view"})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govuk_admin_exports_total",
		Help: "CSV exports served, by view endpoint.",
	}, []string{"view"})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "govuk_admin_actions_total",
		Help: "Bulk actions run, by view endpoint and action.",
	}, []string{"view", "action"})

	RecordsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "govuk_admin_records_total",
		Help: "Rows per model, refreshed when the index page is rendered.",
	}, []string{"model"})
)
