// Package metrics declares the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FootprintCalculations counts on-demand footprint computations by scope
	// ("product" or "contract").
	FootprintCalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbonledger_footprint_calculations_total",
		Help: "Number of footprint calculations performed.",
	}, []string{"scope"})

	// FactorRefreshes counts remote material-factor refresh attempts by result
	// ("success" or "failed").
	FactorRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbonledger_factor_refreshes_total",
		Help: "Number of remote emission-factor refresh attempts.",
	}, []string{"result"})

	// ReportJobs counts processed report jobs by result ("generated", "failed").
	ReportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbonledger_report_jobs_total",
		Help: "Number of contract report jobs processed by the worker pool.",
	}, []string{"result"})

	// EmailJobs counts processed email jobs by result ("sent", "failed").
	EmailJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carbonledger_email_jobs_total",
		Help: "Number of email jobs processed by the worker pool.",
	}, []string{"result"})
)
