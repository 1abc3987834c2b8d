// Package metrics exposes the migration run's Prometheus counters/gauges,
// registered the way the teacher wires client_golang collectors into a
// dedicated registry rather than the global default one, so a run's metrics
// never collide with another package's in the same process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups every counter the Data Pipeline and DDL phases touch.
type Metrics struct {
	Registry *prometheus.Registry

	RowsCopied     *prometheus.CounterVec
	RowsRejected   *prometheus.CounterVec
	ChunksFailed   *prometheus.CounterVec
	DDLStatements  *prometheus.CounterVec
	TablesComplete prometheus.Counter
	ViewsFailed    prometheus.Counter
}

// New builds a fresh Metrics bound to its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		RowsCopied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "rows_copied_total",
			Help:      "Rows successfully loaded via COPY, by qualified table name.",
		}, []string{"table"}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "rows_rejected_total",
			Help:      "Rows that failed row-level retry and were logged instead of loaded.",
		}, []string{"table"}),
		ChunksFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "chunks_failed_total",
			Help:      "Chunks whose bulk COPY failed and fell back to row-level retry.",
		}, []string{"table"}),
		DDLStatements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "ddl_statements_total",
			Help:      "DDL statements issued, partitioned by outcome.",
		}, []string{"phase", "outcome"}),
		TablesComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "tables_complete_total",
			Help:      "Tables that finished every phase, successfully or not.",
		}),
		ViewsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mysql2pg",
			Name:      "views_failed_total",
			Help:      "Views whose rewritten DDL failed to apply.",
		}),
	}

	reg.MustRegister(m.RowsCopied, m.RowsRejected, m.ChunksFailed, m.DDLStatements, m.TablesComplete, m.ViewsFailed)
	return m
}

// Handler returns an HTTP handler serving this run's metrics in the
// Prometheus exposition format, for an operator who wants to scrape a
// long-running migration instead of waiting for the final report.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// RecordDDL classifies a DDL phase's outcome for the ddl_statements_total counter.
func (m *Metrics) RecordDDL(phase string, failed bool) {
	outcome := "ok"
	if failed {
		outcome = "failed"
	}
	m.DDLStatements.WithLabelValues(phase, outcome).Inc()
}
