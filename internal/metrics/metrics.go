// Package metrics holds the portal's Prometheus collectors, registered on the
// default registry and exposed by the API's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImportRows counts bulk-import rows by role and outcome (imported, failed).
	ImportRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackportal_import_rows_total",
		Help: "Bulk import rows processed, by role and outcome.",
	}, []string{"role", "outcome"})

	// ReconcileRepairs counts proctor-link rows fixed by the reconciliation pass.
	ReconcileRepairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackportal_reconcile_repairs_total",
		Help: "Proctor assignment links repaired, by kind (removed, added).",
	}, []string{"kind"})

	// Uploads counts Cloudinary uploads by outcome.
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hackportal_file_uploads_total",
		Help: "File uploads to the storage provider, by outcome.",
	}, []string{"outcome"})
)
