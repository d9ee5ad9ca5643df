package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RowsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rangeboard_csv_rows_parsed_total",
		Help: "CSV rows normalized across all uploads.",
	})

	ActivitiesRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rangeboard_activities_rejected_total",
		Help: "Activities excluded from grouping for an invalid station or prefix.",
	})

	SessionsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rangeboard_sessions_saved_total",
		Help: "Complete sessions persisted.",
	})

	UploadBatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rangeboard_upload_batches_total",
		Help: "Upload batches processed.",
	})
)
