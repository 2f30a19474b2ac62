package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
)

// MetricsHandler exports delivery pipeline gauges in Prometheus text format.
type MetricsHandler struct {
	db *sql.DB
}

func NewMetricsHandler(db *sql.DB) *MetricsHandler {
	return &MetricsHandler{db: db}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")

	fmt.Fprintf(w, "# HELP pointsheet_up Is the server up\n")
	fmt.Fprintf(w, "# TYPE pointsheet_up gauge\n")
	fmt.Fprintf(w, "pointsheet_up 1\n")

	gauges := []struct {
		name  string
		help  string
		query string
	}{
		{
			name:  "pointsheet_webhooks_enabled",
			help:  "Number of enabled webhooks",
			query: `SELECT COUNT(*) FROM webhooks WHERE enabled = 1`,
		},
		{
			name:  "pointsheet_webhook_logs_pending",
			help:  "Delivery logs awaiting a first attempt",
			query: `SELECT COUNT(*) FROM webhook_logs WHERE succeeded = 0 AND http_status IS NULL`,
		},
		{
			name:  "pointsheet_webhook_logs_failed",
			help:  "Delivery logs attempted without success",
			query: `SELECT COUNT(*) FROM webhook_logs WHERE succeeded = 0 AND http_status IS NOT NULL`,
		},
		{
			name:  "pointsheet_webhook_logs_succeeded",
			help:  "Delivery logs accepted by their target",
			query: `SELECT COUNT(*) FROM webhook_logs WHERE succeeded = 1`,
		},
	}

	for _, g := range gauges {
		var count int64
		if err := h.db.QueryRow(g.query).Scan(&count); err != nil {
			continue
		}
		fmt.Fprintf(w, "# HELP %s %s\n", g.name, g.help)
		fmt.Fprintf(w, "# TYPE %s gauge\n", g.name)
		fmt.Fprintf(w, "%s %d\n", g.name, count)
	}
}
