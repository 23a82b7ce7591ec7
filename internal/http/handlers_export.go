package http

import (
	"log/slog"
	"net/http"
	"time"

	"budget/internal/export"
)

// handleExport streams the owner's full ledger as a CSV download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	items, err := s.ledger.ListAll(r.Context(), ownerID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export list error", "error", err, "owner_id", ownerID)
		writeError(w, err)
		return
	}

	filename := "transactions-" + time.Now().UTC().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCSV(w, items); err != nil {
		// Headers are already sent at this point, so just log it.
		slog.ErrorContext(r.Context(), "CSV write error", "error", err, "owner_id", ownerID)
		return
	}
	slog.InfoContext(r.Context(), "Ledger exported", "owner_id", ownerID, "rows", len(items))
}

// handleQueueExport publishes an asynchronous export request for the worker.
// Returns 503 when no broker is configured.
func (s *Server) handleQueueExport(w http.ResponseWriter, r *http.Request) {
	ownerID := ownerFromContext(r.Context())

	if s.exportQueue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "export queue not configured"})
		return
	}

	if err := s.exportQueue.PublishExportRequest(r.Context(), ownerID); err != nil {
		slog.ErrorContext(r.Context(), "Export publish error", "error", err, "owner_id", ownerID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to queue export"})
		return
	}

	slog.InfoContext(r.Context(), "Export queued", "owner_id", ownerID)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
