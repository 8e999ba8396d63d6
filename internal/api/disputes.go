package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/claims"
)

// DisputesHandler handles review of flagged claims and the audit log.
type DisputesHandler struct {
	Disputes *claims.Disputes
}

type resolveRequest struct {
	Resolution string `json:"resolution"`
	Notes      string `json:"notes"`
}

// List handles GET /api/disputes.
func (h *DisputesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.Disputes.ListFlagged(r.Context(), actor(GetSession(r.Context())))
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Resolve handles POST /api/disputes/{id}/resolve.
func (h *DisputesHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Disputes.ResolveDispute(r.Context(), id, req.Resolution, req.Notes, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("dispute resolved", "user", session.Username, "claim", id, "resolution", req.Resolution)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "dispute resolved"})
}

// Stats handles GET /api/disputes/stats.
func (h *DisputesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Disputes.Statistics(r.Context(), actor(GetSession(r.Context())))
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// AuditLogs handles GET /api/audit-logs?limit=N.
func (h *DisputesHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	entries, err := h.Disputes.GetRecentAuditLogs(r.Context(), limit, actor(GetSession(r.Context())))
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, entries)
}
