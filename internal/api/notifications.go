package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Inbox listing limits.
const (
	defaultInboxLimit = 50
	maxInboxLimit     = 200
)

// NotificationsHandler serves the user's inbox and preferences.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications?limit=N.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	switch {
	case limit <= 0:
		limit = defaultInboxLimit
	case limit > maxInboxLimit:
		limit = maxInboxLimit
	}

	list, err := store.ListNotifications(r.Context(), h.DB, GetSession(r.Context()).UserID, limit)
	if err != nil {
		slog.Error("failed to list notifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if list == nil {
		list = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := store.CountUnread(r.Context(), h.DB, GetSession(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to count notifications", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to count notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int{"unread": n})
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	found, err := store.MarkNotificationRead(r.Context(), h.DB, id, GetSession(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to mark notification read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update notification")
		return
	}
	if !found {
		jsonError(w, http.StatusNotFound, "notification not found")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification read"})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := store.MarkAllNotificationsRead(r.Context(), h.DB, GetSession(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to mark notifications read", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update notifications")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]int64{"updated": n})
}

// GetPreferences handles GET /api/notifications/preferences.
func (h *NotificationsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := store.GetNotificationPreferences(r.Context(), h.DB, GetSession(r.Context()).UserID)
	if err != nil {
		slog.Error("failed to get preferences", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	jsonResponse(w, http.StatusOK, p)
}

// UpdatePreferences handles PUT /api/notifications/preferences. Fields left
// out of the body keep their current values.
func (h *NotificationsHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	session := GetSession(r.Context())

	current, err := store.GetNotificationPreferences(r.Context(), h.DB, session.UserID)
	if err != nil {
		slog.Error("failed to get preferences", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}

	p := *current
	if err := decodeJSON(r, &p); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.UserID = session.UserID

	if !model.ValidFrequency(p.EmailFrequency) {
		jsonError(w, http.StatusBadRequest, "email_frequency must be immediate, daily, or weekly")
		return
	}

	if err := store.UpdateNotificationPreferences(r.Context(), h.DB, p); err != nil {
		slog.Error("failed to update preferences", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update preferences")
		return
	}

	updated, err := store.GetNotificationPreferences(r.Context(), h.DB, session.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}

	slog.Info("notification preferences updated", "user", session.Username)
	jsonResponse(w, http.StatusOK, updated)
}
