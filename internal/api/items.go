package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/claims"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles reported items and the claims filed against them.
type ItemsHandler struct {
	DB     *sql.DB
	Engine *claims.Engine
}

type reportItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
	Status      string `json:"status"`
}

// List handles GET /api/items?status=found&reported_by=3.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	var reportedBy int64
	if v := r.URL.Query().Get("reported_by"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid reported_by")
			return
		}
		reportedBy = id
	}

	items, err := store.ListItems(r.Context(), h.DB, status, reportedBy)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req reportItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}
	if req.Status == "" {
		req.Status = model.ItemStatusFound
	}
	if !model.ValidReportStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "status must be lost or found")
		return
	}

	session := GetSession(r.Context())
	item, err := store.CreateItem(r.Context(), h.DB, &model.Item{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		Status:      req.Status,
		ReportedBy:  session.UserID,
	})
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}

	slog.Info("item reported", "user", session.Username, "item", item.Name, "status", item.Status)
	jsonResponse(w, http.StatusCreated, item)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

type updateItemRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageURL    string `json:"image_url"`
}

// Update handles PUT /api/items/{id}. Only the reporter or an admin may edit
// an item. Status is left to the claim lifecycle.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	session := GetSession(r.Context())
	if item.ReportedBy != session.UserID && session.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "only the reporter or an admin can edit an item")
		return
	}

	item.Name = req.Name
	item.Category = req.Category
	item.Description = req.Description
	item.Location = req.Location
	item.ImageURL = req.ImageURL

	updated, err := store.UpdateItem(r.Context(), h.DB, item)
	if err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if !updated {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	item, err = store.GetItem(r.Context(), h.DB, id)
	if err != nil || item == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}

	slog.Info("item updated", "user", session.Username, "item", item.Name)
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}. Only the reporter or an admin may
// remove an item; the row is kept for claim history.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	session := GetSession(r.Context())
	if item.ReportedBy != session.UserID && session.Role != model.RoleAdmin {
		jsonError(w, http.StatusForbidden, "only the reporter or an admin can delete an item")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", session.Username, "item", item.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// ListClaims handles GET /api/items/{id}/claims.
func (h *ItemsHandler) ListClaims(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	list, err := h.Engine.ListItemClaims(r.Context(), id, actor(GetSession(r.Context())))
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

type submitClaimResponse struct {
	ID int64 `json:"id"`
}

// SubmitClaim handles POST /api/items/{id}/claims.
func (h *ItemsHandler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.ClaimFields
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	claimID, err := h.Engine.SubmitClaim(r.Context(), id, actor(session), req)
	if err != nil {
		engineError(w, err)
		return
	}

	slog.Info("claim submitted", "user", session.Username, "item", id, "claim", claimID)
	jsonResponse(w, http.StatusCreated, submitClaimResponse{ID: claimID})
}
