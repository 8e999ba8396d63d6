package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/claims"
)

// ClaimsHandler exposes the claim lifecycle.
type ClaimsHandler struct {
	Engine   *claims.Engine
	Disputes *claims.Disputes
}

type messageRequest struct {
	Message string `json:"message"`
}

type responseRequest struct {
	Response string `json:"response"`
}

type decisionRequest struct {
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

type questionsRequest struct {
	Questions []string `json:"questions"`
}

type answersRequest struct {
	Answers []string `json:"answers"`
}

type flagRequest struct {
	Reason string `json:"reason"`
}

// List handles GET /api/claims?status=pending&limit=50 (admin).
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	list, err := h.Engine.ListClaims(r.Context(), r.URL.Query().Get("status"), limit)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Mine handles GET /api/claims/mine.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	list, err := h.Engine.ListMyClaims(r.Context(), GetSession(r.Context()).UserID)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Received handles GET /api/claims/received.
func (h *ClaimsHandler) Received(w http.ResponseWriter, r *http.Request) {
	list, err := h.Engine.ListClaimsForMyItems(r.Context(), GetSession(r.Context()).UserID)
	if err != nil {
		engineError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/claims/{id}.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	details, err := h.Engine.GetClaimDetails(r.Context(), id)
	if err != nil {
		engineError(w, err)
		return
	}
	if !claims.CanView(actor(GetSession(r.Context())), details) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}
	jsonResponse(w, http.StatusOK, details)
}

// RequestMoreInfo handles POST /api/claims/{id}/more-info.
func (h *ClaimsHandler) RequestMoreInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Engine.RequestMoreInfo(r.Context(), id, req.Message, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("more information requested", "user", session.Username, "claim", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "more information requested"})
}

// RespondToMoreInfo handles POST /api/claims/{id}/more-info/response.
func (h *ClaimsHandler) RespondToMoreInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req responseRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Engine.RespondToMoreInfo(r.Context(), id, req.Response, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("more information provided", "user", session.Username, "claim", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "response recorded"})
}

// Decide handles POST /api/claims/{id}/decision.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decisionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Engine.DecideClaim(r.Context(), id, req.Decision, req.Notes, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("claim decided", "user", session.Username, "claim", id, "decision", req.Decision)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim " + req.Decision})
}

// SendQuestions handles POST /api/claims/{id}/verification/questions.
func (h *ClaimsHandler) SendQuestions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req questionsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Engine.SendVerificationQuestions(r.Context(), id, req.Questions, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("verification questions sent", "user", session.Username, "claim", id, "count", len(req.Questions))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "questions sent"})
}

// SubmitAnswers handles POST /api/claims/{id}/verification/answers.
func (h *ClaimsHandler) SubmitAnswers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req answersRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Engine.SubmitVerificationAnswers(r.Context(), id, req.Answers, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("verification answers submitted", "user", session.Username, "claim", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "answers submitted"})
}

// Flag handles POST /api/claims/{id}/flag.
func (h *ClaimsHandler) Flag(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req flagRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session := GetSession(r.Context())
	if err := h.Disputes.FlagClaimForReview(r.Context(), id, req.Reason, actor(session)); err != nil {
		engineError(w, err)
		return
	}

	slog.Info("claim flagged", "user", session.Username, "claim", id, "reason", req.Reason)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "claim flagged for review"})
}
