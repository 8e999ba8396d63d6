package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/najdeno/internal/claims"
	"github.com/erazemk/najdeno/internal/model"
)

// Login attempts allowed per minute from one address.
const loginRate = 10

// DefaultClaimRate is the number of claims a user may submit per minute.
const DefaultClaimRate = 5

// NewRouter creates the API router with all endpoints registered. claimRate
// limits claim submissions per user per minute; zero selects the default.
func NewRouter(db *sql.DB, jwtSecret string, engine *claims.Engine, claimRate float64) http.Handler {
	mux := http.NewServeMux()

	if claimRate <= 0 {
		claimRate = DefaultClaimRate
	}
	disputes := claims.NewDisputes(engine)

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db, Engine: engine}
	claimsHandler := &ClaimsHandler{Engine: engine, Disputes: disputes}
	disputesHandler := &DisputesHandler{Disputes: disputes}
	notificationsHandler := &NotificationsHandler{DB: db}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireModerator := RequireRole(model.RoleModerator)
	loginLimit := RateLimit(newKeyedLimiter(loginRate, loginRate), remoteKey)
	claimLimit := RateLimit(newKeyedLimiter(claimRate, max(1, int(claimRate))), userKey)

	// Public: login and registration.
	mux.Handle("POST /api/auth/login", loginLimit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/register", loginLimit(http.HandlerFunc(authHandler.Register)))

	// Authenticated routes.
	mux.Handle("GET /api/auth/me", authMW(http.HandlerFunc(authHandler.Me)))
	mux.Handle("PUT /api/auth/me", authMW(http.HandlerFunc(authHandler.UpdateMe)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Items (all roles; edits and deletion are checked per item).
	mux.Handle("GET /api/items", authMW(http.HandlerFunc(itemsHandler.List)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("GET /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Get)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("GET /api/items/{id}/claims", authMW(http.HandlerFunc(itemsHandler.ListClaims)))
	mux.Handle("POST /api/items/{id}/claims", authMW(claimLimit(http.HandlerFunc(itemsHandler.SubmitClaim))))

	// Claims. Per-claim permissions are enforced by the engine.
	mux.Handle("GET /api/claims", authMW(requireAdmin(http.HandlerFunc(claimsHandler.List))))
	mux.Handle("GET /api/claims/mine", authMW(http.HandlerFunc(claimsHandler.Mine)))
	mux.Handle("GET /api/claims/received", authMW(http.HandlerFunc(claimsHandler.Received)))
	mux.Handle("GET /api/claims/{id}", authMW(http.HandlerFunc(claimsHandler.Get)))
	mux.Handle("POST /api/claims/{id}/more-info", authMW(http.HandlerFunc(claimsHandler.RequestMoreInfo)))
	mux.Handle("POST /api/claims/{id}/more-info/response", authMW(http.HandlerFunc(claimsHandler.RespondToMoreInfo)))
	mux.Handle("POST /api/claims/{id}/decision", authMW(http.HandlerFunc(claimsHandler.Decide)))
	mux.Handle("POST /api/claims/{id}/verification/questions", authMW(http.HandlerFunc(claimsHandler.SendQuestions)))
	mux.Handle("POST /api/claims/{id}/verification/answers", authMW(http.HandlerFunc(claimsHandler.SubmitAnswers)))
	mux.Handle("POST /api/claims/{id}/flag", authMW(http.HandlerFunc(claimsHandler.Flag)))

	// Disputes (moderator+, resolution admin only).
	mux.Handle("GET /api/disputes", authMW(requireModerator(http.HandlerFunc(disputesHandler.List))))
	mux.Handle("GET /api/disputes/stats", authMW(requireModerator(http.HandlerFunc(disputesHandler.Stats))))
	mux.Handle("POST /api/disputes/{id}/resolve", authMW(requireAdmin(http.HandlerFunc(disputesHandler.Resolve))))
	mux.Handle("GET /api/audit-logs", authMW(requireModerator(http.HandlerFunc(disputesHandler.AuditLogs))))

	// Notifications (own inbox only).
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("GET /api/notifications/unread-count", authMW(http.HandlerFunc(notificationsHandler.UnreadCount)))
	mux.Handle("POST /api/notifications/read-all", authMW(http.HandlerFunc(notificationsHandler.MarkAllRead)))
	mux.Handle("POST /api/notifications/{id}/read", authMW(http.HandlerFunc(notificationsHandler.MarkRead)))
	mux.Handle("GET /api/notifications/preferences", authMW(http.HandlerFunc(notificationsHandler.GetPreferences)))
	mux.Handle("PUT /api/notifications/preferences", authMW(http.HandlerFunc(notificationsHandler.UpdatePreferences)))

	return mux
}
