package api

import (
	"database/sql"
	"net/http"

	"github.com/lukazajc/najdeno/internal/workflow"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, jwtSecret, emailDomain string) http.Handler {
	mux := http.NewServeMux()

	engine := &workflow.Engine{DB: db, EmailDomain: emailDomain}

	authHandler := &AuthHandler{DB: db, Engine: engine, JWTSecret: jwtSecret}
	itemsHandler := &ItemsHandler{Engine: engine}
	usersHandler := &UsersHandler{DB: db, Engine: engine}
	notificationsHandler := &NotificationsHandler{Engine: engine}

	authMW := AuthMiddleware(jwtSecret, db)
	requireAdmin := func(h http.Handler) http.Handler { return authMW(RequireAdmin(h)) }

	// Public: account bootstrap and the shared feed.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/verify", authHandler.Verify)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.HandleFunc("GET /api/items/{id}/photo", itemsHandler.GetPhoto)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))
	mux.Handle("PUT /api/items/{id}/photo", authMW(http.HandlerFunc(itemsHandler.UploadPhoto)))
	mux.Handle("GET /api/my-items", authMW(http.HandlerFunc(itemsHandler.MyItems)))
	mux.Handle("GET /api/notifications", authMW(http.HandlerFunc(notificationsHandler.List)))
	mux.Handle("POST /api/notifications/ack", authMW(http.HandlerFunc(notificationsHandler.Acknowledge)))

	// Moderation (admin only).
	mux.Handle("GET /api/admin/users", requireAdmin(http.HandlerFunc(usersHandler.List)))
	mux.Handle("POST /api/admin/users/{id}/promote", requireAdmin(http.HandlerFunc(usersHandler.Promote)))
	mux.Handle("POST /api/admin/users/{id}/disable", requireAdmin(http.HandlerFunc(usersHandler.Disable)))

	return mux
}
