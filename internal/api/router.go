package api

import (
	"database/sql"
	"net/http"

	"github.com/mlakar/gameshelf/internal/rental"
)

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, svc *rental.Service, jwtSecret string) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	gamesHandler := &GamesHandler{Svc: svc}
	rentalsHandler := &RentalsHandler{Svc: svc}

	authMW := AuthMiddleware(jwtSecret, db)

	// Public: account creation and login.
	mux.HandleFunc("POST /api/auth/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	mux.Handle("GET /api/games", authMW(http.HandlerFunc(gamesHandler.List)))

	mux.Handle("POST /api/rentals", authMW(http.HandlerFunc(rentalsHandler.Rent)))
	mux.Handle("POST /api/rentals/{id}/return", authMW(http.HandlerFunc(rentalsHandler.Return)))
	mux.Handle("GET /api/library", authMW(http.HandlerFunc(rentalsHandler.Library)))

	return mux
}
