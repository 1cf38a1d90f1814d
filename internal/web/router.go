package web

import (
	"database/sql"
	"net/http"

	"github.com/mlakar/gameshelf/internal/rental"
	webembed "github.com/mlakar/gameshelf/web"
)

// NewRouter creates the web page router with all page routes registered.
func NewRouter(db *sql.DB, svc *rental.Service, jwtSecret string) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:        db,
		Svc:       svc,
		Templates: templates,
		JWTSecret: jwtSecret,
	}

	mux := http.NewServeMux()
	cookieAuth := CookieAuthMiddleware(jwtSecret, db)

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	// Public routes.
	mux.HandleFunc("GET /login", s.LoginPage)
	mux.HandleFunc("POST /login", s.LoginSubmit)
	mux.HandleFunc("GET /signup", s.SignupPage)
	mux.HandleFunc("POST /signup", s.SignupSubmit)
	mux.HandleFunc("POST /logout", s.Logout)

	// Authenticated routes.
	mux.Handle("GET /{$}", cookieAuth(http.HandlerFunc(s.StorePage)))
	mux.Handle("GET /rent/{id}", cookieAuth(http.HandlerFunc(s.RentPage)))
	mux.Handle("POST /rent/{id}", cookieAuth(http.HandlerFunc(s.RentSubmit)))
	mux.Handle("GET /library", cookieAuth(http.HandlerFunc(s.LibraryPage)))
	mux.Handle("POST /return/{id}", cookieAuth(http.HandlerFunc(s.ReturnSubmit)))

	return mux, nil
}
