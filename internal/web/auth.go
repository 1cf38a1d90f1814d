package web

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mlakar/gameshelf/internal/auth"
	"github.com/mlakar/gameshelf/internal/store"
)

// LoginPage handles GET /login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "login.html", &PageData{Title: "Login"})
}

// LoginSubmit handles POST /login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if email == "" || password == "" {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Login",
			Error: "Enter your email and password.",
		})
		return
	}

	user, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil || user == nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Login",
			Error: "Invalid email or password.",
		})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.Templates.Render(w, "login.html", &PageData{
			Title: "Login",
			Error: "Invalid email or password.",
		})
		return
	}

	token, err := auth.GenerateToken(s.JWTSecret, user.ID, user.Email, user.Name)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// SignupPage handles GET /signup.
func (s *Server) SignupPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "signup.html", &PageData{Title: "Sign up"})
}

// SignupSubmit handles POST /signup.
func (s *Server) SignupSubmit(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	if name == "" || email == "" || password == "" {
		s.Templates.Render(w, "signup.html", &PageData{
			Title: "Sign up",
			Error: "All fields are required.",
		})
		return
	}

	existing, err := store.GetUserByEmail(r.Context(), s.DB, email)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if existing != nil {
		s.Templates.Render(w, "signup.html", &PageData{
			Title: "Sign up",
			Error: "Email already registered.",
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if _, err := store.CreateUser(r.Context(), s.DB, email, name, string(hash)); err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "message.html", &PageData{
		Title:   "Signup successful",
		Message: "Signup complete. Please login.",
		Link:    "/login",
	})
}

// Logout handles POST /logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		if claims, err := auth.ValidateToken(s.JWTSecret, cookie.Value); err == nil && claims.ID != "" {
			_ = store.RevokeToken(r.Context(), s.DB, claims.ID, claims.ExpiresAt.Time)
		}
	}
	clearAuthCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
