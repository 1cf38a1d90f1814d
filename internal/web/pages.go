package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mlakar/gameshelf/internal/rental"
)

// StorePage handles GET / with the full game catalog.
func (s *Server) StorePage(w http.ResponseWriter, r *http.Request) {
	games, err := s.Svc.Inventory(r.Context())
	if err != nil {
		slog.Error("listing games", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "store.html", &PageData{
		Title: "Store",
		User:  GetWebClaims(r.Context()),
		Games: games,
	})
}

// RentPage handles GET /rent/{id}: pick the number of days and confirm.
func (s *Server) RentPage(w http.ResponseWriter, r *http.Request) {
	games, err := s.Svc.Inventory(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	id := r.PathValue("id")
	for _, game := range games {
		if game.ID == id {
			s.Templates.Render(w, "rent.html", &PageData{
				Title: "Rent " + game.Name,
				User:  GetWebClaims(r.Context()),
				Game:  game,
				Days:  rental.DefaultRentalDays,
			})
			return
		}
	}

	s.Templates.Render(w, "message.html", &PageData{
		Title:   "Not found",
		User:    GetWebClaims(r.Context()),
		Message: "Game not found",
		Link:    "/",
	})
}

// RentSubmit handles POST /rent/{id}.
func (s *Server) RentSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())
	days, _ := strconv.Atoi(r.FormValue("days"))

	rented, err := s.Svc.Rent(r.Context(), claims.UserID, r.PathValue("id"), days)
	switch {
	case errors.Is(err, rental.ErrInvalidPeriod):
		s.Templates.Render(w, "message.html", &PageData{
			Title: "Invalid period", User: claims,
			Message: fmt.Sprintf("Rental period must be between 1 and %d days.", rental.MaxRentalDays),
			Link:    "/",
		})
		return
	case errors.Is(err, rental.ErrGameNotFound):
		s.Templates.Render(w, "message.html", &PageData{
			Title: "Not found", User: claims,
			Message: "Game not found", Link: "/",
		})
		return
	case errors.Is(err, rental.ErrGameUnavailable):
		s.Templates.Render(w, "message.html", &PageData{
			Title: "Unavailable", User: claims,
			Message: "Sorry, this game is already rented out.", Link: "/",
		})
		return
	case err != nil:
		slog.Error("renting game", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "message.html", &PageData{
		Title: "Rented", User: claims,
		Message: fmt.Sprintf("Game rented successfully until %s", rented.DueAt.Format("2006-01-02")),
		Link:    "/library",
	})
}

// LibraryPage handles GET /library: the user's rentals with derived status.
func (s *Server) LibraryPage(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	library, err := s.Svc.Library(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("listing library", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "library.html", &PageData{
		Title:   "My library",
		User:    claims,
		Library: library,
	})
}

// ReturnSubmit handles POST /return/{id}.
func (s *Server) ReturnSubmit(w http.ResponseWriter, r *http.Request) {
	claims := GetWebClaims(r.Context())

	result, err := s.Svc.Return(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, rental.ErrRentalNotFound):
		s.Templates.Render(w, "message.html", &PageData{
			Title: "Not found", User: claims,
			Message: "Rental not found", Link: "/library",
		})
		return
	case err != nil:
		slog.Error("returning rental", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	msg := "Returned successfully. No fine."
	if result.Fine > 0 {
		msg = fmt.Sprintf("Returned. Fine: Rs %.0f", result.Fine)
	}
	if result.Already {
		msg = "This rental was already returned."
	}

	s.Templates.Render(w, "message.html", &PageData{
		Title: "Return processed", User: claims,
		Message: msg,
		Link:    "/library",
	})
}
