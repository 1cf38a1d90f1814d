package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mlakar/gameshelf/internal/rental"
	"github.com/mlakar/gameshelf/internal/store"
)

// RentalsHandler handles rent, return and library endpoints.
type RentalsHandler struct {
	Svc *rental.Service
}

type rentRequest struct {
	GameID string `json:"game_id"`
	Days   int    `json:"days"`
}

type returnResponse struct {
	RentalID        string  `json:"rental_id"`
	Fine            float64 `json:"fine"`
	AlreadyReturned bool    `json:"already_returned"`
}

// Rent handles POST /api/rentals.
func (h *RentalsHandler) Rent(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req rentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GameID == "" {
		jsonError(w, http.StatusBadRequest, "game_id required")
		return
	}

	rented, err := h.Svc.Rent(r.Context(), claims.UserID, req.GameID, req.Days)
	switch {
	case errors.Is(err, rental.ErrInvalidPeriod):
		jsonError(w, http.StatusBadRequest, "rental period out of range")
		return
	case errors.Is(err, rental.ErrGameNotFound):
		jsonError(w, http.StatusNotFound, "game not found")
		return
	case errors.Is(err, rental.ErrGameUnavailable):
		jsonError(w, http.StatusConflict, "game is not available")
		return
	case errors.Is(err, store.ErrAllocation):
		jsonError(w, http.StatusServiceUnavailable, "could not allocate rental id, retry")
		return
	case err != nil:
		slog.Error("rent failed", "game", req.GameID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to rent game")
		return
	}

	slog.Info("game rented", "rental", rented.ID, "game", rented.GameID, "user", rented.UserID)
	jsonResponse(w, http.StatusCreated, rented)
}

// Return handles POST /api/rentals/{id}/return.
func (h *RentalsHandler) Return(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result, err := h.Svc.Return(r.Context(), id)
	switch {
	case errors.Is(err, rental.ErrRentalNotFound):
		jsonError(w, http.StatusNotFound, "rental not found")
		return
	case err != nil:
		slog.Error("return failed", "rental", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to return rental")
		return
	}

	if !result.Already {
		slog.Info("rental returned", "rental", id, "fine", result.Fine)
	}
	jsonResponse(w, http.StatusOK, returnResponse{
		RentalID:        id,
		Fine:            result.Fine,
		AlreadyReturned: result.Already,
	})
}

// Library handles GET /api/library.
func (h *RentalsHandler) Library(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	entries, err := h.Svc.Library(r.Context(), claims.UserID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list library")
		return
	}
	if entries == nil {
		entries = []rental.LibraryEntry{}
	}
	jsonResponse(w, http.StatusOK, entries)
}
