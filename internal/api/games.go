package api

import (
	"net/http"

	"github.com/mlakar/gameshelf/internal/model"
	"github.com/mlakar/gameshelf/internal/rental"
)

// GamesHandler serves the read-only game catalog.
type GamesHandler struct {
	Svc *rental.Service
}

// List handles GET /api/games.
func (h *GamesHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.Svc.Inventory(r.Context())
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list games")
		return
	}
	if games == nil {
		games = []model.Game{}
	}
	jsonResponse(w, http.StatusOK, games)
}
