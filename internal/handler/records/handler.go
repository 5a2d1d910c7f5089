package records

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sarveshz/munim/backend/internal/storage"
	"github.com/sarveshz/munim/backend/pkg/utils"
)

// Handler exposes committed records for inspection at the gateway boundary.
type Handler struct {
	gateway storage.Gateway
}

// New creates the records handler.
func New(gateway storage.Gateway) *Handler {
	return &Handler{gateway: gateway}
}

// RegisterRoutes mounts the records listing endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/records/{collection}", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	collection, ok := storage.ParseCollection(chi.URLParam(r, "collection"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "unknown collection")
		return
	}

	records, err := h.gateway.List(r.Context(), collection)
	if err != nil {
		utils.RespondError(w, http.StatusBadGateway, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"collection": collection,
		"records":    records,
	})
}
