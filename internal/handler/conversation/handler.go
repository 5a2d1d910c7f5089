package conversation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	conversationService "github.com/sarveshz/munim/backend/internal/service/conversation"
	"github.com/sarveshz/munim/backend/internal/storage"
	"github.com/sarveshz/munim/backend/pkg/utils"
)

// Handler exposes the conversational interpreter over HTTP.
type Handler struct {
	convSvc *conversationService.Service
}

// New creates the conversation handler.
func New(convSvc *conversationService.Service) *Handler {
	return &Handler{convSvc: convSvc}
}

// RegisterRoutes mounts the session and turn endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/sessions", h.handleCreateSession)
	r.Get("/sessions/{sessionID}", h.handleGetSession)
	r.Post("/sessions/{sessionID}/messages", h.handleMessage)
	r.Post("/sessions/{sessionID}/commit", h.handleCommit)
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.convSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.convSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, session)
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(payload.Text) == "" {
		utils.RespondError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.convSvc.HandleTurn(r.Context(), sessionID, payload.Text)
	if err != nil {
		if errors.Is(err, conversationService.ErrSessionNotFound) {
			utils.RespondError(w, http.StatusNotFound, "session not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var payload struct {
		DraftID string `json:"draftId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.convSvc.Commit(r.Context(), sessionID, payload.DraftID)
	if err != nil {
		utils.RespondError(w, commitStatus(err), err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, resp)
}

// commitStatus maps interpreter and gateway errors onto HTTP statuses. The
// draft is retained by the service on every one of these.
func commitStatus(err error) int {
	switch {
	case errors.Is(err, conversationService.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, conversationService.ErrNoDraft):
		return http.StatusNotFound
	case errors.Is(err, conversationService.ErrDraftMismatch):
		return http.StatusConflict
	case errors.Is(err, storage.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, storage.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, storage.ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
