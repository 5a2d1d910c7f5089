package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	conversationService "github.com/sarveshz/munim/backend/internal/service/conversation"
	"github.com/sarveshz/munim/backend/internal/storage"
)

// WebSocketHandler runs conversational turns over a persistent connection.
// Each inbound utterance frame is one turn; commit frames resolve confirm
// descriptors, same as the REST endpoints.
type WebSocketHandler struct {
	convSvc  *conversationService.Service
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the WebSocket transport.
func NewWebSocketHandler(convSvc *conversationService.Service) *WebSocketHandler {
	return &WebSocketHandler{
		convSvc: convSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the ws endpoint.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	DraftID string `json:"draftId,omitempty"`
}

type outgoingFrame struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.convSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[websocket] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	go h.pingLoop(ctx, conn)

	h.send(conn, sessionID, "connected", map[string]any{"sessionId": sessionID})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[websocket] read error for session %s: %v", sessionID, err)
			}
			return
		}

		switch frame.Type {
		case "utterance":
			h.handleUtterance(ctx, conn, sessionID, frame.Text)
		case "commit":
			h.handleCommitFrame(ctx, conn, sessionID, frame.DraftID)
		case "ping":
			h.send(conn, sessionID, "pong", nil)
		default:
			h.sendError(conn, sessionID, "unknown frame type", false)
		}
	}
}

func (h *WebSocketHandler) handleUtterance(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	if text == "" {
		h.sendError(conn, sessionID, "text is required", false)
		return
	}

	resp, err := h.convSvc.HandleTurn(ctx, sessionID, text)
	if err != nil {
		h.sendError(conn, sessionID, err.Error(), false)
		return
	}
	h.send(conn, sessionID, "turn", resp)
}

func (h *WebSocketHandler) handleCommitFrame(ctx context.Context, conn *websocket.Conn, sessionID, draftID string) {
	resp, err := h.convSvc.Commit(ctx, sessionID, draftID)
	if err != nil {
		// The draft survives every commit failure; transient gateway
		// errors are worth a retry with the same descriptor.
		retry := errors.Is(err, storage.ErrTransient) || errors.Is(err, storage.ErrUnavailable)
		h.sendError(conn, sessionID, err.Error(), retry)
		return
	}
	h.send(conn, sessionID, "committed", resp)
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, sessionID, frameType string, data interface{}) {
	frame := outgoingFrame{
		Type:      frameType,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[websocket] write failed for session %s: %v", sessionID, err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, sessionID, message string, retry bool) {
	payload, _ := json.Marshal(map[string]any{"message": message, "retry": retry})
	h.send(conn, sessionID, "error", json.RawMessage(payload))
}
