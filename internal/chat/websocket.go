// Package chat provides the WebSocket conversation transport: a long-lived
// connection that funnels chat frames into the conversation service.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"

	"jobagent/internal/conversation"
	"jobagent/internal/domain"
)

// WebSocketHandler handles WebSocket-based chat sessions.
type WebSocketHandler struct {
	conversation  *conversation.Service
	allowedOrigin string
	isDev         bool
	logger        *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket chat handler.
func NewWebSocketHandler(conv *conversation.Service, allowedOrigin string, isDev bool, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		conversation:  conv,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
		logger:        logger,
	}
}

// wsMessage is an inbound chat frame.
type wsMessage struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	Content string `json:"content,omitempty"`
}

// wsResponse is an outbound chat frame.
type wsResponse struct {
	Type     string               `json:"type"`
	Response string               `json:"response,omitempty"`
	Stage    domain.Stage         `json:"stage,omitempty"`
	Metadata *domain.TurnMetadata `json:"metadata,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for WebSocket upgrade. The user id
// arrives on the query string; each "message" frame is one conversation
// turn, processed to completion before the reply frame is written.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId query parameter is required", http.StatusBadRequest)
		return
	}
	h.logger.Info("websocket chat connection", "user_id", userID, "ip", r.RemoteAddr)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Error("failed to accept websocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			h.logger.Debug("failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	h.readLoop(ctx, ws, userID)
	h.logger.Info("websocket chat session ended", "user_id", userID)
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	h.logger.Warn("websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, userID string) {
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("websocket closed by client", "user_id", userID)
			} else {
				h.logger.Warn("websocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			// Treat a raw text frame as a plain chat message.
			msg = wsMessage{Type: "message", Content: string(message)}
		}

		switch msg.Type {
		case "message":
			if msg.Content == "" {
				continue
			}
			// Turns block until the collaborators finish; the multi-minute
			// latency of the search stages is expected here.
			result, err := h.conversation.ProcessMessage(ctx, userID, msg.Content, domain.ChannelText)
			if err != nil {
				h.logger.Error("websocket turn failed", "error", err, "user_id", userID)
				h.writeJSON(ws, wsResponse{Type: "error", Error: "failed to process message"})
				continue
			}
			h.writeJSON(ws, wsResponse{
				Type:     "response",
				Response: result.Response,
				Stage:    result.State.Stage,
				Metadata: result.Metadata,
			})
		case "ping":
			h.writeJSON(ws, wsResponse{Type: "pong"})
		}
	}
}

func (h *WebSocketHandler) writeJSON(ws *websocket.Conn, v wsResponse) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("websocket encode error", "error", err)
		return
	}
	if err := ws.Write(context.Background(), websocket.MessageText, data); err != nil {
		h.logger.Debug("websocket write error", "error", err)
	}
}
