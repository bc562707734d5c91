package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/helptech/helptech-platform/internal/chat"
	"github.com/helptech/helptech-platform/pkg/logging"
)

// InboundEvent is what the chat widget sends.
type InboundEvent struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text,omitempty"`
}

// OutboundEvent is what we send to the widget.
type OutboundEvent struct {
	Type      string           `json:"type"` // "session", "history", "typing", "message", "pong", "error"
	SessionID string           `json:"session_id,omitempty"`
	Text      string           `json:"text,omitempty"`
	Sender    string           `json:"sender,omitempty"`
	Timestamp string           `json:"timestamp,omitempty"`
	Messages  []HistoryMessage `json:"messages,omitempty"`
}

// HistoryMessage is a simplified message for history events.
type HistoryMessage struct {
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// WebChatHandler serves the embeddable chat widget over WebSocket.
type WebChatHandler struct {
	orchestrator *chat.Orchestrator
	logger       *logging.Logger
}

// NewWebChatHandler creates a web chat WebSocket handler.
func NewWebChatHandler(orchestrator *chat.Orchestrator, logger *logging.Logger) *WebChatHandler {
	if orchestrator == nil {
		panic("httpapi: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &WebChatHandler{orchestrator: orchestrator, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *WebChatHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (h *WebChatHandler) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()

	sessionID := strings.TrimSpace(r.URL.Query().Get("session"))
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))

	if _, err := h.orchestrator.StartSession(ctx, sessionID, userID); err != nil && !errors.Is(err, chat.ErrSessionExists) {
		h.logger.Error("webchat: failed to start session", "error", err)
		_ = websocket.JSON.Send(conn, OutboundEvent{Type: "error", Text: "failed to start session"})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundEvent{Type: "session", SessionID: sessionID})
	h.sendHistory(conn, sessionID)

	h.logger.Info("webchat: connection opened", "session_id", sessionID)

	for {
		var event InboundEvent
		if err := websocket.JSON.Receive(conn, &event); err != nil {
			h.logger.Debug("webchat: connection closed", "session_id", sessionID, "error", err)
			return
		}

		if event.Type == "ping" {
			_ = websocket.JSON.Send(conn, OutboundEvent{Type: "pong"})
			continue
		}

		if event.Type != "message" || strings.TrimSpace(event.Text) == "" {
			continue
		}

		h.processMessage(ctx, conn, sessionID, event.Text)
	}
}

func (h *WebChatHandler) processMessage(ctx context.Context, conn *websocket.Conn, sessionID, text string) {
	_ = websocket.JSON.Send(conn, OutboundEvent{Type: "typing"})

	reply, err := h.orchestrator.HandleMessage(ctx, sessionID, text)
	if err != nil {
		h.logger.Error("webchat: failed to handle message", "error", err, "session_id", sessionID)
		_ = websocket.JSON.Send(conn, OutboundEvent{
			Type: "error",
			Text: "Desculpe, algo deu errado. Por favor, tente novamente.",
		})
		return
	}

	_ = websocket.JSON.Send(conn, OutboundEvent{
		Type:      "message",
		Sender:    string(reply.Sender),
		Text:      reply.Text,
		Timestamp: reply.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (h *WebChatHandler) sendHistory(conn *websocket.Conn, sessionID string) {
	msgs, err := h.orchestrator.History(sessionID)
	if err != nil || len(msgs) == 0 {
		return
	}
	history := make([]HistoryMessage, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, HistoryMessage{
			Sender:    string(m.Sender),
			Text:      m.Text,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	_ = websocket.JSON.Send(conn, OutboundEvent{Type: "history", Messages: history})
}
