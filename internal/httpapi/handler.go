package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/helptech/helptech-platform/internal/chat"
	"github.com/helptech/helptech-platform/pkg/logging"
)

// userIDHeader carries the authenticated user id, when the caller has one.
// Anonymous sessions simply omit it.
const userIDHeader = "X-User-ID"

// Handler exposes the chat orchestrator over HTTP.
type Handler struct {
	orchestrator *chat.Orchestrator
	logger       *logging.Logger
}

// NewHandler creates the chat HTTP handler.
func NewHandler(orchestrator *chat.Orchestrator, logger *logging.Logger) *Handler {
	if orchestrator == nil {
		panic("httpapi: orchestrator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{orchestrator: orchestrator, logger: logger}
}

type startSessionResponse struct {
	SessionID string       `json:"session_id"`
	Message   chat.Message `json:"message"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type messageResponse struct {
	Message chat.Message `json:"message"`
}

type historyResponse struct {
	Messages []chat.Message `json:"messages"`
	State    chat.BotState  `json:"state"`
}

// StartSession opens a new conversation and returns its id plus the greeting.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	sessionID := uuid.NewString()
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))

	greeting, err := h.orchestrator.StartSession(r.Context(), sessionID, userID)
	if err != nil {
		h.logger.Error("failed to start chat session", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	respondJSON(w, http.StatusCreated, startSessionResponse{SessionID: sessionID, Message: greeting})
}

// PostMessage submits one user turn and returns the bot reply.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	reply, err := h.orchestrator.HandleMessage(r.Context(), sessionID, req.Text)
	if err != nil {
		if errors.Is(err, chat.ErrUnknownSession) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to handle chat message", "error", err, "session_id", sessionID)
		respondError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: reply})
}

// GetHistory returns the conversation's ordered message sequence.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.orchestrator.History(sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrUnknownSession) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to load chat history", "error", err, "session_id", sessionID)
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	state, err := h.orchestrator.BotState(sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load history")
		return
	}

	respondJSON(w, http.StatusOK, historyResponse{Messages: messages, State: state})
}

// ClearHistory resets the conversation and returns the fresh greeting.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	greeting, err := h.orchestrator.ClearHistory(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrUnknownSession) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		h.logger.Error("failed to clear chat history", "error", err, "session_id", sessionID)
		respondError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: greeting})
}

// Health reports process liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
