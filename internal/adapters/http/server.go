// Package http exposes the conversation service over a JSON API.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurida/helpline/internal/logging"
	"github.com/aurida/helpline/pkg/conversation"
	"github.com/aurida/helpline/pkg/domain"
)

const maxMessageBytes = 16 << 10

// Server serves the conversation API.
type Server struct {
	service *conversation.Service
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler builds the API router around service. The prometheus
// gatherer backs GET /metrics; pass nil to serve the default registry.
func NewHandler(service *conversation.Service, gatherer prometheus.Gatherer, opts ...Option) http.Handler {
	s := &Server{
		service: service,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Post("/conversations", s.startConversation)
	r.Post("/conversations/{id}/messages", s.sendMessage)

	return r
}

type startRequest struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Language       string `json:"language,omitempty"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type conversationResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply,omitempty"`
	CurrentNode    string `json:"current_node,omitempty"`
	Ended          bool   `json:"ended"`
	WaitingForUser bool   `json:"waiting_for_user"`
}

func (s *Server) startConversation(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.logger.Warn("start: invalid request body", "err", err)
		return
	}

	lang := domain.Language(strings.ToLower(strings.TrimSpace(body.Language)))
	state, reply, err := s.service.Start(r.Context(), body.ConversationID, lang)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(state, reply))
}

func (s *Server) sendMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body messageRequest
	if err := decodeBody(w, r, &body); err != nil {
		s.logger.Warn("message: invalid request body", "err", err, "conversation_id", id)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	state, reply, err := s.service.ProcessMessage(r.Context(), id, body.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(state, reply))
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrConversationNotFound):
		http.Error(w, "conversation not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrConversationEnded):
		http.Error(w, "conversation has ended", http.StatusConflict)
	default:
		s.logger.Error("request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResponse(state *domain.ConversationState, reply string) conversationResponse {
	return conversationResponse{
		ConversationID: state.ConversationID,
		Reply:          reply,
		CurrentNode:    string(state.CurrentNode),
		Ended:          state.Flags.ConversationEnded,
		WaitingForUser: state.Flags.WaitingForUserInput,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMessageBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
