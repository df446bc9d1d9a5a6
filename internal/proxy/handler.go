package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"codesight/internal/apperr"
	"codesight/internal/models"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

var (
	ErrMissingFields     = apperr.Validation("Missing required fields: agent and userMessage")
	ErrMissingCredential = apperr.Configuration("API key not configured (set GROQ_API_KEY or CODESIGHT_API_KEY)")
)

// Handler is the stateless chat endpoint. A nil completer means the server
// was started without a credential; every chat request then fails with a
// configuration error.
type Handler struct {
	agents    Agents
	completer Completer
	log       *zap.Logger
}

func NewHandler(agents Agents, completer Completer, log *zap.Logger) *Handler {
	if agents == nil {
		agents = DefaultAgents()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{agents: agents, completer: completer, log: log}
}

// Chat validates req, forwards it to the completer and returns the reply
// text. It is also used in-process by clients that hold the credential
// themselves.
func (h *Handler) Chat(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Agent) == "" || strings.TrimSpace(req.UserMessage) == "" {
		return "", ErrMissingFields
	}
	cfg, ok := h.agents.Lookup(req.Agent)
	if !ok {
		return "", apperr.Validation(fmt.Sprintf("unknown agent: %q", req.Agent))
	}
	for _, t := range req.ConversationHistory {
		if t.Role != models.RoleUser && t.Role != models.RoleAssistant {
			return "", apperr.Validation(fmt.Sprintf("invalid conversationHistory role: %q", t.Role))
		}
	}
	if h.completer == nil {
		return "", ErrMissingCredential
	}

	h.log.Info("processing chat request",
		zap.String("agent", string(cfg.Agent)),
		zap.String("message", truncate(req.UserMessage, 100)),
		zap.Int("history", len(req.ConversationHistory)))

	content, err := h.completer.Complete(ctx, cfg, BuildTurns(cfg, req.ConversationHistory, req.UserMessage))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindInternal {
			err = apperr.Upstream("completion request failed", err)
		}
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		content = NoResponse
	}

	h.log.Info("chat request completed", zap.String("agent", string(cfg.Agent)))
	return content, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	content, err := h.Chat(r.Context(), req)
	if err != nil {
		h.log.Error("chat request failed",
			zap.String("agent", req.Agent),
			zap.String("message", truncate(req.UserMessage, 100)),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Response{Content: content})
}

// NewServer routes the chat handler and a health check behind the CORS,
// logging and recovery middlewares.
func NewServer(h *Handler, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	mux := http.NewServeMux()
	mux.Handle("/chat", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return chainMiddlewares(mux, withCORS, withRecover(log), withLogging(log))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		internalError(w)
		return
	}
	writeJSON(w, statusFor(err), errorResponse{Error: ae.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func internalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
