package proxy

import (
	"context"

	"codesight/internal/models"
)

// Request is the JSON body accepted by the chat endpoint.
type Request struct {
	Agent               string        `json:"agent"`
	UserMessage         string        `json:"userMessage"`
	ConversationHistory []models.Turn `json:"conversationHistory,omitempty"`
}

type Response struct {
	Content string `json:"content"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Completer is the external chat-completion API. turns starts with the
// system turn. Implementations return an apperr upstream error on failure
// and never retry.
type Completer interface {
	Complete(ctx context.Context, cfg AgentConfig, turns []models.Turn) (string, error)
}

// NoResponse replaces an empty completion.
const NoResponse = "No response received"
