package models

import (
	"strings"
	"time"
)

// Agent selects the system prompt, model and temperature used for a turn.
type Agent string

const (
	AgentDeepAnalysis Agent = "deep-analysis"
	AgentFastResponse Agent = "fast-response"
)

var Agents = []Agent{AgentDeepAnalysis, AgentFastResponse}

// ParseAgent accepts the canonical names and the legacy "xt"/"sentinel"
// aliases.
func ParseAgent(s string) (Agent, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(AgentDeepAnalysis), "xt":
		return AgentDeepAnalysis, true
	case string(AgentFastResponse), "sentinel":
		return AgentFastResponse, true
	default:
		return "", false
	}
}

// DisplayName is the persona name shown in greetings.
func (a Agent) DisplayName() string {
	if a == AgentFastResponse {
		return "Sentinel"
	}
	return "X.T"
}

// Next cycles through Agents.
func (a Agent) Next() Agent {
	for i, ag := range Agents {
		if ag == a {
			return Agents[(i+1)%len(Agents)]
		}
	}
	return Agents[0]
}

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry of a chat session. Messages are never mutated after
// they are appended.
type Message struct {
	ID                 string    `json:"id"`
	Content            string    `json:"content"`
	Sender             Sender    `json:"sender"`
	CreatedAt          time.Time `json:"timestamp"`
	IsAttachmentMarker bool      `json:"isCode,omitempty"`
}

// Role maps a sender to its chat-completion role.
func (m Message) Role() string {
	if m.Sender == SenderUser {
		return RoleUser
	}
	return RoleAssistant
}

// Turn is one role-tagged entry of a conversation history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
