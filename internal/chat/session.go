// Package chat holds one code-assistant conversation: the attached code,
// the selected agent and the message transcript, and drives each turn
// through the proxy.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"codesight/internal/apperr"
	"codesight/internal/models"
	"codesight/internal/postprocess"
	"codesight/internal/proxy"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MaxHistory    = 10
	MaxInputWords = 40
	MaxCodeWords  = 300

	KeyMessages   = "codesight-chat"
	KeyInputCode  = "codesight-input-code"
	KeyOutputCode = "codesight-output-code"

	AttachmentMarker = "Code Snippet Attached 🖇️"
	DefaultGreeting  = "Hello! I'm CodeSight AI. Please send your code from the input panel first, then I can help you analyze, optimize, and improve it."
	ErrorReply       = "Sorry, I encountered an error. Please try again."
	ErrorNotice      = "Failed to get response from AI agent. Please try again."
)

var (
	ErrBusy           = apperr.Validation("Please wait for the current response.")
	ErrEmptyMessage   = apperr.Validation("Message is empty.")
	ErrNoCode         = apperr.Validation("Please send code from the input panel first before chatting with agents.")
	ErrMessageTooLong = apperr.Validation(fmt.Sprintf("Message too long. Please keep it under %d words.", MaxInputWords))
	ErrEmptyCode      = apperr.Validation("No code to send. Please enter some code first.")
	ErrCodeTooLong    = apperr.Validation(fmt.Sprintf("Code too long. Please reduce your code to %d words or less.", MaxCodeWords))
)

type State int

const (
	StateAwaitingCode State = iota
	StateReady
	StateAwaitingResponse
)

func (s State) String() string {
	switch s {
	case StateAwaitingCode:
		return "awaiting code"
	case StateReady:
		return "ready"
	case StateAwaitingResponse:
		return "awaiting response"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// KVStore is durable string storage for the transcript and code buffers.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Proxy sends one chat request and returns the raw reply text.
type Proxy interface {
	Chat(ctx context.Context, req proxy.Request) (string, error)
}

// CodeSink receives code extracted from replies.
type CodeSink interface {
	SetOptimizedCode(code string)
}

// Notifier shows transient user-facing notices.
type Notifier interface {
	Notify(msg string)
}

type Deps struct {
	Store    KVStore
	Proxy    Proxy
	Sink     CodeSink
	Notifier Notifier
	Log      *zap.Logger

	Agent models.Agent
	Now   func() time.Time
	NewID func() string
}

// Session is safe for concurrent use. At most one Send is in flight.
type Session struct {
	store    KVStore
	proxy    Proxy
	sink     CodeSink
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	newID    func() string

	mu       sync.Mutex
	agent    models.Agent
	hasCode  bool
	busy     bool
	code     string
	output   string
	messages []models.Message
}

func NewSession(d Deps) *Session {
	s := &Session{
		store:    d.Store,
		proxy:    d.Proxy,
		sink:     d.Sink,
		notifier: d.Notifier,
		log:      d.Log,
		now:      d.Now,
		newID:    d.NewID,
		agent:    d.Agent,
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if _, ok := models.ParseAgent(string(s.agent)); !ok {
		s.agent = models.AgentDeepAnalysis
	}
	s.messages = []models.Message{s.newMessage(DefaultGreeting, models.SenderAssistant, false)}
	return s
}

// Greeting is the assistant's opening line for agent.
func Greeting(agent models.Agent, hasCode bool) string {
	if !hasCode {
		return DefaultGreeting
	}
	return fmt.Sprintf("Hello! I'm %s. I can see you've shared code with me. How can I help you analyze, optimize, or improve it?", agent.DisplayName())
}

// WordCount counts whitespace-separated tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// UserMessage is the text sent upstream for one instruction.
func UserMessage(code, instruction string) string {
	return "Code context:\n```\n" + code + "\n```\n\nUser instruction: " + instruction
}

// History maps the last MaxHistory messages to role-tagged turns.
func History(msgs []models.Message) []models.Turn {
	if len(msgs) > MaxHistory {
		msgs = msgs[len(msgs)-MaxHistory:]
	}
	turns := make([]models.Turn, 0, len(msgs))
	for _, m := range msgs {
		turns = append(turns, models.Turn{Role: m.Role(), Content: m.Content})
	}
	return turns
}

func (s *Session) newMessage(content string, sender models.Sender, marker bool) models.Message {
	return models.Message{
		ID:                 s.newID(),
		Content:            content,
		Sender:             sender,
		CreatedAt:          s.now(),
		IsAttachmentMarker: marker,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	switch {
	case s.busy:
		return StateAwaitingResponse
	case s.hasCode:
		return StateReady
	default:
		return StateAwaitingCode
	}
}

func (s *Session) Agent() models.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agent
}

// Code returns the code buffer.
func (s *Session) Code() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

// OutputCode returns the most recently extracted code.
func (s *Session) OutputCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Load restores the transcript and both code buffers from the store. A
// missing or unreadable transcript leaves the default greeting in place.
// Attached code is restored as attached only when the transcript still
// carries the attachment marker.
func (s *Session) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		return
	}

	if raw, ok := s.get(ctx, KeyMessages); ok && raw != "" {
		var msgs []models.Message
		if err := json.Unmarshal([]byte(raw), &msgs); err != nil {
			s.log.Warn("ignoring corrupt chat history", zap.Error(apperr.Persistence("decode chat history", err)))
		} else if len(msgs) > 0 {
			for i := range msgs {
				if msgs[i].Sender != models.SenderUser {
					msgs[i].Sender = models.SenderAssistant
				}
			}
			s.messages = msgs
		}
	}

	if code, ok := s.get(ctx, KeyInputCode); ok {
		s.code = code
	}
	if out, ok := s.get(ctx, KeyOutputCode); ok {
		s.output = out
	}

	s.hasCode = strings.TrimSpace(s.code) != "" && hasMarker(s.messages)
}

func hasMarker(msgs []models.Message) bool {
	for _, m := range msgs {
		if m.IsAttachmentMarker {
			return true
		}
	}
	return false
}

// Attach replaces the code buffer. The first attach of a session moves it to
// StateReady and restarts the transcript with the attachment marker and the
// agent's greeting.
func (s *Session) Attach(ctx context.Context, code string) error {
	if strings.TrimSpace(code) == "" {
		return ErrEmptyCode
	}
	if n := WordCount(code); n > MaxCodeWords {
		return fmt.Errorf("%w (currently %d words)", ErrCodeTooLong, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.code = code
	s.set(ctx, KeyInputCode, code)

	if s.hasCode {
		return nil
	}
	s.hasCode = true
	s.resetLocked(ctx)
	return nil
}

// SelectAgent switches the agent and restarts the transcript. Selecting the
// current agent is a no-op.
func (s *Session) SelectAgent(ctx context.Context, agent models.Agent) error {
	if _, ok := models.ParseAgent(string(agent)); !ok {
		return apperr.Validation(fmt.Sprintf("unknown agent: %q", agent))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	if agent == s.agent {
		return nil
	}
	s.agent = agent
	s.resetLocked(ctx)
	return nil
}

// Clear drops the attachment and both code buffers and restarts the
// transcript with the default greeting.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		return ErrBusy
	}
	s.hasCode = false
	s.code = ""
	s.output = ""
	s.set(ctx, KeyInputCode, "")
	s.set(ctx, KeyOutputCode, "")
	s.resetLocked(ctx)
	return nil
}

func (s *Session) resetLocked(ctx context.Context) {
	msgs := make([]models.Message, 0, 2)
	if s.hasCode {
		msgs = append(msgs, s.newMessage(AttachmentMarker, models.SenderUser, true))
	}
	msgs = append(msgs, s.newMessage(Greeting(s.agent, s.hasCode), models.SenderAssistant, false))
	s.messages = msgs
	s.persistMessagesLocked(ctx)
}

// Reply is the outcome of one Send.
type Reply struct {
	Message models.Message
	Code    string
}

// Send runs one chat turn. Validation failures return an error and change
// nothing. When the proxy fails, the canned error reply is appended and
// returned together with the error.
func (s *Session) Send(ctx context.Context, input string) (*Reply, error) {
	input = strings.TrimSpace(input)

	s.mu.Lock()
	switch {
	case s.busy:
		s.mu.Unlock()
		return nil, ErrBusy
	case input == "":
		s.mu.Unlock()
		return nil, ErrEmptyMessage
	case !s.hasCode:
		s.mu.Unlock()
		return nil, ErrNoCode
	}
	if n := WordCount(input); n > MaxInputWords {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w (currently %d words)", ErrMessageTooLong, n)
	}

	req := proxy.Request{
		Agent:               string(s.agent),
		UserMessage:         UserMessage(s.code, input),
		ConversationHistory: History(s.messages),
	}
	s.messages = append(s.messages, s.newMessage(input, models.SenderUser, false))
	s.persistMessagesLocked(ctx)
	s.busy = true
	s.mu.Unlock()

	content, err := s.callProxy(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		s.log.Error("chat turn failed", zap.String("agent", req.Agent), zap.Error(err))
		if s.notifier != nil {
			s.notifier.Notify(ErrorNotice)
		}
		msg := s.newMessage(ErrorReply, models.SenderAssistant, false)
		s.messages = append(s.messages, msg)
		s.persistMessagesLocked(ctx)
		return &Reply{Message: msg}, err
	}

	res := postprocess.Process(content)
	if res.HasCode() {
		s.output = res.Code
		s.set(ctx, KeyOutputCode, res.Code)
		if s.sink != nil {
			s.sink.SetOptimizedCode(res.Code)
		}
	}
	msg := s.newMessage(res.Display, models.SenderAssistant, false)
	s.messages = append(s.messages, msg)
	s.persistMessagesLocked(ctx)
	return &Reply{Message: msg, Code: res.Code}, nil
}

func (s *Session) callProxy(ctx context.Context, req proxy.Request) (content string, err error) {
	if s.proxy == nil {
		return "", apperr.Configuration("no proxy configured")
	}
	defer func() {
		if v := recover(); v != nil {
			err = apperr.New(apperr.KindInternal, "proxy panicked", fmt.Errorf("%v", v))
		}
	}()
	return s.proxy.Chat(ctx, req)
}

func (s *Session) persistMessagesLocked(ctx context.Context) {
	raw, err := json.Marshal(s.messages)
	if err != nil {
		s.log.Warn("encode chat history", zap.Error(err))
		return
	}
	s.set(ctx, KeyMessages, string(raw))
}

func (s *Session) get(ctx context.Context, key string) (string, bool) {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("read from store failed", zap.String("key", key), zap.Error(apperr.Persistence("get", err)))
		return "", false
	}
	return v, ok
}

func (s *Session) set(ctx context.Context, key, value string) {
	if s.store == nil {
		return
	}
	if err := s.store.Set(ctx, key, value); err != nil {
		s.log.Warn("write to store failed", zap.String("key", key), zap.Error(apperr.Persistence("set", err)))
	}
}
