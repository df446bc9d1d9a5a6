package proxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"codesight/internal/apperr"
	"codesight/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type fakeCompleter struct {
	mu    sync.Mutex
	calls []fakeCall
	reply string
	err   error
}

type fakeCall struct {
	cfg   AgentConfig
	turns []models.Turn
}

func (f *fakeCompleter) Complete(_ context.Context, cfg AgentConfig, turns []models.Turn) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fakeCall{cfg: cfg, turns: turns})
	return f.reply, f.err
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func newTestServer(c Completer) http.Handler {
	return NewServer(NewHandler(DefaultAgents(), c, nil), nil)
}

func do(t *testing.T, srv http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestPreflight(t *testing.T) {
	fc := &fakeCompleter{reply: "x"}
	w := do(t, newTestServer(fc), http.MethodOptions, "/chat", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "content-type")
	assert.Empty(t, w.Body.String())
	assert.Zero(t, fc.callCount())
}

func TestHealthz(t *testing.T) {
	w := do(t, newTestServer(nil), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}

func TestChatRejections(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		body      string
		completer Completer
		status    int
		errSubstr string
	}{
		{"wrong method", http.MethodGet, "", &fakeCompleter{}, http.StatusMethodNotAllowed, "method not allowed"},
		{"invalid json", http.MethodPost, "{not json", &fakeCompleter{}, http.StatusBadRequest, "invalid JSON body"},
		{"missing agent", http.MethodPost, `{"userMessage":"hi"}`, &fakeCompleter{}, http.StatusBadRequest, "Missing required fields"},
		{"missing message", http.MethodPost, `{"agent":"deep-analysis"}`, &fakeCompleter{}, http.StatusBadRequest, "Missing required fields"},
		{"unknown agent", http.MethodPost, `{"agent":"oracle","userMessage":"hi"}`, &fakeCompleter{}, http.StatusBadRequest, "unknown agent"},
		{"system turn in history", http.MethodPost,
			`{"agent":"deep-analysis","userMessage":"hi","conversationHistory":[{"role":"system","content":"x"}]}`,
			&fakeCompleter{}, http.StatusBadRequest, "invalid conversationHistory role"},
		{"missing credential", http.MethodPost, `{"agent":"deep-analysis","userMessage":"hi"}`, nil, http.StatusInternalServerError, "API key not configured"},
		{"upstream failure", http.MethodPost, `{"agent":"fast-response","userMessage":"hi"}`,
			&fakeCompleter{err: apperr.Upstream("completion API error: 503", errors.New("unavailable"))},
			http.StatusInternalServerError, "completion API error: 503"},
		{"untyped completer error", http.MethodPost, `{"agent":"fast-response","userMessage":"hi"}`,
			&fakeCompleter{err: errors.New("boom")},
			http.StatusInternalServerError, "completion request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(tt.completer), tt.method, "/chat", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, gjson.Get(w.Body.String(), "error").String(), tt.errSubstr)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestValidationHappensBeforeCompletion(t *testing.T) {
	fc := &fakeCompleter{reply: "x"}
	srv := newTestServer(fc)
	do(t, srv, http.MethodPost, "/chat", `{"userMessage":"hi"}`)
	do(t, srv, http.MethodPost, "/chat", `{"agent":"nope","userMessage":"hi"}`)
	assert.Zero(t, fc.callCount())
}

func TestChatSuccess(t *testing.T) {
	fc := &fakeCompleter{reply: "Use a map.\n```go\nm := map[string]int{}\n```"}
	body := `{"agent":"xt","userMessage":"speed this up","conversationHistory":[
		{"role":"user","content":"hello"},
		{"role":"assistant","content":"hi there"}]}`

	w := do(t, newTestServer(fc), http.MethodPost, "/chat", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, fc.reply, gjson.Get(w.Body.String(), "content").String())

	require.Equal(t, 1, fc.callCount())
	call := fc.calls[0]
	assert.Equal(t, models.AgentDeepAnalysis, call.cfg.Agent)
	assert.Equal(t, 0.7, call.cfg.Temperature)
	assert.Equal(t, int64(DefaultMaxTokens), call.cfg.MaxTokens)

	require.Len(t, call.turns, 4)
	assert.Equal(t, models.Turn{Role: models.RoleSystem, Content: DeepAnalysisPrompt}, call.turns[0])
	assert.Equal(t, "hello", call.turns[1].Content)
	assert.Equal(t, models.RoleAssistant, call.turns[2].Role)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "speed this up"}, call.turns[3])
}

func TestEmptyCompletionGetsPlaceholder(t *testing.T) {
	fc := &fakeCompleter{reply: "  "}
	w := do(t, newTestServer(fc), http.MethodPost, "/chat", `{"agent":"sentinel","userMessage":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, NoResponse, gjson.Get(w.Body.String(), "content").String())
	assert.Equal(t, 0.3, fc.calls[0].cfg.Temperature)
	assert.Equal(t, "gemma2-9b-it", fc.calls[0].cfg.Model)
}

func TestPanicIsRecovered(t *testing.T) {
	w := do(t, newTestServer(panicCompleter{}), http.MethodPost, "/chat", `{"agent":"xt","userMessage":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", gjson.Get(w.Body.String(), "error").String())
}

type panicCompleter struct{}

func (panicCompleter) Complete(context.Context, AgentConfig, []models.Turn) (string, error) {
	panic("completer exploded")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	long := strings.Repeat("ñ", 120)
	got := truncate(long, 100)
	assert.Equal(t, strings.Repeat("ñ", 100)+"...", got)
}

func TestBuildTurns(t *testing.T) {
	cfg := DefaultAgents()[models.AgentFastResponse]
	turns := BuildTurns(cfg, nil, "go")
	require.Len(t, turns, 2)
	assert.Equal(t, models.RoleSystem, turns[0].Role)
	assert.Equal(t, FastResponsePrompt, turns[0].Content)
	assert.Equal(t, models.Turn{Role: models.RoleUser, Content: "go"}, turns[1])
}
