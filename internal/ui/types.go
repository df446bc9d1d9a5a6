package ui

import (
	"sync"
	"time"

	"codesight/internal/chat"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

const (
	MaxInputHeight = 6
	// NoticeTTL is how long a notice stays in the status line.
	NoticeTTL = 4 * time.Second
)

type Model struct {
	Session *chat.Session
	Log     *zap.Logger

	TextInput textarea.Model
	Viewport  viewport.Model
	Spinner   spinner.Model
	Renderer  *glamour.TermRenderer

	Loading  bool
	ShowCode bool
	Notice   string
	NoticeAt time.Time
	Err      error

	// SaveDir is where /save writes optimized code.
	SaveDir string

	WindowWidth  int
	WindowHeight int

	now func() time.Time
}

type (
	ResponseMsg struct {
		Input string
		Reply *chat.Reply
		Err   error
	}
	NoticeMsg      string
	CodeUpdatedMsg struct{}
	clearNoticeMsg struct{ at time.Time }
)

// Bridge forwards session callbacks into the running program. The session
// calls it with its lock held, so delivery never blocks the caller.
type Bridge struct {
	mu sync.Mutex
	p  *tea.Program
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.p = p
	b.mu.Unlock()
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.p
	b.mu.Unlock()
	if p != nil {
		go p.Send(msg)
	}
}

func (b *Bridge) Notify(msg string) { b.send(NoticeMsg(msg)) }

func (b *Bridge) SetOptimizedCode(string) { b.send(CodeUpdatedMsg{}) }
