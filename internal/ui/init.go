package ui

import (
	"time"

	"codesight/internal/chat"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func NewModel(session *chat.Session, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	ti := textarea.New()
	ti.Placeholder = "Ask about your code, or /help"
	ti.Prompt = "❯ "
	ti.ShowLineNumbers = false
	ti.CharLimit = 0
	ti.MaxHeight = MaxInputHeight
	ti.SetHeight(2)
	ti.SetWidth(80)
	ti.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB")).Bold(true)
	ti.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.BlurredStyle.Placeholder = lipgloss.NewStyle().Foreground(lipgloss.Color("#545454"))
	ti.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ti.BlurredStyle.CursorLine = lipgloss.NewStyle()
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#B39DDB"))

	return Model{
		Session:   session,
		Log:       log,
		TextInput: ti,
		Viewport:  viewport.New(60, 15),
		Spinner:   sp,
		SaveDir:   ".",
		now:       time.Now,
	}
}

func (m *Model) Init() tea.Cmd {
	m.UpdateViewport()
	return tea.Batch(
		m.TextInput.Cursor.BlinkCmd(),
		m.Spinner.Tick,
	)
}

// NewProgram wires the bridge to the program so session notices reach the
// event loop.
func NewProgram(m *Model, bridge *Bridge) *tea.Program {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if bridge != nil {
		bridge.Attach(p)
	}
	return p
}
