package ui

import (
	"context"
	"strings"
	"time"

	"codesight/internal/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		spCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, spCmd = m.Spinner.Update(msg)
		if m.Loading {
			m.UpdateViewport()
		}
		return m, spCmd

	case tea.KeyMsg:
		if isNewlineShortcut(msg) {
			m.TextInput.InsertString("\n")
			m.updateInputLayout()
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyCtrlN:
			return m, m.runCommand("/clear")

		case tea.KeyCtrlA:
			return m, m.runCommand("/agent")

		case tea.KeyCtrlO:
			return m, m.runCommand("/code")

		case tea.KeyEnter:
			input := strings.TrimSpace(m.TextInput.Value())
			if input == "" {
				return m, nil
			}
			m.TextInput.Reset()
			m.updateInputLayout()

			if strings.HasPrefix(input, "/") {
				return m, m.runCommand(input)
			}
			if m.Loading {
				m.TextInput.SetValue(input)
				return m, m.notify("Please wait for the current response.")
			}

			m.Loading = true
			m.Err = nil
			m.ShowCode = false
			m.UpdateViewport()
			return m, tea.Batch(m.send(input), m.Spinner.Tick)
		}

	case ResponseMsg:
		m.Loading = false
		m.Err = msg.Err
		var cmd tea.Cmd
		if msg.Err != nil && msg.Reply == nil {
			// Rejected before reaching the proxy; give the text back.
			m.TextInput.SetValue(msg.Input)
			m.updateInputLayout()
			cmd = m.notify(describe(msg.Err))
		}
		m.UpdateViewport()
		return m, cmd

	case NoticeMsg:
		return m, m.notify(string(msg))

	case CodeUpdatedMsg:
		m.UpdateViewport()
		return m, m.notify("Optimized code ready (ctrl+o to view)")

	case clearNoticeMsg:
		if msg.at.Equal(m.NoticeAt) {
			m.Notice = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.WindowWidth = msg.Width
		m.WindowHeight = msg.Height

		chatWidth := msg.Width - 2
		m.Viewport.Width = chatWidth - 2

		m.updateInputLayout()
		m.Renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath(styles.GlamourStyle()),
			glamour.WithWordWrap(chatWidth-6),
		)
		m.UpdateViewport()
		return m, nil
	}

	m.TextInput, tiCmd = m.TextInput.Update(msg)
	m.updateInputLayout()

	// Terminal background queries sometimes leak into the input.
	val := m.TextInput.Value()
	if strings.Contains(val, "]11;rgb:") || strings.Contains(val, "1;rgb:") || strings.Contains(val, "[1;1R") {
		m.TextInput.Reset()
	}

	m.Viewport, vpCmd = m.Viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m *Model) send(input string) tea.Cmd {
	session := m.Session
	return func() tea.Msg {
		reply, err := session.Send(context.Background(), input)
		return ResponseMsg{Input: input, Reply: reply, Err: err}
	}
}

// notify shows text in the status line until NoticeTTL passes or a newer
// notice replaces it.
func (m *Model) notify(text string) tea.Cmd {
	at := m.now()
	m.Notice = text
	m.NoticeAt = at
	return tea.Tick(NoticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{at: at}
	})
}

func isNewlineShortcut(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "shift+enter", "shift+return", "ctrl+j", "ctrl+enter", "alt+enter":
		return true
	default:
		return false
	}
}

func (m *Model) updateInputLayout() {
	if m.WindowWidth == 0 || m.WindowHeight == 0 {
		return
	}

	inputWidth := m.WindowWidth - 6
	if inputWidth < 20 {
		inputWidth = 20
	}
	contentWidth := inputWidth - 2
	if contentWidth < 1 {
		contentWidth = 1
	}

	lineCount := WrappedLineCount(m.TextInput.Value(), contentWidth)
	if lineCount < 1 {
		lineCount = 1
	}
	if lineCount > MaxInputHeight {
		lineCount = MaxInputHeight
	}

	m.TextInput.MaxHeight = MaxInputHeight
	m.TextInput.SetWidth(inputWidth)
	m.TextInput.SetHeight(lineCount)

	inputBoxHeight := m.TextInput.Height() + 2
	reserved := inputBoxHeight + 5
	viewportHeight := m.WindowHeight - reserved
	if viewportHeight < 5 {
		viewportHeight = 5
	}
	m.Viewport.Height = viewportHeight
}
