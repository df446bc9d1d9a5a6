package ui

import (
	"fmt"
	"strings"

	"codesight/internal/chat"
	"codesight/internal/files"
	"codesight/internal/sniff"
	"codesight/internal/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetWelcomeScreen(width, height int) string {
	art := `
 ╭──────────────────────────────────────────────╮
 │                                              │
 │   ╔═╗╔═╗╔╦╗╔═╗  ╔═╗╦╔═╗╦ ╦╔╦╗               │
 │   ║  ║ ║ ║║║╣   ╚═╗║║ ╦╠═╣ ║                │
 │   ╚═╝╚═╝═╩╝╚═╝  ╚═╝╩╚═╝╩ ╩ ╩                │
 │                                              │
 ╰──────────────────────────────────────────────╯
`
	subtitle := "Share code with /attach <file> or /paste, then ask away."

	content := lipgloss.JoinVertical(lipgloss.Center,
		styles.WelcomeArtStyle.Render(art),
		lipgloss.NewStyle().Width(min(width, 60)).Render(chat.DefaultGreeting),
		"",
		styles.WelcomeSubtitleStyle.Render(subtitle),
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderCodePanel(title, code string) string {
	width := max(m.Viewport.Width-4, 20)
	if strings.TrimSpace(code) == "" {
		return styles.CodePanelStyle.Width(width).Render(
			styles.PanelTitleStyle.Render(title) + "\n" + styles.InfoStyle("(empty)"))
	}
	lang := sniff.Detect(code)
	header := styles.PanelTitleStyle.Render(title) + " " + styles.InfoStyle(string(lang))
	return styles.CodePanelStyle.Width(width).Render(header + "\n" + Highlight(code, lang))
}

// RenderCodePanels shows the attached code next to the latest optimized
// code, with line stats when both exist.
func (m *Model) RenderCodePanels() string {
	code := m.Session.Code()
	out := m.Session.OutputCode()

	parts := []string{
		m.renderCodePanel("Your code", code),
		m.renderCodePanel("Optimized code", out),
	}
	if st, ok := files.DiffStats(code, out); ok {
		parts = append(parts, " "+FormatStats(st))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) UpdateViewport() {
	if m.ShowCode {
		m.Viewport.SetContent(m.RenderCodePanels())
		m.Viewport.GotoTop()
		return
	}

	msgs := m.Session.Messages()
	if !m.Loading && len(msgs) <= 1 && m.Session.State() == chat.StateAwaitingCode {
		m.Viewport.SetContent(GetWelcomeScreen(m.Viewport.Width, m.Viewport.Height))
		return
	}

	agent := m.Session.Agent()
	rendered := make([]string, 0, len(msgs)+1)
	for _, msg := range msgs {
		rendered = append(rendered, FormatMessage(msg, agent, m.Viewport.Width, m.Renderer))
	}
	if m.Loading {
		rendered = append(rendered, fmt.Sprintf("%s\n%s Thinking...", styles.AgentLabel(agent), m.Spinner.View()))
	}
	m.Viewport.SetContent(strings.Join(rendered, "\n\n"))
	m.Viewport.GotoBottom()
}

func (m *Model) RenderBottomBar() string {
	agent := m.Session.Agent()
	badge := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.AgentColor(agent)).
		Padding(0, 1).
		Render(agent.DisplayName())

	state := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(m.Session.State().String())

	left := []string{badge, "  ", state}
	if code := m.Session.Code(); code != "" {
		lang := lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B39DDB")).
			Render(string(sniff.Detect(code)))
		left = append(left, "  ", lang)
	}
	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, left...)

	var right string
	if m.Notice != "" {
		room := m.WindowWidth - lipgloss.Width(leftSide) - 6
		style := styles.NoticeStyle
		if m.Err != nil {
			style = styles.ErrorStyle
		}
		right = style.Render(TruncateRunes(m.Notice, room))
	} else {
		right = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")).
			Render("Help: /help")
	}

	availableWidth := m.WindowWidth - lipgloss.Width(leftSide) - lipgloss.Width(right) - 2
	if availableWidth < 0 {
		availableWidth = 0
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Center, leftSide, strings.Repeat(" ", availableWidth), right)

	return lipgloss.NewStyle().
		Width(m.WindowWidth).
		BorderTop(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(0, 1).
		Render(bar)
}

func (m *Model) View() string {
	inputWidth := m.WindowWidth - 4
	inputBox := styles.InputBoxStyle.Width(inputWidth).Render(m.TextInput.View())

	chatContent := lipgloss.JoinVertical(lipgloss.Center,
		styles.TitleStyle.Render("CODESIGHT"),
		"",
		m.Viewport.View(),
		"",
		inputBox,
	)
	chatArea := lipgloss.PlaceHorizontal(m.WindowWidth, lipgloss.Center, chatContent)

	return lipgloss.JoinVertical(lipgloss.Left, chatArea, m.RenderBottomBar())
}
