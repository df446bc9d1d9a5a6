package styles

import (
	"codesight/internal/models"

	"github.com/charmbracelet/lipgloss"
)

// AgentColors gives each agent its label and border color.
var AgentColors = map[models.Agent]lipgloss.Color{
	models.AgentDeepAnalysis: lipgloss.Color("#B39DDB"),
	models.AgentFastResponse: lipgloss.Color("#80CBC4"),
}

func AgentColor(a models.Agent) lipgloss.Color {
	if c, ok := AgentColors[a]; ok {
		return c
	}
	return lipgloss.Color("#B39DDB")
}

func AgentLabel(a models.Agent) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(AgentColor(a)).
		Bold(true).
		Padding(0, 1).
		MarginRight(1).
		Render(a.DisplayName())
}

func AgentMsg(a models.Agent) lipgloss.Style {
	return AgentMsgStyle.BorderForeground(AgentColor(a))
}

// GlamourStyle picks the markdown theme for the terminal background.
func GlamourStyle() string {
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

// ChromaStyle is the syntax-highlighting theme for code panels.
func ChromaStyle() string {
	if lipgloss.HasDarkBackground() {
		return "monokai"
	}
	return "github"
}
