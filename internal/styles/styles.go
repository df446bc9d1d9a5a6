package styles

import "github.com/charmbracelet/lipgloss"

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#B39DDB")).
			Padding(0, 1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(HintColor).
			Render

	UserLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#90CAF9")).
			Bold(true).
			Padding(0, 1).
			MarginRight(1)

	UserMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}).
			PaddingLeft(2).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("#90CAF9"))

	AgentMsgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#E0E0E0"}).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder())

	// MarkerStyle renders the "code attached" chip in the transcript.
	MarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#7C4DFF")).
			Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF9A9A")).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFCC80")).
			Italic(true)

	InputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#B39DDB")).
			Padding(0, 1)

	CodePanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#545454")).
			Padding(0, 1)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#B39DDB"))

	StatsAddedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A5D6A7"))
	StatsRemovedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF9A9A"))

	WelcomeArtStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"}).
			Bold(true)

	WelcomeSubtitleStyle = lipgloss.NewStyle().
				Foreground(HintColor).
				Italic(true)

	HintColor = lipgloss.Color("#545454")
)
