package ui

import (
	"fmt"
	"strings"

	"codesight/internal/files"
	"codesight/internal/models"
	"codesight/internal/sniff"
	"codesight/internal/styles"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
)

func WrappedLineCount(value string, width int) int {
	if width <= 0 {
		return 1
	}
	lines := strings.Split(value, "\n")
	count := 0
	for _, line := range lines {
		w := runewidth.StringWidth(line)
		if w == 0 {
			count++
			continue
		}
		count += (w-1)/width + 1
	}
	return count
}

func TruncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}

// Highlight colors code for the terminal using the lexer for lang. Any
// highlighting failure returns code unchanged.
func Highlight(code string, lang sniff.Language) string {
	var b strings.Builder
	if err := quick.Highlight(&b, code, lang.Lexer(), "terminal256", styles.ChromaStyle()); err != nil {
		return code
	}
	return b.String()
}

func FormatUserMessage(content string, width int) string {
	label := styles.UserLabelStyle.Render("YOU")
	msg := styles.UserMsgStyle.Width(max(width-4, 10)).Render(content)
	return fmt.Sprintf("%s\n%s", label, msg)
}

func FormatAgentMessage(agent models.Agent, content string, r *glamour.TermRenderer) string {
	if r != nil {
		if rendered, err := r.Render(content); err == nil {
			content = strings.TrimSpace(rendered)
		}
	}
	return fmt.Sprintf("%s\n%s", styles.AgentLabel(agent), styles.AgentMsg(agent).Render(content))
}

func FormatMessage(msg models.Message, agent models.Agent, width int, r *glamour.TermRenderer) string {
	switch {
	case msg.IsAttachmentMarker:
		return styles.MarkerStyle.Render(msg.Content)
	case msg.Sender == models.SenderUser:
		return FormatUserMessage(msg.Content, width)
	default:
		return FormatAgentMessage(agent, msg.Content, r)
	}
}

func FormatStats(st files.Stats) string {
	return fmt.Sprintf("%s  %s  %s lines (%d → %d)",
		styles.StatsAddedStyle.Render(fmt.Sprintf("+%d", st.Added)),
		styles.StatsRemovedStyle.Render(fmt.Sprintf("-%d", st.Removed)),
		st.Improvement(), st.OriginalLines, st.OutputLines)
}
