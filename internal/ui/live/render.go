package live

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"thyrocheck/internal/chat"
	"thyrocheck/internal/flow"
	"thyrocheck/internal/risk"
)

// footerHeight is the number of lines below the transcript.
const footerHeight = 16

const thinkingText = "Analyzing your answers..."

// renderHeader renders the title line.
func renderHeader(noColor bool) string {
	return stylize("Thyroid risk check", noColor, lipgloss.Color("33"))
}

// renderTranscript renders messages, system messages on the left and user
// messages indented.
func renderTranscript(messages []chat.Message, width int, noColor bool) string {
	if width <= 0 {
		width = 80
	}
	wrap := lipgloss.NewStyle().Width(max(width-6, 20))
	blocks := make([]string, 0, len(messages))
	for _, message := range messages {
		text := emphasize(message.Text, noColor)
		switch message.Origin {
		case chat.OriginUser:
			label := stylize("You", noColor, lipgloss.Color("36"))
			blocks = append(blocks, indent(label+"\n"+wrap.Render(text), "      "))
		default:
			label := stylize("Assistant", noColor, lipgloss.Color("33"))
			blocks = append(blocks, label+"\n"+wrap.Render(text))
		}
	}
	return strings.Join(blocks, "\n\n")
}

// renderInput renders the control for the current step.
func (m Model) renderInput() string {
	snapshot := m.state.Snapshot
	switch {
	case snapshot.Stalled:
		return stylize("The conversation cannot continue. Press ctrl+r to start over.", m.noColor, lipgloss.Color("160"))
	case snapshot.Computing:
		return m.spinner.View() + " " + thinkingText
	case snapshot.Verdict != nil && snapshot.Terminal():
		return renderResultCard(*snapshot.Verdict, m.noColor)
	}

	step := snapshot.Step
	switch step.Kind {
	case flow.KindInput:
		return m.input.View()
	case flow.KindChoice:
		return renderOptions(step, m.state, false, m.noColor)
	case flow.KindMultiChoice:
		return renderOptions(step, m.state, true, m.noColor)
	}
	return ""
}

func renderOptions(step flow.Step, state State, multi bool, noColor bool) string {
	lines := make([]string, 0, len(step.Options))
	for i, option := range step.Options {
		cursor := "  "
		if i == state.Cursor {
			cursor = stylize("> ", noColor, lipgloss.Color("212"))
		}
		box := ""
		if multi {
			box = "[ ] "
			if state.Selected[option.Value] {
				box = "[x] "
			}
		}
		lines = append(lines, cursor+box+option.Label)
	}
	return strings.Join(lines, "\n")
}

var levelColors = map[risk.Level]lipgloss.Color{
	risk.Low:      lipgloss.Color("34"),
	risk.Moderate: lipgloss.Color("214"),
	risk.High:     lipgloss.Color("196"),
}

// renderResultCard renders the level badge and risk bar.
func renderResultCard(verdict risk.Verdict, noColor bool) string {
	badge := " " + verdict.Level.Label() + " "
	gauge := bar(verdict.Level.Percent(), 30)
	if !noColor {
		color := levelColors[verdict.Level]
		badge = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231")).Background(color).Render(badge)
		gauge = lipgloss.NewStyle().Foreground(color).Render(gauge)
	}
	card := lipgloss.JoinVertical(lipgloss.Left, badge, gauge)
	if noColor {
		return card
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).Render(card)
}

func bar(percent, width int) string {
	filled := percent * width / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func renderStatus(status string, noColor bool) string {
	if status == "" {
		return ""
	}
	return stylize(status, noColor, lipgloss.Color("244"))
}

// renderHelp lists the keys that apply to the current step.
func renderHelp(snapshot chat.Snapshot, noColor bool) string {
	var parts []string
	switch {
	case snapshot.Terminal():
		parts = []string{"ctrl+e export", "ctrl+r restart", "esc quit"}
	case snapshot.Step.Kind == flow.KindMultiChoice:
		parts = []string{"↑/↓ move", "space toggle", "enter send", "ctrl+r restart", "esc quit"}
	case snapshot.Step.Kind == flow.KindChoice:
		parts = []string{"↑/↓ move", "enter send", "ctrl+r restart", "esc quit"}
	default:
		parts = []string{"enter send", "ctrl+r restart", "esc quit"}
	}
	return stylize(strings.Join(parts, " · "), noColor, lipgloss.Color("240"))
}

var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.+?)\*`)
)

// emphasize renders the narrative's bold and italic markers.
func emphasize(text string, noColor bool) string {
	bold := lipgloss.NewStyle().Bold(true)
	italic := lipgloss.NewStyle().Italic(true)
	text = boldPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[2 : len(match)-2]
		if noColor {
			return inner
		}
		return bold.Render(inner)
	})
	return italicPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[1 : len(match)-1]
		if noColor {
			return inner
		}
		return italic.Render(inner)
	})
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
