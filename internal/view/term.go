package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coachtui/woflo/internal/classify"
)

var (
	termNeutral = lipgloss.Color("#94a3b8")
	termSuccess = lipgloss.Color("#10b981")
	termInfo    = lipgloss.Color("#3b82f6")
	termWarning = lipgloss.Color("#f59e0b")
	termDanger  = lipgloss.Color("#ef4444")
	termPurple  = lipgloss.Color("#a855f7")
	termBorder  = lipgloss.Color("#cbd5e1")
	termAccent  = lipgloss.Color("#ffd200")
)

func termColor(c classify.Category) lipgloss.Color {
	switch c {
	case classify.Success:
		return termSuccess
	case classify.Info:
		return termInfo
	case classify.Warning:
		return termWarning
	case classify.Danger:
		return termDanger
	case classify.Purple:
		return termPurple
	default:
		return termNeutral
	}
}

// Term renders primitives for a terminal. Interactive pieces (forms, hidden
// inputs) have no terminal form and render as nothing or as a bracketed
// label.
type Term struct {
	// Width caps panel width; zero means unbounded.
	Width int
}

var _ Renderer = Term{}

func (Term) Badge(b Badge) string {
	style := lipgloss.NewStyle().Foreground(termColor(b.Category))
	if b.Size == SizeLG {
		style = style.Bold(true)
	}
	label := b.Label
	if b.Icon != "" {
		label = b.Icon + " " + label
	}
	return style.Render("[" + label + "]")
}

func (Term) MetricCard(m MetricCard) string {
	lines := []string{
		lipgloss.NewStyle().Faint(true).Render(m.Label),
		lipgloss.NewStyle().Bold(true).Render(m.Value),
	}
	if m.Trend != nil {
		arrow, color := "↓", termDanger
		if m.Trend.Up {
			arrow, color = "↑", termSuccess
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(color).Render(fmt.Sprintf("%s %s%%", arrow, percent(m.Trend.Magnitude))))
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(termBorder).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (t Term) Panel(p Panel) string {
	var parts []string
	if p.Title != "" {
		header := lipgloss.NewStyle().Bold(true).Render(p.Title)
		if p.Action != "" {
			header += "  " + p.Action
		}
		parts = append(parts, header)
		if p.Description != "" {
			parts = append(parts, lipgloss.NewStyle().Faint(true).Render(p.Description))
		}
		parts = append(parts, "")
	}
	parts = append(parts, p.Body)

	border := termBorder
	if p.Muted {
		border = termNeutral
	}
	style := lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(border).Padding(0, 1)
	if t.Width > 0 {
		style = style.Width(t.Width)
	}
	return style.Render(strings.Join(parts, "\n"))
}

func (Term) Empty(e Empty) string {
	lines := []string{lipgloss.NewStyle().Bold(true).Render(e.Title)}
	if e.Description != "" {
		lines = append(lines, lipgloss.NewStyle().Faint(true).Render(e.Description))
	}
	if e.Action != "" {
		lines = append(lines, e.Action)
	}
	return strings.Join(lines, "\n")
}

func (Term) Loading(l Loading) string {
	if l.Message == "" {
		l.Message = "Loading..."
	}
	return lipgloss.NewStyle().Foreground(termAccent).Render("… " + l.Message)
}

func (Term) Error(e Error) string {
	if e.Message == "" {
		e.Message = "Something went wrong. Please try again."
	}
	out := lipgloss.NewStyle().Foreground(termDanger).Bold(true).Render("Error: ") + e.Message
	if e.RetryHref != "" {
		out += "\n" + lipgloss.NewStyle().Faint(true).Render("(retry with --refresh)")
	}
	return out
}

func (Term) Notice(n Notice) string {
	return lipgloss.NewStyle().Foreground(termColor(n.Category)).Render("! " + n.Message)
}

func (Term) Action(a Action) string {
	if a.Active {
		return lipgloss.NewStyle().Foreground(termAccent).Bold(true).Render("[" + a.Label + "]")
	}
	return lipgloss.NewStyle().Faint(true).Render("[" + a.Label + "]")
}

func (Term) Form(Form) string { return "" }

func (Term) Heading(text string) string {
	return lipgloss.NewStyle().Bold(true).Underline(true).Render(text)
}

func (Term) Field(label, value string) string {
	return lipgloss.NewStyle().Bold(true).Render(label+":") + " " + value
}

func (Term) Text(text string) string { return text }

func (Term) Row(parts ...string) string {
	return lipgloss.JoinHorizontal(lipgloss.Center, spaced(parts)...)
}

func (Term) Stack(parts ...string) string {
	return strings.Join(nonEmpty(parts), "\n\n")
}

func (Term) Grid(columns int, parts ...string) string {
	if columns < 1 {
		columns = 1
	}
	var rows []string
	for i := 0; i < len(parts); i += columns {
		end := min(i+columns, len(parts))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, spaced(parts[i:end])...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func spaced(parts []string) []string {
	parts = nonEmpty(parts)
	out := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, p)
	}
	return out
}
