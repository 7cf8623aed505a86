package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/helios/internal/daytimes"
	"github.com/five82/helios/internal/logtail"
)

const emptyTime = "--:--"

// renderMain renders header, command bar, day card, status line and the
// optional log pane.
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.renderCard()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if m.gotoMode {
		b.WriteString("\n")
		b.WriteString(m.renderGoto())
	}

	if m.showLogs {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}
	return b.String()
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	parts := []string{
		styles.Logo.Render("helios"),
		styles.AccentText.Render(offsetLabel(m.selected)),
	}
	if loc := strings.TrimSpace(m.location); loc != "" {
		parts = append(parts, styles.MutedText.Render(loc))
	}
	return styles.Header.Width(m.width).Render(strings.Join(parts, "  "))
}

func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bindings := []struct{ key, desc string }{
		{m.keys.Prev.Help().Key, "prev"},
		{m.keys.Next.Help().Key, "next"},
		{m.keys.Today.Help().Key, "today"},
		{m.keys.Goto.Help().Key, "goto"},
		{m.keys.ToggleLogs.Help().Key, "logs"},
		{m.keys.Help.Help().Key, "help"},
		{m.keys.Quit.Help().Key, "quit"},
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		parts = append(parts, styles.WarningText.Render("<"+kb.key+">")+" "+kb.desc)
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, " "))
}

func (m Model) renderCard() string {
	styles := m.theme.Styles()
	if !m.day.Valid || m.day.Offset != m.selected {
		return styles.Card.Render(styles.MutedText.Render("pending"))
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(fallback(m.day.Date, "?")))
	b.WriteString("\n\n")
	rows := []struct {
		label string
		value string
	}{
		{"Dawn", m.day.Dawn},
		{"Sunrise", m.day.Sunrise},
		{"Sunset", m.day.Sunset},
		{"Dusk", m.day.Dusk},
	}
	label := styles.MutedText.Width(9)
	for i, row := range rows {
		b.WriteString(label.Render(row.label))
		b.WriteString(styles.AccentText.Render(fallback(row.value, emptyTime)))
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return styles.Card.Render(b.String())
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	status := m.status
	if status == "" {
		return ""
	}
	style := styles.MutedText
	switch {
	case strings.HasPrefix(status, "error:"), strings.HasPrefix(status, "dropped:"):
		style = styles.DangerText
	case strings.HasPrefix(status, "send failed:"), strings.HasPrefix(status, "outbox:"):
		style = styles.WarningText
	case strings.HasPrefix(status, "connected"):
		style = styles.InfoText
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, style.Render(status))
}

func (m Model) renderGoto() string {
	styles := m.theme.Styles()
	line := styles.AccentText.Render("go to: ") + m.gotoInput.View()
	if m.gotoErr != "" {
		line += "  " + styles.DangerText.Render(m.gotoErr)
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, line)
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	title := styles.AccentText.Bold(true).Render("Log") + " " + styles.FaintText.Render(m.logPath)
	return title + "\n" + m.logViewport.View()
}

func (m Model) renderLogLines() string {
	if len(m.logLines) == 0 {
		return m.theme.Styles().FaintText.Render("(no log output yet)")
	}
	styles := m.theme.Styles()
	out := make([]string, len(m.logLines))
	for i, line := range m.logLines {
		out[i] = styles.LevelStyle(logtail.Level(line)).Render(line)
	}
	return strings.Join(out, "\n")
}

// offsetLabel renders an offset as "today", "+1 day" or "-3 days".
func offsetLabel(offset int32) string {
	switch offset {
	case 0:
		return "today"
	case 1, -1:
		return fmt.Sprintf("%+d day", offset)
	default:
		return fmt.Sprintf("%+d days", offset)
	}
}

func fallback(value, alt string) string {
	if strings.TrimSpace(value) == "" {
		return alt
	}
	return value
}

// FormatDay renders a record on one line for plain output.
func FormatDay(r daytimes.DayRecord) string {
	if !r.Valid {
		return fmt.Sprintf("[%s] pending", offsetLabel(r.Offset))
	}
	return fmt.Sprintf("[%s] %s  dawn %s  sunrise %s  sunset %s  dusk %s",
		offsetLabel(r.Offset),
		fallback(r.Date, "?"),
		fallback(r.Dawn, emptyTime),
		fallback(r.Sunrise, emptyTime),
		fallback(r.Sunset, emptyTime),
		fallback(r.Dusk, emptyTime),
	)
}
