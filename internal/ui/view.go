package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/five82/duetmon/internal/duet"
)

const (
	labelWidth      = 12
	defaultBarWidth = 40
	maxBarWidth     = 60

	maxWarnings      = 3
	warningScanLines = 500
)

// barWidth sizes the progress bar to the terminal, leaving room for the
// border, padding and the percentage label.
func barWidth(termWidth int) int {
	w := termWidth - 4 - 8
	if w > maxBarWidth {
		return maxBarWidth
	}
	if w < 10 {
		return 10
	}
	return w
}

// lineWidth is the text width inside the panel border and padding.
func lineWidth(termWidth int) int {
	if w := termWidth - 6; w > 20 {
		return w
	}
	return 20
}

func (m Model) renderPanel() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	p := snap.Printer

	var b strings.Builder

	// Header: name + state badge
	name := p.PrinterName
	if name == "" {
		name = m.host
	}
	b.WriteString(styles.Title.Render(name))
	b.WriteString("  ")
	b.WriteString(styles.StateStyle(p.Classification()).Render(stateBadge(p)))
	b.WriteString("\n\n")

	switch {
	case !snap.HasStatus:
		b.WriteString(styles.FaintText.Render("Waiting for first poll of " + m.host))
		b.WriteString("\n")
	default:
		m.renderJob(&b, styles, p)
		b.WriteString("\n")
		m.renderTemps(&b, styles, p)
	}

	if len(m.warnings) > 0 {
		b.WriteString("\n")
		m.renderWarnings(&b, styles)
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter(styles))

	panel := styles.Panel.Render(b.String())
	return lipgloss.JoinVertical(lipgloss.Left, panel, m.help.View(m.keys))
}

func (m Model) renderJob(b *strings.Builder, styles Styles, p duet.PrinterStatus) {
	completion := p.Completion()
	percent, _ := strconv.ParseFloat(completion, 64)
	b.WriteString(m.progress.ViewAs(percent / 100))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(orDash(completion, "%")))
	b.WriteString("\n")

	row(b, styles, "Time left", formatSeconds(p.TimeLeft()))
	row(b, styles, "Elapsed", formatSeconds(p.ProgressPrintTime))
	row(b, styles, "File", orDash(p.FileName, ""))
	row(b, styles, "Size", formatBytes(p.FileSize))
	row(b, styles, "Filament", formatFilament(p.FilamentLength))
}

func (m Model) renderTemps(b *strings.Builder, styles Styles, p duet.PrinterStatus) {
	row(b, styles, "Tool", formatTemp(p.ToolTemp, p.ToolTargetTemp))
	row(b, styles, "Bed", formatTemp(p.BedTemp, p.BedTargetTemp))
}

func (m Model) renderWarnings(b *strings.Builder, styles Styles) {
	b.WriteString(styles.FaintText.Render("Recent warnings"))
	b.WriteString("\n")
	for _, e := range m.warnings {
		style := styles.WarningText
		if e.Level == "ERROR" {
			style = styles.DangerText
		}
		b.WriteString(style.Render(ansi.Truncate(e.Summary(), lineWidth(m.width), "…")))
		b.WriteString("\n")
	}
}

func (m Model) renderFooter(styles Styles) string {
	snap := m.snapshot
	var lines []string

	if snap.IsOffline() {
		lines = append(lines, styles.DangerText.Render(
			fmt.Sprintf("Offline: %d polls failed", snap.ConsecutiveFailures)))
	}
	if msg := snap.Printer.Error; msg != "" {
		lines = append(lines, styles.WarningText.Render(msg))
	} else if snap.LastError != nil {
		lines = append(lines, styles.WarningText.Render(snap.LastError.Error()))
	}
	if m.saveError != nil {
		lines = append(lines, styles.WarningText.Render("save prefs: "+m.saveError.Error()))
	}

	updated := "never"
	if !snap.LastSuccess.IsZero() {
		updated = formatAge(m.now.Sub(snap.LastSuccess)) + " ago"
	}
	lines = append(lines, styles.FaintText.Render(
		fmt.Sprintf("%s  updated %s  theme %s", m.host, updated, m.theme.Name)))

	return strings.Join(lines, "\n")
}

func row(b *strings.Builder, styles Styles, label, value string) {
	b.WriteString(styles.Label.Render(label))
	b.WriteString(styles.Text.Render(value))
	b.WriteString("\n")
}

// stateBadge shows the classification with the firmware status name.
func stateBadge(p duet.PrinterStatus) string {
	if p.State == "" {
		return p.StateLabel()
	}
	return p.StateLabel() + " · " + p.Code().String()
}
