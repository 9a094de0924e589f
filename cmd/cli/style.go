package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#6C7A89")
)

var styles = struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Box     lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label:   lipgloss.NewStyle().Bold(true),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Warning: lipgloss.NewStyle().Foreground(colorWarning),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),
}

func heading(w io.Writer, text string) {
	fmt.Fprintln(w, styles.Title.Render(text))
}

// keyValues prints aligned "label  value" lines inside a box.
func keyValues(w io.Writer, pairs [][2]string) {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p[0]))
	}
	var lines []string
	for _, p := range pairs {
		lines = append(lines, styles.Label.Render(fmt.Sprintf("%-*s", width, p[0]))+"  "+p[1])
	}
	fmt.Fprintln(w, styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func warn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, styles.Warning.Render(fmt.Sprintf(format, args...)))
}
