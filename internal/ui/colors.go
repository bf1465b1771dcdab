package ui

import "github.com/charmbracelet/lipgloss"

// Palette is the stylesheet shared by all views. The title color is
// Spotify green so the picker reads as belonging to the service it drives.
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

var styles = Palette{
	title: fg("#1DB954").Bold(true).MarginBottom(1),
	ok:    fg("#04B575").Bold(true),
	err:   fg("#FF0000").Bold(true),
	warn:  fg("#FFA500"),
	help:  fg("#626262").Italic(true),
}

func fg(color string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}
