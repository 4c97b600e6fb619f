package ui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("213")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	messageFromMeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("111")).
				Align(lipgloss.Right)

	messageFromOtherStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("120"))

	messageHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Italic(true)

	dayMarkerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Align(lipgloss.Center)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")).
			Bold(true)
)

// SetTheme adjusts the palette for light terminals. The default is dark.
func SetTheme(theme string) {
	if theme != "light" {
		return
	}
	titleStyle = titleStyle.Foreground(lipgloss.Color("127"))
	messageFromMeStyle = messageFromMeStyle.Foreground(lipgloss.Color("26"))
	messageFromOtherStyle = messageFromOtherStyle.Foreground(lipgloss.Color("28"))
	helpStyle = helpStyle.Foreground(lipgloss.Color("240"))
	messageHeaderStyle = messageHeaderStyle.Foreground(lipgloss.Color("240"))
	dayMarkerStyle = dayMarkerStyle.Foreground(lipgloss.Color("240"))
}
