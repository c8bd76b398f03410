package profile

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	section    lipgloss.Style
	label      lipgloss.Style
	value      lipgloss.Style
	override   lipgloss.Style
	inherited  lipgloss.Style
	bullet     lipgloss.Style
	empty      lipgloss.Style
	roleUser   lipgloss.Style
	roleBot    lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		section:    lipgloss.NewStyle().MarginTop(1).Bold(true).Foreground(lipgloss.Color("39")),
		label:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Width(18),
		value:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		override:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		inherited:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		bullet:     lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		empty:      lipgloss.NewStyle().Faint(true),
		roleUser:   lipgloss.NewStyle().Foreground(lipgloss.Color("111")),
		roleBot:    lipgloss.NewStyle().Foreground(lipgloss.Color("183")),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
