package tui

import "github.com/charmbracelet/lipgloss"

// eventTypeStyles colors the activity log by event type.
var eventTypeStyles = map[string]lipgloss.Style{
	"session_start": lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	"session_end":   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	"tool_use":      lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),
	"error":         lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var (
	defaultEventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("237"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

func eventStyle(eventType string) lipgloss.Style {
	if s, ok := eventTypeStyles[eventType]; ok {
		return s
	}
	return defaultEventStyle
}
