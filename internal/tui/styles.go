package tui

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	primaryColor = lipgloss.Color("39")  // Blue
	accentColor  = lipgloss.Color("205") // Pink
	mutedColor   = lipgloss.Color("241") // Gray
	successColor = lipgloss.Color("76")  // Green
	warningColor = lipgloss.Color("214") // Orange
	errorColor   = lipgloss.Color("196") // Red

	// Base styles
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("117")) // Bright cyan
	selectedStyle = lipgloss.NewStyle().Bold(true).Background(primaryColor).Foreground(lipgloss.Color("0"))
	labelStyle    = lipgloss.NewStyle().Bold(true).Width(18)
	focusStyle    = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)

	// Layout
	borderColor    = lipgloss.Color("63") // Soft purple
	appBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2)

	// Header/Footer
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true) // Bright yellow

	// Document preview
	paperStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(mutedColor).
			Padding(1, 3)
	docTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	docHeadStyle   = lipgloss.NewStyle().Bold(true)
	docTotalStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	docLinkStyle   = lipgloss.NewStyle().Underline(true).Foreground(primaryColor)
	statusLoading  = lipgloss.NewStyle().Foreground(warningColor)
	statusSuccess  = lipgloss.NewStyle().Foreground(successColor)
	statusError    = lipgloss.NewStyle().Foreground(errorColor)
	errorTextStyle = lipgloss.NewStyle().Foreground(errorColor)
)
