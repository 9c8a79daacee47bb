package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorBlue   = lipgloss.Color("39")
	ColorGray   = lipgloss.Color("244")
	ColorRed    = lipgloss.Color("196")
	ColorOrange = lipgloss.Color("208")
	ColorGreen  = lipgloss.Color("42")
	ColorWhite  = lipgloss.Color("255")
)

var (
	labelStyle   = lipgloss.NewStyle().Foreground(ColorGray)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorWhite).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(ColorRed)
	okStyle      = lipgloss.NewStyle().Foreground(ColorGreen)
	titleStyle   = lipgloss.NewStyle().Foreground(ColorBlue).Bold(true)
	spinnerStyle = lipgloss.NewStyle().Foreground(ColorOrange)
)
