package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213")).Background(lipgloss.Color("57")).Padding(0, 1)
	statusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	infoStyle    = lipgloss.NewStyle().Faint(true)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	tideStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	nowStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	contentStyle = lipgloss.NewStyle().Padding(0, 2)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)
