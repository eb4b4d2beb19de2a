package chat

import "github.com/charmbracelet/lipgloss"

var (
	textColor    = lipgloss.Color("252")
	dimColor     = lipgloss.Color("242")
	accentColor  = lipgloss.Color("111")
	onlineColor  = lipgloss.Color("42")
	errorColor   = lipgloss.Color("167")
	statusColor  = lipgloss.Color("220")
	inputBg      = lipgloss.Color("236")
	caretColor   = lipgloss.Color("111")
	ownBubbleBg  = lipgloss.Color("24")
	peerBubbleBg = lipgloss.Color("237")
	selectedBg   = lipgloss.Color("238")
)

var (
	dimStyle      = lipgloss.NewStyle().Foreground(dimColor)
	noticeStyle   = lipgloss.NewStyle().Foreground(dimColor).Italic(true)
	nameStyle     = lipgloss.NewStyle().Foreground(textColor).Bold(true)
	accentStyle   = lipgloss.NewStyle().Foreground(accentColor)
	errorStyle    = lipgloss.NewStyle().Foreground(errorColor)
	onlineStyle   = lipgloss.NewStyle().Foreground(onlineColor)
	buttonStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("27")).Padding(0, 1)
	endedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("238")).Padding(0, 1)
	ownBubble     = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(ownBubbleBg).Padding(0, 1)
	peerBubble    = lipgloss.NewStyle().Foreground(textColor).Background(peerBubbleBg).Padding(0, 1)
	pillStyle     = lipgloss.NewStyle().Foreground(textColor).Background(lipgloss.Color("236")).Padding(0, 1)
	pillMineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("61")).Padding(0, 1)
	unreadStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("161")).Padding(0, 1)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("61")).Padding(0, 1)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, true, false, false).BorderForeground(lipgloss.Color("238"))
)
