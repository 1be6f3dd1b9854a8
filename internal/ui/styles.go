package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorMuted     = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212") // pink
	colorSuccess   = lipgloss.Color("78")  // green
	colorDanger    = lipgloss.Color("196") // red
)

var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight).
	Padding(0, 1)

// CategoryActive marks the selected category in the category bar.
var CategoryActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var CategoryInactive = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

var CardSelected = lipgloss.NewStyle().
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(colorHighlight).
	PaddingLeft(1)

var CardNormal = lipgloss.NewStyle().
	PaddingLeft(2)

var ItemName = lipgloss.NewStyle().Bold(true)

var ItemPrice = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)

var ItemMuted = lipgloss.NewStyle().Foreground(colorMuted)

var InStockBadge = lipgloss.NewStyle().Foreground(colorSuccess)

var OutOfStockBadge = lipgloss.NewStyle().Foreground(colorDanger)

var InfoStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var ErrorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorDanger).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)
