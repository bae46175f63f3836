// ABOUTME: Defines lipgloss style constants for the TUI panels, chat senders, and notifications.
// ABOUTME: Provides SenderStyle to map transcript senders to their display styles.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/fable/conversation"
)

var (
	// Panel borders
	BorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
	FocusedBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("170"))

	// Title styling
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	// Chat senders
	UserStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	BotStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("135")).Bold(true)
	SystemStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	// Entry state markers
	PendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	FailedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	// Permissibility flags on bot messages
	PermissibleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ImpermissibleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// Notifications
	InfoFlashStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("27")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
	ErrorFlashStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("160")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	// Status bar
	StatusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	// Story list
	SelectedStoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	CursorStoryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StoryStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	// Elements panel labels
	ElementHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	ElementStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	// Log lines
	LogTimestampStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	LogActionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	LogErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// Modal dialogs
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2)
)

// SenderStyle returns the appropriate lipgloss style for a transcript sender.
func SenderStyle(sender conversation.Sender) lipgloss.Style {
	switch sender {
	case conversation.SenderUser:
		return UserStyle
	case conversation.SenderBot:
		return BotStyle
	case conversation.SenderSystem:
		return SystemStyle
	default:
		return SystemStyle
	}
}
