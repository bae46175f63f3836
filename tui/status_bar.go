// ABOUTME: Implements a single-line status bar for the bottom of the TUI showing session state.
// ABOUTME: Displays the active story, send queue depth, server health, and transient notifications.
package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// StatusBarModel displays session status in a single line, with an optional
// transient flash message that replaces the key help until it is cleared.
type StatusBarModel struct {
	storyTitle   string
	sending      int
	health       string
	flash        string
	flashIsError bool
	flashSeq     int
	width        int
}

// NewStatusBarModel creates a new StatusBarModel with no active story.
func NewStatusBarModel() StatusBarModel {
	return StatusBarModel{health: "unknown"}
}

// SetStory sets the active story title shown in the bar.
func (m *StatusBarModel) SetStory(title string) {
	m.storyTitle = title
}

// SetSending updates the count of sends still in flight.
func (m *StatusBarModel) SetSending(n int) {
	m.sending = n
}

// SetHealth records the last server health probe result.
func (m *StatusBarModel) SetHealth(status string) {
	m.health = status
}

// SetWidth sets the bar width for rendering.
func (m *StatusBarModel) SetWidth(w int) {
	m.width = w
}

// Flash shows a transient notification and returns its sequence number.
// The caller schedules the matching ClearFlash with that number.
func (m *StatusBarModel) Flash(text string, isError bool) int {
	m.flashSeq++
	m.flash = text
	m.flashIsError = isError
	return m.flashSeq
}

// ClearFlash removes the notification if seq matches the one on display.
// A stale seq means a newer flash replaced it, so the call is a no-op.
func (m *StatusBarModel) ClearFlash(seq int) {
	if seq != m.flashSeq {
		return
	}
	m.flash = ""
	m.flashIsError = false
}

// FlashText returns the current notification text, empty when none is shown.
func (m StatusBarModel) FlashText() string {
	return m.flash
}

// keyHelp is the default right-hand segment when no flash is showing.
const keyHelp = "enter select/send | u upload | e expand | r refresh | c clear | x export | q quit"

// View renders the status bar as a single styled line.
func (m StatusBarModel) View() string {
	story := m.storyTitle
	if story == "" {
		story = "none"
	}

	left := fmt.Sprintf("Story: %s | Sending: %d | Server: %s", story, m.sending, m.health)

	right := keyHelp
	if m.flash != "" {
		style := InfoFlashStyle
		if m.flashIsError {
			style = ErrorFlashStyle
		}
		right = style.Render(m.flash)
	}

	content := left + " | " + right

	style := StatusBarStyle.Width(m.width)

	return lipgloss.PlaceHorizontal(m.width, lipgloss.Left, style.Render(content))
}
