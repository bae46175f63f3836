// ABOUTME: Implements the scrollable chat transcript panel using the bubbles viewport component.
// ABOUTME: Displays transcript entries with sender styling, pending and failed markers, and flags.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/fable/conversation"
)

// ChatPanelModel is a scrollable view of the conversation transcript.
type ChatPanelModel struct {
	entries  []conversation.Entry
	viewport viewport.Model
	focused  bool
	width    int
	height   int
}

// NewChatPanelModel creates an empty chat panel.
func NewChatPanelModel() ChatPanelModel {
	vp := viewport.New(80, 10)
	return ChatPanelModel{viewport: vp}
}

// SetEntries replaces the transcript and scrolls to the newest entry.
func (m *ChatPanelModel) SetEntries(entries []conversation.Entry) {
	m.entries = entries
	m.syncViewport()
}

// Len returns the number of entries shown.
func (m ChatPanelModel) Len() int {
	return len(m.entries)
}

// SetFocused sets whether this panel accepts scroll keys.
func (m *ChatPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m ChatPanelModel) IsFocused() bool {
	return m.focused
}

// Update forwards incoming tea.Msg events to the viewport so its built-in
// scroll keybindings work while the panel is focused. Returns the updated model.
func (m ChatPanelModel) Update(msg tea.Msg) ChatPanelModel {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	_ = cmd // viewport cmds are ignored in sub-model updates
	return m
}

// SetSize sets the available dimensions and updates the viewport.
func (m *ChatPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	// Reserve space for the border (2 lines top/bottom) and title (1 line)
	vpWidth := w - 2
	vpHeight := h - 3
	if vpWidth < 1 {
		vpWidth = 1
	}
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.syncViewport()
}

// View renders the chat panel.
func (m ChatPanelModel) View() string {
	title := "CONVERSATION"
	if m.focused {
		title = "CONVERSATION (focused)"
	}

	var content string
	if len(m.entries) == 0 {
		content = "No messages yet"
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render(title) + "\n" + content

	border := BorderStyle
	if m.focused {
		border = FocusedBorderStyle
	}
	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

// syncViewport rebuilds the viewport content from entries and scrolls to the bottom.
func (m *ChatPanelModel) syncViewport() {
	if len(m.entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	var lines []string
	for _, entry := range m.entries {
		lines = append(lines, formatEntry(entry))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// formatEntry formats a single transcript entry as one or more display lines.
func formatEntry(entry conversation.Entry) string {
	ts := LogTimestampStyle.Render(entry.Timestamp.Local().Format("15:04"))
	sender := SenderStyle(entry.Sender).Render(senderLabel(entry.Sender))

	var markers []string
	if entry.Pending {
		markers = append(markers, PendingStyle.Render("sending..."))
	}
	if entry.Failed {
		markers = append(markers, FailedStyle.Render("failed"))
	}
	if entry.IsPermissible != nil {
		if *entry.IsPermissible {
			markers = append(markers, PermissibleStyle.Render("ok"))
		} else {
			markers = append(markers, ImpermissibleStyle.Render("flagged"))
		}
	}

	head := fmt.Sprintf("%s %s", ts, sender)
	if len(markers) > 0 {
		head += " " + strings.Join(markers, " ")
	}
	return head + "\n" + entry.Content
}

// senderLabel returns the display name for a sender.
func senderLabel(sender conversation.Sender) string {
	switch sender {
	case conversation.SenderUser:
		return "you"
	case conversation.SenderBot:
		return "assistant"
	case conversation.SenderSystem:
		return "system"
	default:
		return string(sender)
	}
}
