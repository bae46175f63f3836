// ABOUTME: Modal dialog for proposing a story expansion with content text and a page number.
// ABOUTME: Two text inputs with tab focus switching; Enter builds a SubmitExpansionCommand.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/fable/conversation"
)

// ExpandModalModel renders the expansion proposal dialog: a content field, a
// page number field, and a submit action that produces the matching command.
type ExpandModalModel struct {
	contentInput textinput.Model
	pageInput    textinput.Model
	active       bool
	onPage       bool
}

// NewExpandModalModel creates an inactive expansion dialog.
func NewExpandModalModel() ExpandModalModel {
	content := textinput.New()
	content.Prompt = "> "
	content.Placeholder = "What happens next..."
	content.CharLimit = 2000

	page := textinput.New()
	page.Prompt = "> "
	page.Placeholder = "1"
	page.CharLimit = 4

	return ExpandModalModel{
		contentInput: content,
		pageInput:    page,
	}
}

// SetActive shows the dialog with fresh inputs and focuses the content field.
func (m *ExpandModalModel) SetActive() {
	m.active = true
	m.onPage = false
	m.contentInput.Reset()
	m.pageInput.Reset()
	m.contentInput.Focus()
	m.pageInput.Blur()
}

// Deactivate hides the dialog and blurs both inputs.
func (m *ExpandModalModel) Deactivate() {
	m.active = false
	m.contentInput.Blur()
	m.pageInput.Blur()
}

// IsActive returns whether the dialog is currently visible.
func (m *ExpandModalModel) IsActive() bool {
	return m.active
}

// ToggleField moves focus between the content and page inputs.
func (m *ExpandModalModel) ToggleField() {
	m.onPage = !m.onPage
	if m.onPage {
		m.contentInput.Blur()
		m.pageInput.Focus()
	} else {
		m.pageInput.Blur()
		m.contentInput.Focus()
	}
}

// Command builds the expansion command from the current field values.
// A blank or unparseable page number falls back to page 1.
func (m *ExpandModalModel) Command() conversation.SubmitExpansionCommand {
	page, err := strconv.Atoi(strings.TrimSpace(m.pageInput.Value()))
	if err != nil || page < 1 {
		page = 1
	}
	return conversation.SubmitExpansionCommand{
		Text:       m.contentInput.Value(),
		PageNumber: page,
	}
}

// Update forwards incoming tea.Msg events to the focused input. Returns the
// updated model.
func (m ExpandModalModel) Update(msg tea.Msg) ExpandModalModel {
	var cmd tea.Cmd
	if m.onPage {
		m.pageInput, cmd = m.pageInput.Update(msg)
	} else {
		m.contentInput, cmd = m.contentInput.Update(msg)
	}
	_ = cmd // textinput cmds (cursor blink) are ignored in sub-model updates
	return m
}

// View renders the expansion dialog. Returns an empty string when inactive.
func (m ExpandModalModel) View() string {
	if !m.active {
		return ""
	}

	var b strings.Builder

	b.WriteString(TitleStyle.Render("PROPOSE EXPANSION"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s\n%s\n\n", fieldLabel("Content", !m.onPage), m.contentInput.View()))
	b.WriteString(fmt.Sprintf("%s\n%s\n\n", fieldLabel("Page", m.onPage), m.pageInput.View()))
	b.WriteString("enter: submit   tab: switch field   esc: close")

	return ModalStyle.Render(b.String())
}

// fieldLabel renders a field name, marking the focused one.
func fieldLabel(name string, focused bool) string {
	if focused {
		return TitleStyle.Render(name + ":")
	}
	return name + ":"
}
