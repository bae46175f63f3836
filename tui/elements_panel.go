// ABOUTME: Bubble Tea sub-model listing the story elements of the active story.
// ABOUTME: Renders character and location sections with empty-state placeholders.
package tui

import (
	"strings"
)

// ElementsPanelModel displays the characters and locations of the active story.
type ElementsPanelModel struct {
	characters []string
	locations  []string
	width      int
	height     int
}

// NewElementsPanelModel creates an empty elements panel.
func NewElementsPanelModel() ElementsPanelModel {
	return ElementsPanelModel{}
}

// SetElements replaces both element lists.
func (m *ElementsPanelModel) SetElements(characters, locations []string) {
	m.characters = characters
	m.locations = locations
}

// Clear removes all elements, for when no story is selected.
func (m *ElementsPanelModel) Clear() {
	m.characters = nil
	m.locations = nil
}

// SetSize sets the available dimensions.
func (m *ElementsPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the elements panel as a string.
func (m ElementsPanelModel) View() string {
	var lines []string
	lines = append(lines, TitleStyle.Render("ELEMENTS"))
	lines = append(lines, ElementHeaderStyle.Render("Characters:"))
	lines = append(lines, section(m.characters)...)
	lines = append(lines, ElementHeaderStyle.Render("Locations:"))
	lines = append(lines, section(m.locations)...)

	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(strings.Join(lines, "\n"))
}

// section renders one element list, or a placeholder when it is empty.
func section(items []string) []string {
	if len(items) == 0 {
		return []string{ElementStyle.Render("  none yet")}
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, ElementStyle.Render("  "+item))
	}
	return lines
}
