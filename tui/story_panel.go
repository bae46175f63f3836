// ABOUTME: Bubble Tea sub-model for the story catalog list with cursor and selection markers.
// ABOUTME: Renders story titles with the active selection highlighted.
package tui

import (
	"fmt"
	"strings"

	"github.com/2389-research/fable/api"
)

// StoryPanelModel displays the story catalog with a movable cursor and the
// currently selected story highlighted.
type StoryPanelModel struct {
	stories    []api.StorySummary
	cursor     int
	selectedID string
	focused    bool
	width      int
	height     int
}

// NewStoryPanelModel creates an empty story panel.
func NewStoryPanelModel() StoryPanelModel {
	return StoryPanelModel{}
}

// SetStories replaces the catalog, clamping the cursor into range.
func (m *StoryPanelModel) SetStories(stories []api.StorySummary) {
	m.stories = stories
	if m.cursor >= len(stories) {
		m.cursor = len(stories) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// SetSelected marks a story ID as the active selection.
func (m *StoryPanelModel) SetSelected(storyID string) {
	m.selectedID = storyID
}

// Len returns the number of stories listed.
func (m StoryPanelModel) Len() int {
	return len(m.stories)
}

// MoveUp moves the cursor one story up.
func (m *StoryPanelModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// MoveDown moves the cursor one story down.
func (m *StoryPanelModel) MoveDown() {
	if m.cursor < len(m.stories)-1 {
		m.cursor++
	}
}

// Current returns the story under the cursor.
func (m StoryPanelModel) Current() (api.StorySummary, bool) {
	if m.cursor < 0 || m.cursor >= len(m.stories) {
		return api.StorySummary{}, false
	}
	return m.stories[m.cursor], true
}

// SetFocused sets whether this panel accepts keyboard input.
func (m *StoryPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m StoryPanelModel) IsFocused() bool {
	return m.focused
}

// SetSize sets the available dimensions.
func (m *StoryPanelModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// View renders the story list panel.
func (m StoryPanelModel) View() string {
	title := "STORIES"
	if m.focused {
		title = "STORIES (focused)"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	if len(m.stories) == 0 {
		b.WriteString(StoryStyle.Render("No stories loaded"))
	} else {
		for i, story := range m.stories {
			marker := " "
			if story.ID == m.selectedID {
				marker = "*"
			}
			cursor := " "
			if m.focused && i == m.cursor {
				cursor = ">"
			}

			line := fmt.Sprintf("%s%s %s", cursor, marker, story.Title)
			switch {
			case story.ID == m.selectedID:
				line = SelectedStoryStyle.Render(line)
			case m.focused && i == m.cursor:
				line = CursorStoryStyle.Render(line)
			default:
				line = StoryStyle.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	border := BorderStyle
	if m.focused {
		border = FocusedBorderStyle
	}
	return border.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(strings.TrimRight(b.String(), "\n"))
}
