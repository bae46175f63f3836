// ABOUTME: Implements a scrollable diagnostics log panel using the bubbles viewport component.
// ABOUTME: Displays diagnostic records with color-coded formatting based on outcome.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/fable/diag"
)

// LogPanelModel is a scrollable log that displays diagnostic records.
type LogPanelModel struct {
	entries  []diag.Record
	max      int
	viewport viewport.Model
	focused  bool
	width    int
	height   int
}

// NewLogPanelModel creates a new log panel with a maximum number of entries.
// If maxEntries is <= 0, it defaults to 200.
func NewLogPanelModel(maxEntries int) LogPanelModel {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	vp := viewport.New(80, 10)
	return LogPanelModel{
		entries:  make([]diag.Record, 0, maxEntries),
		max:      maxEntries,
		viewport: vp,
	}
}

// Append adds a record to the log, evicting the oldest entry if at capacity.
func (m *LogPanelModel) Append(rec diag.Record) {
	if len(m.entries) >= m.max {
		m.entries = m.entries[1:]
	}
	m.entries = append(m.entries, rec)
	m.syncViewport()
}

// Len returns the number of entries in the log.
func (m LogPanelModel) Len() int {
	return len(m.entries)
}

// SetFocused sets whether this panel accepts keyboard input.
func (m *LogPanelModel) SetFocused(focused bool) {
	m.focused = focused
}

// IsFocused returns whether the panel is focused.
func (m LogPanelModel) IsFocused() bool {
	return m.focused
}

// SetSize sets the available dimensions and updates the viewport.
func (m *LogPanelModel) SetSize(w, h int) {
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

// View renders the log panel.
func (m LogPanelModel) View() string {
	title := "DIAGNOSTICS"
	if m.focused {
		title = "DIAGNOSTICS (focused)"
	}

	var content string
	if len(m.entries) == 0 {
		content = "No records yet"
	} else {
		content = m.viewport.View()
	}

	rendered := TitleStyle.Render(title) + "\n" + content

	return BorderStyle.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(rendered)
}

// syncViewport rebuilds the viewport content from entries and scrolls to the bottom.
func (m *LogPanelModel) syncViewport() {
	if len(m.entries) == 0 {
		m.viewport.SetContent("")
		return
	}
	var lines []string
	for _, rec := range m.entries {
		lines = append(lines, formatRecord(rec))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

// formatRecord formats a single diagnostic record as a log line.
func formatRecord(rec diag.Record) string {
	ts := LogTimestampStyle.Render(rec.Time.Format("15:04:05"))
	action := actionStyle(rec.Action).Render(rec.Action)

	var parts []string
	parts = append(parts, ts, action)

	if rec.Component != "" {
		parts = append(parts, fmt.Sprintf("[%s]", rec.Component))
	}

	if len(rec.Fields) > 0 {
		parts = append(parts, formatFields(rec.Fields))
	}

	return strings.Join(parts, " ")
}

// formatFields formats record fields as compact sorted key=value pairs.
func formatFields(fields map[string]string) string {
	// Sort keys for deterministic output
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(fields))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, fields[k]))
	}
	return strings.Join(pairs, " ")
}

// actionStyle returns the appropriate lipgloss style for a record action.
// Failure actions render red so problems stand out in the scrollback.
func actionStyle(action string) lipgloss.Style {
	if strings.Contains(action, "failed") || strings.Contains(action, "error") {
		return LogErrorStyle
	}
	return LogActionStyle
}
