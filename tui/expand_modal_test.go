// ABOUTME: Tests for the expansion proposal modal with content and page number fields.
// ABOUTME: Covers activation, field focus switching, command building, and page fallback.
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestExpandModalSetActiveFocusesContent(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()

	if !m.IsActive() {
		t.Fatal("modal should be active")
	}
	if !m.contentInput.Focused() {
		t.Error("content input should be focused on activation")
	}
	if m.pageInput.Focused() {
		t.Error("page input should not be focused on activation")
	}
}

func TestExpandModalToggleField(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()

	m.ToggleField()
	if !m.pageInput.Focused() {
		t.Error("page input should be focused after toggle")
	}
	if m.contentInput.Focused() {
		t.Error("content input should be blurred after toggle")
	}

	m.ToggleField()
	if !m.contentInput.Focused() {
		t.Error("content input should be focused after second toggle")
	}
}

func TestExpandModalCommandCarriesFields(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()
	m.contentInput.SetValue("The seed sprouts overnight.")
	m.pageInput.SetValue("3")

	cmd := m.Command()
	if cmd.Text != "The seed sprouts overnight." {
		t.Errorf("Text = %q, want the typed content", cmd.Text)
	}
	if cmd.PageNumber != 3 {
		t.Errorf("PageNumber = %d, want 3", cmd.PageNumber)
	}
}

func TestExpandModalCommandPageFallback(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()
	m.contentInput.SetValue("text")

	for _, raw := range []string{"", "abc", "0", "-2"} {
		m.pageInput.SetValue(raw)
		if got := m.Command().PageNumber; got != 1 {
			t.Errorf("page %q: PageNumber = %d, want fallback 1", raw, got)
		}
	}
}

func TestExpandModalUpdateTypesIntoFocusedField(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()

	m = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	if m.contentInput.Value() != "a" {
		t.Errorf("content value = %q, want %q", m.contentInput.Value(), "a")
	}

	m.ToggleField()
	m = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'7'}})
	if m.pageInput.Value() != "7" {
		t.Errorf("page value = %q, want %q", m.pageInput.Value(), "7")
	}
}

func TestExpandModalDeactivateResetsOnNextActivate(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()
	m.contentInput.SetValue("stale draft")
	m.Deactivate()

	if m.IsActive() {
		t.Fatal("modal should be inactive")
	}
	if m.View() != "" {
		t.Error("inactive modal should render nothing")
	}

	m.SetActive()
	if m.contentInput.Value() != "" {
		t.Errorf("reactivation should reset the content field, got %q", m.contentInput.Value())
	}
}

func TestExpandModalViewShowsFields(t *testing.T) {
	m := NewExpandModalModel()
	m.SetActive()

	view := m.View()
	if !strings.Contains(view, "PROPOSE EXPANSION") {
		t.Error("view missing title")
	}
	if !strings.Contains(view, "Content:") || !strings.Contains(view, "Page:") {
		t.Errorf("view missing field labels, got:\n%s", view)
	}
}
