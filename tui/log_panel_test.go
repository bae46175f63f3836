// ABOUTME: Tests for the LogPanelModel scrollable diagnostics log panel.
// ABOUTME: Validates append, eviction at capacity, record formatting, and view rendering.
package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/2389-research/fable/diag"
)

func testRecord(action string) diag.Record {
	return diag.Record{
		Time:      time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Component: "conversation",
		Action:    action,
	}
}

func TestLogPanelAppendAndLen(t *testing.T) {
	m := NewLogPanelModel(10)
	m.Append(testRecord("stories_loaded"))
	m.Append(testRecord("story_selected"))

	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestLogPanelEvictsOldestAtCapacity(t *testing.T) {
	m := NewLogPanelModel(3)
	for i := 0; i < 5; i++ {
		rec := testRecord(fmt.Sprintf("action_%d", i))
		m.Append(rec)
	}

	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
	if m.entries[0].Action != "action_2" {
		t.Errorf("oldest surviving action = %q, want %q", m.entries[0].Action, "action_2")
	}
}

func TestLogPanelDefaultCapacity(t *testing.T) {
	m := NewLogPanelModel(0)
	if m.max != 200 {
		t.Errorf("default max = %d, want 200", m.max)
	}
}

func TestFormatRecordIncludesParts(t *testing.T) {
	rec := testRecord("send_failed")
	rec.Fields = map[string]string{"story_id": "1", "error": "boom"}

	line := formatRecord(rec)
	if !strings.Contains(line, "09:26:53") {
		t.Errorf("line missing timestamp, got %q", line)
	}
	if !strings.Contains(line, "send_failed") {
		t.Errorf("line missing action, got %q", line)
	}
	if !strings.Contains(line, "[conversation]") {
		t.Errorf("line missing component, got %q", line)
	}
	if !strings.Contains(line, "error=boom") || !strings.Contains(line, "story_id=1") {
		t.Errorf("line missing fields, got %q", line)
	}
}

func TestFormatFieldsSortsKeys(t *testing.T) {
	fields := map[string]string{"zeta": "1", "alpha": "2", "mid": "3"}

	got := formatFields(fields)
	want := "alpha=2 mid=3 zeta=1"
	if got != want {
		t.Errorf("formatFields = %q, want %q", got, want)
	}
}

func TestLogPanelViewEmptyState(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(60, 10)

	if !strings.Contains(m.View(), "No records yet") {
		t.Error("empty log should render the placeholder")
	}
}

func TestLogPanelViewFocusedTitle(t *testing.T) {
	m := NewLogPanelModel(10)
	m.SetSize(60, 10)
	m.SetFocused(true)

	if !strings.Contains(m.View(), "DIAGNOSTICS (focused)") {
		t.Error("focused view should mark the title")
	}
}
