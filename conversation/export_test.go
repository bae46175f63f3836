// ABOUTME: Tests for YAML transcript export.
// ABOUTME: Covers document shape and writing the export to disk.
package conversation_test

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/2389-research/fable/conversation"
)

func TestExportYAML_IncludesStoryAndEntries(t *testing.T) {
	state := &conversation.State{
		Current:    &conversation.Selection{StoryID: "s1", Title: "The Fox"},
		Characters: []string{"The Fox (A clever fox)"},
		Locations:  []string{"Forest"},
	}
	state.Transcript.Clear()
	state.Transcript.Append(conversation.NewEntry(conversation.SenderUser, "hello"))

	doc, err := conversation.ExportYAML(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"id: s1",
		"title: The Fox",
		"sender: bot",
		"sender: user",
		"content: hello",
		"- The Fox (A clever fox)",
		"- Forest",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("expected document to contain %q, got:\n%s", want, doc)
		}
	}
}

func TestExportYAML_NoStoryOmitsStoryBlock(t *testing.T) {
	state := &conversation.State{}
	state.Transcript.Clear()

	doc, err := conversation.ExportYAML(state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(doc, "story:") {
		t.Errorf("expected no story block, got:\n%s", doc)
	}
	if !strings.Contains(doc, "entries:") {
		t.Errorf("expected entries block, got:\n%s", doc)
	}
}

func TestExportTranscript_WritesFile(t *testing.T) {
	ctrl := newTestController(t, http.NotFoundHandler())
	path := filepath.Join(t.TempDir(), "transcript.yaml")

	events, err := ctrl.ExportTranscript(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	exported, ok := events[0].(conversation.TranscriptExportedEvent)
	if !ok {
		t.Fatalf("expected TranscriptExportedEvent, got %T", events[0])
	}
	if exported.Path != path || exported.Entries != 1 {
		t.Errorf("expected export of 1 entry to %s, got %+v", path, exported)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), conversation.WelcomeText) {
		t.Error("expected welcome entry in exported file")
	}
}

func TestExportTranscript_BadPathReturnsError(t *testing.T) {
	ctrl := newTestController(t, http.NotFoundHandler())

	_, err := ctrl.ExportTranscript(filepath.Join(t.TempDir(), "missing", "transcript.yaml"))
	if err == nil {
		t.Fatal("expected an error for an unwritable path")
	}
}
