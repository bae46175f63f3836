// ABOUTME: YAML export of a conversation snapshot for sharing or archiving.
// ABOUTME: Renders the active story, projections, and transcript to a document.
package conversation

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlTranscript is the top-level exported document.
type yamlTranscript struct {
	Story      *yamlStory  `yaml:"story,omitempty"`
	ExportedAt string      `yaml:"exported_at"`
	Characters []string    `yaml:"characters,omitempty"`
	Locations  []string    `yaml:"locations,omitempty"`
	Entries    []yamlEntry `yaml:"entries"`
}

// yamlStory identifies the story the transcript belongs to.
type yamlStory struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// yamlEntry is one transcript line in the exported document.
type yamlEntry struct {
	ID          string `yaml:"id"`
	Sender      string `yaml:"sender"`
	Content     string `yaml:"content"`
	Timestamp   string `yaml:"timestamp"`
	Pending     bool   `yaml:"pending,omitempty"`
	Failed      bool   `yaml:"failed,omitempty"`
	Permissible *bool  `yaml:"permissible,omitempty"`
}

// ExportYAML renders a conversation state snapshot as a YAML document.
func ExportYAML(s *State) (string, error) {
	doc := yamlTranscript{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Characters: s.Characters,
		Locations:  s.Locations,
	}
	if s.Current != nil {
		doc.Story = &yamlStory{ID: s.Current.StoryID, Title: s.Current.Title}
	}
	for _, e := range s.Transcript.Entries() {
		doc.Entries = append(doc.Entries, yamlEntry{
			ID:          e.EntryID.String(),
			Sender:      string(e.Sender),
			Content:     e.Content,
			Timestamp:   e.Timestamp.UTC().Format(time.RFC3339),
			Pending:     e.Pending,
			Failed:      e.Failed,
			Permissible: e.IsPermissible,
		})
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshaling transcript: %w", err)
	}
	return string(out), nil
}

// ExportTranscript writes the current conversation snapshot to path as YAML.
func (c *Controller) ExportTranscript(path string) ([]Event, error) {
	var (
		doc     string
		entries int
		err     error
	)
	c.ReadState(func(s *State) {
		entries = s.Transcript.Len()
		doc, err = ExportYAML(s)
	})
	if err != nil {
		c.diag.Record("conversation", "export_failed", map[string]string{"error": err.Error()})
		return nil, err
	}
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		c.diag.Record("conversation", "export_failed", map[string]string{
			"path":  path,
			"error": err.Error(),
		})
		return nil, fmt.Errorf("writing transcript: %w", err)
	}

	c.diag.Record("conversation", "transcript_exported", map[string]string{
		"path":    path,
		"entries": strconv.Itoa(entries),
	})
	return []Event{TranscriptExportedEvent{Path: path, Entries: entries}}, nil
}
