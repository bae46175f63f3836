// ABOUTME: Event types emitted by the controller after each handled command.
// ABOUTME: Events describe what changed; surfaces re-render from a state snapshot.
package conversation

import "github.com/oklog/ulid/v2"

// Event reports a state change produced by handling a command.
type Event interface {
	// EventType returns the event discriminator.
	EventType() string
	eventSeal()
}

// StoriesLoadedEvent fires after the catalog refreshes.
type StoriesLoadedEvent struct {
	Count int
}

func (e StoriesLoadedEvent) EventType() string { return "stories_loaded" }
func (e StoriesLoadedEvent) eventSeal()        {}

// StorySelectedEvent fires when a story becomes active.
type StorySelectedEvent struct {
	StoryID string
	Title   string
}

func (e StorySelectedEvent) EventType() string { return "story_selected" }
func (e StorySelectedEvent) eventSeal()        {}

// EntryAppendedEvent fires for each entry added to the transcript.
type EntryAppendedEvent struct {
	Entry Entry
}

func (e EntryAppendedEvent) EventType() string { return "entry_appended" }
func (e EntryAppendedEvent) eventSeal()        {}

// ElementsProjectedEvent fires when story characters and locations load.
type ElementsProjectedEvent struct {
	Characters int
	Locations  int
}

func (e ElementsProjectedEvent) EventType() string { return "elements_projected" }
func (e ElementsProjectedEvent) eventSeal()        {}

// SendSettledEvent fires when the server accepts or rejects a sent message.
type SendSettledEvent struct {
	EntryID ulid.ULID
	Failed  bool
}

func (e SendSettledEvent) EventType() string { return "send_settled" }
func (e SendSettledEvent) eventSeal()        {}

// TranscriptReconciledEvent fires after a destructive resync completes.
type TranscriptReconciledEvent struct {
	RetainedWelcome bool
	ServerCount     int
}

func (e TranscriptReconciledEvent) EventType() string { return "transcript_reconciled" }
func (e TranscriptReconciledEvent) eventSeal()        {}

// ExpansionSubmittedEvent fires after an expansion proposal round-trips.
type ExpansionSubmittedEvent struct {
	Accepted   bool
	ProposalID string
	Note       string
}

func (e ExpansionSubmittedEvent) EventType() string { return "expansion_submitted" }
func (e ExpansionSubmittedEvent) eventSeal()        {}

// ChatClearedEvent fires after the transcript resets to a lone welcome.
type ChatClearedEvent struct{}

func (e ChatClearedEvent) EventType() string { return "chat_cleared" }
func (e ChatClearedEvent) eventSeal()        {}

// TranscriptExportedEvent fires after the transcript is written to disk.
type TranscriptExportedEvent struct {
	Path    string
	Entries int
}

func (e TranscriptExportedEvent) EventType() string { return "transcript_exported" }
func (e TranscriptExportedEvent) eventSeal()        {}
