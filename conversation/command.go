// ABOUTME: Command types for driving the conversation controller.
// ABOUTME: Each command declares the input capability a surface needs to issue it.
package conversation

// Capability classifies the kind of input surface a command originates from.
// Handlers are bound by capability, never by a concrete widget, so any surface
// that can click, submit, or edit may issue the matching commands.
type Capability string

const (
	// Clickable covers discrete activation: list rows, buttons, menu picks.
	Clickable Capability = "clickable"
	// Submittable covers committed text: chat input, expansion form.
	Submittable Capability = "submittable"
	// Editable covers in-place value changes: file choice, field edits.
	Editable Capability = "editable"
)

// Command is a request for the controller to change conversation state.
type Command interface {
	// CommandType returns the command discriminator.
	CommandType() string
	// Capability returns the input class that produces this command.
	Capability() Capability
	commandSeal()
}

// SelectStoryCommand activates a story from the catalog.
type SelectStoryCommand struct {
	StoryID string
	Title   string
}

func (c SelectStoryCommand) CommandType() string    { return "select_story" }
func (c SelectStoryCommand) Capability() Capability { return Clickable }
func (c SelectStoryCommand) commandSeal()           {}

// LoadStoriesCommand refreshes the story catalog.
type LoadStoriesCommand struct{}

func (c LoadStoriesCommand) CommandType() string    { return "load_stories" }
func (c LoadStoriesCommand) Capability() Capability { return Clickable }
func (c LoadStoriesCommand) commandSeal()           {}

// SendMessageCommand sends a chat message to the active story.
type SendMessageCommand struct {
	Text string
}

func (c SendMessageCommand) CommandType() string    { return "send_message" }
func (c SendMessageCommand) Capability() Capability { return Submittable }
func (c SendMessageCommand) commandSeal()           {}

// RefreshMessagesCommand resyncs the transcript from the server.
type RefreshMessagesCommand struct{}

func (c RefreshMessagesCommand) CommandType() string    { return "refresh_messages" }
func (c RefreshMessagesCommand) Capability() Capability { return Clickable }
func (c RefreshMessagesCommand) commandSeal()           {}

// SubmitExpansionCommand proposes new content for the active story.
type SubmitExpansionCommand struct {
	Text       string
	PageNumber int
}

func (c SubmitExpansionCommand) CommandType() string    { return "submit_expansion" }
func (c SubmitExpansionCommand) Capability() Capability { return Submittable }
func (c SubmitExpansionCommand) commandSeal()           {}

// ClearChatCommand wipes the transcript and drops the active story.
type ClearChatCommand struct{}

func (c ClearChatCommand) CommandType() string    { return "clear_chat" }
func (c ClearChatCommand) Capability() Capability { return Clickable }
func (c ClearChatCommand) commandSeal()           {}

// ExportTranscriptCommand writes the transcript to a file on disk.
type ExportTranscriptCommand struct {
	Path string
}

func (c ExportTranscriptCommand) CommandType() string    { return "export_transcript" }
func (c ExportTranscriptCommand) Capability() Capability { return Editable }
func (c ExportTranscriptCommand) commandSeal()           {}
