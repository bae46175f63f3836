// ABOUTME: Session-scoped controller owning the current story, transcript, and sync flows.
// ABOUTME: Handles commands, mutates state under a lock, and reports changes as events.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/diag"
)

// DefaultResyncDelay is how long a successful send waits before the
// transcript reloads from the server, giving the bot reply time to land.
const DefaultResyncDelay = 500 * time.Millisecond

var (
	// ErrNoStorySelected is returned by operations that need an active story.
	ErrNoStorySelected = errors.New("no story selected")
	// ErrEmptyExpansion is returned when an expansion proposal has no text.
	ErrEmptyExpansion = errors.New("expansion text is empty")
)

// Selection identifies the single active story.
type Selection struct {
	StoryID string
	Title   string
}

// State is the conversation state owned by one controller.
// The transcript is the single in-memory message list; rendering surfaces
// draw from snapshots of it, so the rendered order always matches.
type State struct {
	Stories       []api.StorySummary
	Current       *Selection
	Characters    []string
	Locations     []string
	Transcript    Transcript
	SendsInFlight int
}

// Controller owns one conversation session. There are no package-level
// singletons; every session constructs its own controller around an API
// client and drives it with commands.
type Controller struct {
	mu          sync.RWMutex
	state       State
	client      *api.Client
	diag        *diag.Diagnostics
	resyncDelay time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithDiagnostics routes the controller's diagnostic records to d.
func WithDiagnostics(d *diag.Diagnostics) Option {
	return func(c *Controller) {
		c.diag = d
	}
}

// WithResyncDelay overrides the pause between a successful send and the
// follow-up transcript reload. Zero disables the pause.
func WithResyncDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.resyncDelay = d
	}
}

// NewController creates a controller with an empty catalog and a transcript
// seeded with the standard welcome entry.
func NewController(client *api.Client, opts ...Option) *Controller {
	c := &Controller{
		client:      client,
		diag:        diag.New(),
		resyncDelay: DefaultResyncDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state.Transcript.Clear()
	return c
}

// Diagnostics returns the controller's diagnostic channel.
func (c *Controller) Diagnostics() *diag.Diagnostics {
	return c.diag
}

// ReadState calls fn with the current state under a read lock.
// fn must not retain the pointer or mutate through it.
func (c *Controller) ReadState(fn func(*State)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(&c.state)
}

// Handle dispatches a command to the matching operation.
func (c *Controller) Handle(ctx context.Context, cmd Command) ([]Event, error) {
	switch cmd := cmd.(type) {
	case LoadStoriesCommand:
		return c.LoadStories(ctx)
	case SelectStoryCommand:
		return c.SelectStory(ctx, cmd.StoryID, cmd.Title)
	case SendMessageCommand:
		return c.SendMessage(ctx, cmd.Text)
	case RefreshMessagesCommand:
		return c.RefreshMessages(ctx)
	case SubmitExpansionCommand:
		return c.SubmitExpansion(ctx, cmd.Text, cmd.PageNumber)
	case ClearChatCommand:
		return c.ClearChat()
	case ExportTranscriptCommand:
		return c.ExportTranscript(cmd.Path)
	default:
		return nil, fmt.Errorf("unhandled command type %q", cmd.CommandType())
	}
}

// LoadStories refreshes the story catalog. On any failure the existing list
// is left untouched and the error is returned for the surface to show.
func (c *Controller) LoadStories(ctx context.Context) ([]Event, error) {
	stories, err := c.client.ListStories(ctx)
	if err != nil {
		c.diag.Record("conversation", "load_stories_failed", map[string]string{"error": err.Error()})
		return nil, err
	}

	c.mu.Lock()
	c.state.Stories = stories
	c.mu.Unlock()

	c.diag.Record("conversation", "stories_loaded", map[string]string{"count": strconv.Itoa(len(stories))})
	return []Event{StoriesLoadedEvent{Count: len(stories)}}, nil
}

// SelectStory activates a story, appends a system notice naming it, and
// loads the story's structured elements. Reselecting the active story
// re-runs the full flow.
func (c *Controller) SelectStory(ctx context.Context, storyID, title string) ([]Event, error) {
	notice := NewEntry(SenderSystem, fmt.Sprintf("Selected story: %s", title))

	c.mu.Lock()
	c.state.Current = &Selection{StoryID: storyID, Title: title}
	c.state.Characters = nil
	c.state.Locations = nil
	c.state.Transcript.Append(notice)
	c.mu.Unlock()

	c.diag.Record("conversation", "story_selected", map[string]string{"story_id": storyID, "title": title})

	events := []Event{
		StorySelectedEvent{StoryID: storyID, Title: title},
		EntryAppendedEvent{Entry: notice},
	}
	events = append(events, c.LoadStoryLogic(ctx, storyID)...)
	return events, nil
}

// LoadStoryLogic fetches a story's elements and projects them into the
// character and location views. Failures are recorded to diagnostics and
// swallowed; element loading never blocks messaging.
func (c *Controller) LoadStoryLogic(ctx context.Context, storyID string) []Event {
	elements, err := c.client.StoryElements(ctx, storyID)
	if err != nil {
		c.diag.Record("conversation", "story_logic_failed", map[string]string{
			"story_id": storyID,
			"error":    err.Error(),
		})
		return nil
	}

	characters, locations := ProjectElements(elements)

	c.mu.Lock()
	c.state.Characters = characters
	c.state.Locations = locations
	c.mu.Unlock()

	c.diag.Record("conversation", "story_logic_loaded", map[string]string{
		"story_id":   storyID,
		"characters": strconv.Itoa(len(characters)),
		"locations":  strconv.Itoa(len(locations)),
	})
	return []Event{ElementsProjectedEvent{Characters: len(characters), Locations: len(locations)}}
}

// ProjectElements splits structured story elements into the two rendered
// views: characters as "name (description)", locations as the bare name.
// Unknown element types are silently omitted.
func ProjectElements(elements []api.StoryElement) (characters, locations []string) {
	for _, el := range elements {
		switch el.Type {
		case api.ElementCharacter:
			characters = append(characters, fmt.Sprintf("%s (%s)", el.Name, el.Description))
		case api.ElementLocation:
			locations = append(locations, el.Name)
		}
	}
	return characters, locations
}

// SendMessage appends an optimistic user entry, posts it, and on success
// resyncs the transcript from the server after the configured delay.
// Blank text is a silent no-op; sending with no story selected is an error
// issued before any entry is appended or request made. A failed post leaves
// the optimistic entry in place, marked failed.
func (c *Controller) SendMessage(ctx context.Context, text string) ([]Event, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.state.Current == nil {
		c.mu.Unlock()
		return nil, ErrNoStorySelected
	}
	storyID := c.state.Current.StoryID
	entry := c.state.Transcript.ApplyOptimistic(NewEntry(SenderUser, trimmed))
	c.state.SendsInFlight++
	c.mu.Unlock()

	events := []Event{EntryAppendedEvent{Entry: entry}}

	err := c.client.SendMessage(ctx, storyID, trimmed)

	c.mu.Lock()
	c.state.SendsInFlight--
	c.state.Transcript.MarkSettled(entry.EntryID, err != nil)
	c.mu.Unlock()

	events = append(events, SendSettledEvent{EntryID: entry.EntryID, Failed: err != nil})
	if err != nil {
		c.diag.Record("conversation", "send_failed", map[string]string{
			"story_id": storyID,
			"error":    err.Error(),
		})
		return events, err
	}

	c.diag.Record("conversation", "message_sent", map[string]string{"story_id": storyID})

	if c.resyncDelay > 0 {
		select {
		case <-time.After(c.resyncDelay):
		case <-ctx.Done():
			return events, nil
		}
	}

	resync, _ := c.RefreshMessages(ctx)
	return append(events, resync...), nil
}

// RefreshMessages performs the destructive resync: the transcript is
// replaced with the server's ordered message list, retaining exactly the
// first bot entry found locally so the welcome survives. No-op when no
// story is selected. Fetch failures are recorded to diagnostics and leave
// the transcript untouched; the returned error is always nil.
func (c *Controller) RefreshMessages(ctx context.Context) ([]Event, error) {
	c.mu.RLock()
	current := c.state.Current
	c.mu.RUnlock()
	if current == nil {
		return nil, nil
	}

	msgs, err := c.client.Messages(ctx, current.StoryID)
	if err != nil {
		c.diag.Record("conversation", "refresh_failed", map[string]string{
			"story_id": current.StoryID,
			"error":    err.Error(),
		})
		return nil, nil
	}

	server := make([]Entry, 0, len(msgs))
	for _, m := range msgs {
		server = append(server, EntryFromMessage(m))
	}

	c.mu.Lock()
	retained := c.state.Transcript.Reconcile(server, IsBotEntry)
	c.mu.Unlock()

	c.diag.Record("conversation", "transcript_reconciled", map[string]string{
		"story_id": current.StoryID,
		"count":    strconv.Itoa(len(server)),
		"retained": strconv.FormatBool(retained),
	})
	return []Event{TranscriptReconciledEvent{RetainedWelcome: retained, ServerCount: len(server)}}, nil
}

// SubmitExpansion proposes new story content for review. Blank text and a
// missing story selection are rejected before any request. A response with
// success false becomes an application error; acceptance appends a system
// confirmation entry.
func (c *Controller) SubmitExpansion(ctx context.Context, text string, pageNumber int) ([]Event, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyExpansion
	}

	c.mu.RLock()
	current := c.state.Current
	c.mu.RUnlock()
	if current == nil {
		return nil, ErrNoStorySelected
	}

	proposal := api.ExpansionProposal{
		StoryID:    current.StoryID,
		NewContent: trimmed,
		PageNumber: pageNumber,
	}
	result, err := c.client.ProposeExpansion(ctx, proposal)
	if err != nil {
		c.diag.Record("conversation", "expansion_failed", map[string]string{
			"story_id": current.StoryID,
			"error":    err.Error(),
		})
		return nil, err
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "expansion proposal rejected"
		}
		c.diag.Record("conversation", "expansion_rejected", map[string]string{
			"story_id": current.StoryID,
			"message":  msg,
		})
		return nil, api.NewApplicationError(msg)
	}

	note := result.Message
	if note == "" {
		note = "Expansion proposal submitted successfully"
	}
	confirmation := NewEntry(SenderSystem, note)

	c.mu.Lock()
	c.state.Transcript.Append(confirmation)
	c.mu.Unlock()

	proposalID, _ := result.Data["proposal_id"].(string)
	c.diag.Record("conversation", "expansion_submitted", map[string]string{
		"story_id":    current.StoryID,
		"proposal_id": proposalID,
		"page":        strconv.Itoa(pageNumber),
	})
	return []Event{
		EntryAppendedEvent{Entry: confirmation},
		ExpansionSubmittedEvent{Accepted: true, ProposalID: proposalID, Note: note},
	}, nil
}

// ClearChat drops the active story and its projections and resets the
// transcript to exactly one welcome entry.
func (c *Controller) ClearChat() ([]Event, error) {
	c.mu.Lock()
	c.state.Current = nil
	c.state.Characters = nil
	c.state.Locations = nil
	welcome := c.state.Transcript.Clear()
	c.mu.Unlock()

	c.diag.Record("conversation", "chat_cleared", nil)
	return []Event{
		ChatClearedEvent{},
		EntryAppendedEvent{Entry: welcome},
	}, nil
}
