// ABOUTME: Top-level Bubble Tea AppModel that orchestrates all TUI sub-panels into a unified layout.
// ABOUTME: Implements tea.Model (Init, Update, View) and routes messages to story, chat, elements, log, and modal panels.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/conversation"
	"github.com/2389-research/fable/diag"
	"github.com/2389-research/fable/upload"
)

// FocusTarget indicates which panel currently has keyboard focus.
type FocusTarget int

const (
	FocusStories FocusTarget = iota
	FocusInput
	FocusChat
	FocusLog
)

// flashDuration is how long a status bar notification stays visible.
const flashDuration = 3 * time.Second

// healthInterval is how often the backend health probe repeats.
const healthInterval = 30 * time.Second

// AppModel is the top-level Bubble Tea model that composes all TUI sub-panels
// and routes messages between them.
type AppModel struct {
	stories     StoryPanelModel
	chat        ChatPanelModel
	elements    ElementsPanelModel
	log         LogPanelModel
	statusBar   StatusBarModel
	uploadModal UploadModalModel
	expandModal ExpandModalModel
	input       textinput.Model

	controller *conversation.Controller
	client     *api.Client
	ctx        context.Context // cancellation context for command dispatch
	diagCh     chan diag.Record

	focus   FocusTarget
	showLog bool
	width   int
	height  int
}

// NewAppModel creates an AppModel with all sub-models initialized around the
// given controller, API client, and upload flow. It subscribes to the
// controller's diagnostics channel; Close releases the subscription.
func NewAppModel(ctx context.Context, controller *conversation.Controller, client *api.Client, flow *upload.Flow) AppModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message..."
	input.CharLimit = 2000

	m := AppModel{
		stories:     NewStoryPanelModel(),
		chat:        NewChatPanelModel(),
		elements:    NewElementsPanelModel(),
		log:         NewLogPanelModel(200),
		statusBar:   NewStatusBarModel(),
		uploadModal: NewUploadModalModel(flow),
		expandModal: NewExpandModalModel(),
		input:       input,
		controller:  controller,
		client:      client,
		ctx:         ctx,
		diagCh:      controller.Diagnostics().Subscribe(),
		focus:       FocusStories,
	}
	m.stories.SetFocused(true)
	m.refreshFromState()
	return m
}

// Close unsubscribes from the controller's diagnostics channel.
func (m *AppModel) Close() {
	m.controller.Diagnostics().Unsubscribe(m.diagCh)
}

// Init implements tea.Model. Returns a batch of initial commands to load the
// story catalog, probe the backend, and start the diagnostics stream.
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		DispatchCmd(m.ctx, m.controller, conversation.LoadStoriesCommand{}),
		HealthCheckCmd(m.ctx, m.client),
		WaitForDiagCmd(m.diagCh),
		TickCmd(healthInterval),
	)
}

// Update implements tea.Model. Routes incoming messages to the appropriate
// sub-panel and returns the updated model with any follow-up commands.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)

	case CommandResultMsg:
		return m.handleCommandResult(msg)

	case DiagRecordMsg:
		return m.handleDiagRecord(msg)

	case FlashClearMsg:
		m.statusBar.ClearFlash(msg.Seq)
		return m, nil

	case UploadFinishedMsg:
		return m.handleUploadFinished(msg)

	case UploadSettledMsg:
		return m.handleUploadSettled(msg)

	case HealthCheckMsg:
		return m.handleHealthCheck(msg)

	case TickMsg:
		return m.handleTick(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Unmatched messages belong to the filepicker's directory reads.
	if m.uploadModal.Flow().View().Visible {
		var cmd tea.Cmd
		m.uploadModal, cmd = m.uploadModal.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model. Renders the full TUI layout with all panels.
func (m AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	// Minimum terminal size guard to prevent layout overflow
	if m.width < 60 || m.height < 16 {
		return fmt.Sprintf("Terminal too small (%dx%d). Minimum: 60x16.", m.width, m.height)
	}

	// Layout calculations
	statusBarHeight := 1
	inputHeight := 3
	contentHeight := m.height - statusBarHeight - inputHeight

	leftWidth := m.width * 30 / 100
	if leftWidth < 20 {
		leftWidth = 20
	}
	rightWidth := m.width - leftWidth
	if rightWidth < 20 {
		rightWidth = 20
	}

	storiesHeight := contentHeight * 60 / 100
	if storiesHeight < 3 {
		storiesHeight = 3
	}
	elementsHeight := contentHeight - storiesHeight
	if elementsHeight < 3 {
		elementsHeight = 3
	}

	chatHeight := contentHeight
	logHeight := 0
	if m.showLog {
		chatHeight = contentHeight * 70 / 100
		if chatHeight < 3 {
			chatHeight = 3
		}
		logHeight = contentHeight - chatHeight
		if logHeight < 3 {
			logHeight = 3
		}
	}

	// Update panel sizes
	m.stories.SetSize(leftWidth, storiesHeight)
	m.elements.SetSize(leftWidth, elementsHeight)
	m.chat.SetSize(rightWidth, chatHeight)
	m.log.SetSize(rightWidth, logHeight)
	m.uploadModal.SetSize(m.width, contentHeight)
	m.statusBar.SetWidth(m.width)

	// Render left column: stories over elements
	leftView := lipgloss.JoinVertical(lipgloss.Left, m.stories.View(), m.elements.View())

	// Render right column: chat, with the log below when visible
	rightView := m.chat.View()
	if m.showLog {
		rightView = lipgloss.JoinVertical(lipgloss.Left, rightView, m.log.View())
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, leftView, rightView)

	// Modals replace the content area, centered
	if overlay := m.modalView(); overlay != "" {
		content = lipgloss.Place(m.width, lipgloss.Height(content), lipgloss.Center, lipgloss.Center, overlay)
	}

	inputStyle := BorderStyle
	if m.focus == FocusInput {
		inputStyle = FocusedBorderStyle
	}
	inputView := inputStyle.Width(m.width - 2).Render(m.input.View())

	// Assemble full view
	var b strings.Builder
	b.WriteString(content)
	b.WriteString("\n")
	b.WriteString(inputView)
	b.WriteString("\n")
	b.WriteString(m.statusBar.View())

	return b.String()
}

// modalView returns the active modal's rendering, or an empty string.
func (m AppModel) modalView() string {
	if m.uploadModal.Flow().View().Visible {
		return m.uploadModal.View()
	}
	if m.expandModal.IsActive() {
		return m.expandModal.View()
	}
	return ""
}

// handleWindowSize updates dimensions on all panels.
func (m AppModel) handleWindowSize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	return m, nil
}

// handleCommandResult refreshes every panel from the controller's state and
// turns notable events and failures into status bar notifications.
func (m AppModel) handleCommandResult(msg CommandResultMsg) (tea.Model, tea.Cmd) {
	m.refreshFromState()

	var cmds []tea.Cmd

	if msg.Err != nil {
		seq := m.statusBar.Flash(msg.Err.Error(), true)
		cmds = append(cmds, FlashClearCmd(seq, flashDuration))
		return m, tea.Batch(cmds...)
	}

	for _, evt := range msg.Events {
		text, isError := flashForEvent(evt)
		if text == "" {
			continue
		}
		seq := m.statusBar.Flash(text, isError)
		cmds = append(cmds, FlashClearCmd(seq, flashDuration))
	}

	if len(cmds) == 0 {
		return m, nil
	}
	return m, tea.Batch(cmds...)
}

// flashForEvent maps a conversation event to notification text.
// Events that only repaint panels return an empty string.
func flashForEvent(evt conversation.Event) (text string, isError bool) {
	switch evt := evt.(type) {
	case conversation.StoriesLoadedEvent:
		return fmt.Sprintf("Loaded %d stories", evt.Count), false
	case conversation.ExpansionSubmittedEvent:
		if evt.Accepted {
			return "Expansion proposal submitted", false
		}
		return evt.Note, true
	case conversation.TranscriptExportedEvent:
		return fmt.Sprintf("Exported %d entries to %s", evt.Entries, evt.Path), false
	case conversation.ChatClearedEvent:
		return "Chat cleared", false
	default:
		return "", false
	}
}

// handleDiagRecord appends the record to the log panel and re-arms the stream.
func (m AppModel) handleDiagRecord(msg DiagRecordMsg) (tea.Model, tea.Cmd) {
	m.log.Append(msg.Record)
	return m, WaitForDiagCmd(m.diagCh)
}

// handleUploadFinished schedules the modal close and catalog reload after a
// successful upload. Failures stay on screen in the modal's status line.
func (m AppModel) handleUploadFinished(msg UploadFinishedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, nil
	}
	return m, UploadSettleCmd(upload.ReloadDelay)
}

// handleUploadSettled closes the upload modal and reloads the story catalog.
func (m AppModel) handleUploadSettled(_ UploadSettledMsg) (tea.Model, tea.Cmd) {
	m.uploadModal.Flow().Cancel()
	return m, DispatchCmd(m.ctx, m.controller, conversation.LoadStoriesCommand{})
}

// handleHealthCheck records the probe result and flags an unreachable backend.
func (m AppModel) handleHealthCheck(msg HealthCheckMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusBar.SetHealth("offline")
		seq := m.statusBar.Flash(fmt.Sprintf("Cannot reach server: %v", msg.Err), true)
		return m, FlashClearCmd(seq, flashDuration)
	}
	m.statusBar.SetHealth(msg.Health.Status)
	return m, nil
}

// handleTick re-probes backend health and schedules the next tick.
func (m AppModel) handleTick(_ TickMsg) (tea.Model, tea.Cmd) {
	return m, tea.Batch(
		HealthCheckCmd(m.ctx, m.client),
		TickCmd(healthInterval),
	)
}

// handleKeyMsg processes keyboard input, routing to modals first, then the
// composer, then panel navigation.
func (m AppModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.uploadModal.Flow().View().Visible {
		return m.handleUploadKey(msg)
	}
	if m.expandModal.IsActive() {
		return m.handleExpandKey(msg)
	}
	if m.focus == FocusInput {
		return m.handleComposerKey(msg)
	}
	return m.handleBrowseKey(msg)
}

// handleUploadKey routes keys while the upload modal is open.
func (m AppModel) handleUploadKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	flow := m.uploadModal.Flow()
	switch msg.String() {
	case "esc":
		flow.Dismiss()
		return m, nil
	case "c":
		if flow.View().CancelEnabled {
			flow.Cancel()
		}
		return m, nil
	case "s":
		if flow.View().ConfirmEnabled {
			return m, SubmitUploadCmd(m.ctx, flow)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.uploadModal, cmd = m.uploadModal.Update(msg)
	return m, cmd
}

// handleExpandKey routes keys while the expansion modal is open.
func (m AppModel) handleExpandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.expandModal.Deactivate()
		return m, nil
	case tea.KeyTab:
		m.expandModal.ToggleField()
		return m, nil
	case tea.KeyEnter:
		cmd := m.expandModal.Command()
		m.expandModal.Deactivate()
		return m, DispatchCmd(m.ctx, m.controller, cmd)
	}

	m.expandModal = m.expandModal.Update(msg)
	return m, nil
}

// handleComposerKey routes keys while the message input is focused.
func (m AppModel) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.setFocus(FocusStories)
		return m, nil
	case tea.KeyTab:
		m.setFocus(m.nextFocus())
		return m, nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.Reset()
		return m, DispatchCmd(m.ctx, m.controller, conversation.SendMessageCommand{Text: text})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleBrowseKey routes keys in browse mode: story navigation and app-level
// shortcuts.
func (m AppModel) handleBrowseKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.setFocus(m.nextFocus())
		return m, nil
	case "i":
		m.setFocus(FocusInput)
		return m, nil
	case "up", "k":
		if m.focus == FocusStories {
			m.stories.MoveUp()
			return m, nil
		}
		if m.focus == FocusChat {
			m.chat = m.chat.Update(msg)
		}
		return m, nil
	case "down", "j":
		if m.focus == FocusStories {
			m.stories.MoveDown()
			return m, nil
		}
		if m.focus == FocusChat {
			m.chat = m.chat.Update(msg)
		}
		return m, nil
	case "enter":
		if m.focus == FocusStories {
			if story, ok := m.stories.Current(); ok {
				return m, DispatchCmd(m.ctx, m.controller, conversation.SelectStoryCommand{
					StoryID: story.ID,
					Title:   story.Title,
				})
			}
		}
		return m, nil
	case "u":
		m.uploadModal.Flow().Open()
		return m, m.uploadModal.Init()
	case "e":
		m.expandModal.SetActive()
		return m, nil
	case "r":
		return m, DispatchCmd(m.ctx, m.controller, conversation.RefreshMessagesCommand{})
	case "c":
		return m, DispatchCmd(m.ctx, m.controller, conversation.ClearChatCommand{})
	case "x":
		path := fmt.Sprintf("transcript-%s.yaml", time.Now().Format("20060102-150405"))
		return m, DispatchCmd(m.ctx, m.controller, conversation.ExportTranscriptCommand{Path: path})
	case "l":
		m.showLog = !m.showLog
		if !m.showLog && m.focus == FocusLog {
			m.setFocus(FocusStories)
		}
		return m, nil
	}

	return m, nil
}

// setFocus moves keyboard focus to the target panel, updating focus flags.
func (m *AppModel) setFocus(target FocusTarget) {
	m.focus = target
	m.stories.SetFocused(target == FocusStories)
	m.chat.SetFocused(target == FocusChat)
	m.log.SetFocused(target == FocusLog)
	if target == FocusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// nextFocus cycles the focus target through the panels, skipping the log
// panel while it is hidden.
func (m AppModel) nextFocus() FocusTarget {
	switch m.focus {
	case FocusStories:
		return FocusInput
	case FocusInput:
		return FocusChat
	case FocusChat:
		if m.showLog {
			return FocusLog
		}
		return FocusStories
	case FocusLog:
		return FocusStories
	default:
		return FocusStories
	}
}

// refreshFromState repaints every panel from a controller state snapshot.
func (m *AppModel) refreshFromState() {
	m.controller.ReadState(func(s *conversation.State) {
		m.stories.SetStories(s.Stories)
		if s.Current != nil {
			m.stories.SetSelected(s.Current.StoryID)
			m.statusBar.SetStory(s.Current.Title)
		} else {
			m.stories.SetSelected("")
			m.statusBar.SetStory("")
		}
		m.elements.SetElements(s.Characters, s.Locations)
		m.chat.SetEntries(s.Transcript.Entries())
		m.statusBar.SetSending(s.SendsInFlight)
	})
}
