// ABOUTME: Bubble Tea message types used in the TUI message loop.
// ABOUTME: Each type wraps domain events for the tea.Msg interface (which is interface{}).
package tui

import (
	"time"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/conversation"
	"github.com/2389-research/fable/diag"
)

// CommandResultMsg carries the outcome of dispatching a conversation command.
type CommandResultMsg struct {
	Command conversation.Command
	Events  []conversation.Event
	Err     error
}

// DiagRecordMsg wraps a diagnostic record for the log panel.
type DiagRecordMsg struct {
	Record diag.Record
}

// FlashClearMsg dismisses a status bar notification. Seq guards against
// clearing a newer notification than the one this timer belongs to.
type FlashClearMsg struct {
	Seq int
}

// UploadFinishedMsg carries the outcome of an upload submission.
type UploadFinishedMsg struct {
	Result *api.UploadResult
	Err    error
}

// UploadSettledMsg fires after the post-upload delay; the modal closes and
// the catalog reloads.
type UploadSettledMsg struct{}

// HealthCheckMsg carries the startup health probe result.
type HealthCheckMsg struct {
	Health api.Health
	Err    error
}

// TickMsg is sent periodically to refresh time-based UI elements.
type TickMsg struct {
	Time time.Time
}
