// ABOUTME: Bridge connecting the conversation controller and upload flow to the Bubble Tea message loop.
// ABOUTME: Provides tea.Cmd factories for command dispatch, diagnostics streaming, uploads, and timers.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/conversation"
	"github.com/2389-research/fable/diag"
	"github.com/2389-research/fable/upload"
)

// DispatchCmd returns a tea.Cmd that hands a command to the controller and
// reports the resulting events. Dispatch runs off the message loop, so slow
// network calls never block rendering.
func DispatchCmd(ctx context.Context, c *conversation.Controller, cmd conversation.Command) tea.Cmd {
	return func() tea.Msg {
		events, err := c.Handle(ctx, cmd)
		return CommandResultMsg{Command: cmd, Events: events, Err: err}
	}
}

// WaitForDiagCmd returns a tea.Cmd that blocks on the diagnostics channel and
// delivers the next record. Re-issue it after each DiagRecordMsg to keep the
// stream flowing.
func WaitForDiagCmd(ch <-chan diag.Record) tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-ch
		if !ok {
			return nil // channel closed, no more records
		}
		return DiagRecordMsg{Record: rec}
	}
}

// SubmitUploadCmd returns a tea.Cmd that runs the upload flow's submission.
func SubmitUploadCmd(ctx context.Context, flow *upload.Flow) tea.Cmd {
	return func() tea.Msg {
		result, err := flow.Submit(ctx)
		return UploadFinishedMsg{Result: result, Err: err}
	}
}

// UploadSettleCmd returns a tea.Cmd that fires after the post-upload delay,
// closing the modal and triggering the catalog reload.
func UploadSettleCmd(delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(delay)
		return UploadSettledMsg{}
	}
}

// FlashClearCmd returns a tea.Cmd that dismisses notification seq after the
// given interval.
func FlashClearCmd(seq int, after time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(after)
		return FlashClearMsg{Seq: seq}
	}
}

// HealthCheckCmd returns a tea.Cmd that probes the backend's health endpoint.
func HealthCheckCmd(ctx context.Context, client *api.Client) tea.Cmd {
	return func() tea.Msg {
		h, err := client.Health(ctx)
		return HealthCheckMsg{Health: h, Err: err}
	}
}

// TickCmd returns a tea.Cmd that sends a TickMsg after the given interval.
func TickCmd(interval time.Duration) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(interval)
		return TickMsg{Time: time.Now()}
	}
}
