// ABOUTME: Tests for transcript entry lifecycle and destructive reconciliation.
// ABOUTME: Covers optimistic appends, settlement, welcome retention, and clearing.
package conversation_test

import (
	"testing"

	"github.com/2389-research/fable/api"
	"github.com/2389-research/fable/conversation"
)

func TestApplyOptimistic_MarksEntryPending(t *testing.T) {
	var tr conversation.Transcript

	entry := tr.ApplyOptimistic(conversation.NewEntry(conversation.SenderUser, "hello"))
	if !entry.Pending {
		t.Error("expected optimistic entry to be pending")
	}
	if entry.Failed {
		t.Error("expected optimistic entry to not be failed")
	}
	if tr.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", tr.Len())
	}
	if got := tr.Entries()[0]; !got.Pending {
		t.Error("expected stored entry to be pending")
	}
}

func TestMarkSettled_ClearsPendingFlag(t *testing.T) {
	var tr conversation.Transcript
	entry := tr.ApplyOptimistic(conversation.NewEntry(conversation.SenderUser, "hello"))

	if !tr.MarkSettled(entry.EntryID, false) {
		t.Fatal("expected MarkSettled to find the entry")
	}
	got := tr.Entries()[0]
	if got.Pending {
		t.Error("expected settled entry to not be pending")
	}
	if got.Failed {
		t.Error("expected successful settle to not mark failed")
	}
}

func TestMarkSettled_FailureKeepsEntryMarkedFailed(t *testing.T) {
	var tr conversation.Transcript
	entry := tr.ApplyOptimistic(conversation.NewEntry(conversation.SenderUser, "hello"))

	if !tr.MarkSettled(entry.EntryID, true) {
		t.Fatal("expected MarkSettled to find the entry")
	}
	got := tr.Entries()[0]
	if got.Pending {
		t.Error("expected settled entry to not be pending")
	}
	if !got.Failed {
		t.Error("expected failed settle to mark the entry failed")
	}
	if tr.Len() != 1 {
		t.Errorf("expected failed entry to stay in place, got %d entries", tr.Len())
	}
}

func TestMarkSettled_UnknownIDReturnsFalse(t *testing.T) {
	var tr conversation.Transcript
	tr.Append(conversation.NewEntry(conversation.SenderUser, "hello"))

	if tr.MarkSettled(conversation.NewULID(), false) {
		t.Error("expected MarkSettled to report false for an unknown ID")
	}
}

func TestReconcile_RetainsExactlyFirstBotEntry(t *testing.T) {
	var tr conversation.Transcript
	welcome := conversation.NewEntry(conversation.SenderBot, conversation.WelcomeText)
	tr.Append(welcome)
	tr.Append(conversation.NewEntry(conversation.SenderSystem, "Selected story: The Fox"))
	tr.Append(conversation.NewEntry(conversation.SenderUser, "hi"))
	tr.Append(conversation.NewEntry(conversation.SenderBot, "hello there"))

	server := []conversation.Entry{
		conversation.NewEntry(conversation.SenderUser, "hi"),
		conversation.NewEntry(conversation.SenderBot, "hello there"),
	}
	retained := tr.Reconcile(server, conversation.IsBotEntry)
	if !retained {
		t.Error("expected a retained entry")
	}

	entries := tr.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after reconcile, got %d", len(entries))
	}
	if entries[0].EntryID != welcome.EntryID {
		t.Error("expected the first bot entry to be the one retained")
	}
	if entries[1].Content != "hi" || entries[2].Content != "hello there" {
		t.Error("expected server entries to follow the retained welcome in order")
	}
}

func TestReconcile_NoBotEntryRetainsNothing(t *testing.T) {
	var tr conversation.Transcript
	tr.Append(conversation.NewEntry(conversation.SenderSystem, "notice"))
	tr.Append(conversation.NewEntry(conversation.SenderUser, "hi"))

	server := []conversation.Entry{
		conversation.NewEntry(conversation.SenderUser, "hi"),
	}
	retained := tr.Reconcile(server, conversation.IsBotEntry)
	if retained {
		t.Error("expected no retained entry")
	}
	if tr.Len() != 1 {
		t.Fatalf("expected transcript to equal the server list, got %d entries", tr.Len())
	}
}

func TestReconcile_RepeatedResyncDoesNotAccumulate(t *testing.T) {
	var tr conversation.Transcript
	tr.Clear()

	server := []conversation.Entry{
		conversation.NewEntry(conversation.SenderBot, conversation.WelcomeText),
		conversation.NewEntry(conversation.SenderUser, "hi"),
		conversation.NewEntry(conversation.SenderBot, "hello there"),
	}
	tr.Reconcile(server, conversation.IsBotEntry)
	first := tr.Len()
	tr.Reconcile(server, conversation.IsBotEntry)
	second := tr.Len()

	if first != second {
		t.Errorf("expected repeated reconcile to be stable, got %d then %d entries", first, second)
	}
	if second != len(server)+1 {
		t.Errorf("expected retained welcome plus server list, got %d entries", second)
	}
}

func TestClear_SeedsExactlyOneWelcome(t *testing.T) {
	var tr conversation.Transcript
	tr.Append(conversation.NewEntry(conversation.SenderUser, "hi"))
	tr.Append(conversation.NewEntry(conversation.SenderBot, "hello"))

	welcome := tr.Clear()
	if tr.Len() != 1 {
		t.Fatalf("expected exactly 1 entry after clear, got %d", tr.Len())
	}
	if welcome.Sender != conversation.SenderBot {
		t.Errorf("expected welcome sender bot, got %q", welcome.Sender)
	}
	if welcome.Content != conversation.WelcomeText {
		t.Errorf("expected welcome text %q, got %q", conversation.WelcomeText, welcome.Content)
	}
}

func TestEntryFromMessage_ParsesServerTimestamps(t *testing.T) {
	entry := conversation.EntryFromMessage(api.Message{
		Content:   "hello",
		Sender:    "bot",
		Timestamp: "2026-08-21T10:00:00Z",
	})
	if entry.Timestamp.Year() != 2026 || entry.Timestamp.Month() != 8 {
		t.Errorf("expected parsed timestamp, got %v", entry.Timestamp)
	}

	// The story service sends bare ISO timestamps without a zone.
	entry = conversation.EntryFromMessage(api.Message{
		Content:   "hello",
		Sender:    "bot",
		Timestamp: "2026-08-21T10:00:00.123456",
	})
	if entry.Timestamp.Year() != 2026 {
		t.Errorf("expected zoneless timestamp to parse, got %v", entry.Timestamp)
	}

	entry = conversation.EntryFromMessage(api.Message{Content: "x", Sender: "user", Timestamp: "garbage"})
	if entry.Timestamp.IsZero() {
		t.Error("expected unparseable timestamp to fall back to a real time")
	}
}

func TestEntries_ReturnsACopy(t *testing.T) {
	var tr conversation.Transcript
	tr.Append(conversation.NewEntry(conversation.SenderUser, "hi"))

	got := tr.Entries()
	got[0].Content = "mutated"
	if tr.Entries()[0].Content != "hi" {
		t.Error("expected Entries to return a copy, not the backing slice")
	}
}
