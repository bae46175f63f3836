// ABOUTME: Transcript entries and the two-phase optimistic/reconcile chat history.
// ABOUTME: Entries are ULID-stamped; reconciliation retains a prefix chosen by a predicate.
package conversation

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/2389-research/fable/api"
)

// Sender identifies who produced a transcript entry.
type Sender string

const (
	// SenderUser marks entries typed by the person at the keyboard.
	SenderUser Sender = "user"
	// SenderBot marks entries produced by the story assistant.
	SenderBot Sender = "bot"
	// SenderSystem marks local notices that never travel to the server.
	SenderSystem Sender = "system"
)

// WelcomeText is the greeting shown whenever a chat starts fresh.
const WelcomeText = "Hello! I'm here to help you explore and expand this story."

// Entry is one line of the chat transcript.
type Entry struct {
	EntryID       ulid.ULID
	Sender        Sender
	Content       string
	Pending       bool
	Failed        bool
	IsPermissible *bool
	Timestamp     time.Time
}

// NewEntry creates a transcript entry with a fresh ULID and UTC timestamp.
func NewEntry(sender Sender, content string) Entry {
	return Entry{
		EntryID:   NewULID(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}

// EntryFromMessage converts a server message into a transcript entry.
// Server timestamps are parsed best-effort; unparseable ones fall back to now.
func EntryFromMessage(m api.Message) Entry {
	ts := parseTimestamp(m.Timestamp)
	return Entry{
		EntryID:       NewULID(),
		Sender:        Sender(m.Sender),
		Content:       m.Content,
		IsPermissible: m.IsPermissible,
		Timestamp:     ts,
	}
}

// parseTimestamp accepts RFC3339 or a bare ISO timestamp without a zone.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("2006-01-02T15:04:05.999999999", raw); err == nil {
		return ts.UTC()
	}
	return time.Now().UTC()
}

// IsBotEntry reports whether the entry came from the story assistant.
// Used as the retain predicate so a welcome message survives a resync.
func IsBotEntry(e Entry) bool {
	return e.Sender == SenderBot
}

// RetainPredicate decides which leading entries survive a reconcile.
type RetainPredicate func(Entry) bool

// Transcript holds the ordered chat history for the active story.
type Transcript struct {
	entries []Entry
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the transcript in order.
func (t *Transcript) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Append adds an entry to the end of the transcript.
func (t *Transcript) Append(e Entry) {
	t.entries = append(t.entries, e)
}

// ApplyOptimistic appends an entry flagged pending until the server settles it.
func (t *Transcript) ApplyOptimistic(e Entry) Entry {
	e.Pending = true
	e.Failed = false
	t.entries = append(t.entries, e)
	return e
}

// MarkSettled clears the pending flag on the entry with the given ID.
// When failed is true the entry is marked failed instead of confirmed.
func (t *Transcript) MarkSettled(id ulid.ULID, failed bool) bool {
	for i := range t.entries {
		if t.entries[i].EntryID == id {
			t.entries[i].Pending = false
			t.entries[i].Failed = failed
			return true
		}
	}
	return false
}

// Reconcile destructively replaces the transcript with the server's list.
// Exactly the first existing entry the predicate accepts is retained as a
// prefix; every other prior entry is discarded. Retaining one bot entry keeps
// a locally seeded welcome alive across the resync, and retaining at most one
// keeps repeated resyncs from accumulating duplicates. The return value
// reports whether an entry was retained.
func (t *Transcript) Reconcile(server []Entry, retain RetainPredicate) bool {
	var kept []Entry
	if retain != nil {
		for _, e := range t.entries {
			if retain(e) {
				kept = append(kept, e)
				break
			}
		}
	}
	next := make([]Entry, 0, len(kept)+len(server))
	next = append(next, kept...)
	next = append(next, server...)
	t.entries = next
	return len(kept) > 0
}

// Clear wipes the transcript and seeds the standard welcome entry.
func (t *Transcript) Clear() Entry {
	welcome := NewEntry(SenderBot, WelcomeText)
	t.entries = []Entry{welcome}
	return welcome
}

// Reset empties the transcript entirely, with no welcome seeded.
func (t *Transcript) Reset() {
	t.entries = nil
}
