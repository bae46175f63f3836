// ABOUTME: Tests for the keyword bot responder ladder.
// ABOUTME: Covers greeting, story info, element, expansion, help, and fallback replies.
package server

import (
	"context"
	"strings"
	"testing"
)

func sampleStory() *Story {
	return &Story{
		ID:      "1",
		Title:   "The Little Seed",
		Content: "Once upon a time, there was a little seed that dreamed of becoming a mighty tree.",
		Elements: []Element{
			{ID: "1-1", Type: "character", Name: "The Little Seed", Description: "The main character."},
			{ID: "1-2", Type: "location", Name: "Garden", Description: "Where the story takes place."},
		},
	}
}

func keywordReply(t *testing.T, story *Story, text string) string {
	t.Helper()
	reply, err := NewKeywordResponder().Reply(context.Background(), story, text)
	if err != nil {
		t.Fatalf("unexpected error from keyword responder: %v", err)
	}
	return reply.Text
}

func TestKeywordResponderGreeting(t *testing.T) {
	got := keywordReply(t, sampleStory(), "Hello there!")
	want := "Hello! I'm here to help you explore 'The Little Seed'. What would you like to know about this story?"
	if got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestKeywordResponderStoryInfoClipsContent(t *testing.T) {
	story := sampleStory()
	story.Content = strings.Repeat("x", 300)
	got := keywordReply(t, story, "what is the summary?")
	if !strings.Contains(got, strings.Repeat("x", 200)+"...") {
		t.Error("expected reply to carry the first 200 characters of content")
	}
	if strings.Contains(got, strings.Repeat("x", 201)) {
		t.Error("expected content clipped at 200 characters")
	}
}

func TestKeywordResponderCharacters(t *testing.T) {
	got := keywordReply(t, sampleStory(), "who are the characters?")
	if !strings.Contains(got, "The Little Seed") {
		t.Errorf("expected character names in reply, got %q", got)
	}
	if strings.Contains(got, "Garden") {
		t.Errorf("expected locations excluded from character reply, got %q", got)
	}
}

func TestKeywordResponderCharactersEmpty(t *testing.T) {
	story := sampleStory()
	story.Elements = nil
	got := keywordReply(t, story, "who appears?")
	want := "This story doesn't have any defined characters yet. Would you like to add some?"
	if got != want {
		t.Errorf("reply = %q, want %q", got, want)
	}
}

func TestKeywordResponderLocations(t *testing.T) {
	got := keywordReply(t, sampleStory(), "where does it take place?")
	if !strings.Contains(got, "Garden") {
		t.Errorf("expected location names in reply, got %q", got)
	}
}

func TestKeywordResponderExpansion(t *testing.T) {
	got := keywordReply(t, sampleStory(), "let's expand the plot")
	if !strings.Contains(got, "To expand 'The Little Seed'") {
		t.Errorf("expected expansion reply, got %q", got)
	}
}

func TestKeywordResponderHelp(t *testing.T) {
	got := keywordReply(t, sampleStory(), "help")
	if !strings.Contains(got, "I can help you with this story in several ways") {
		t.Errorf("expected help reply, got %q", got)
	}
	if !strings.Contains(got, "•") {
		t.Error("expected bulleted help text")
	}
}

func TestKeywordResponderFallbackUsesTitle(t *testing.T) {
	k := NewKeywordResponder()
	for i := 0; i < 5; i++ {
		idx := i
		k.pick = func(n int) int { return idx }
		reply, err := k.Reply(context.Background(), sampleStory(), "zzz qqq")
		if err != nil {
			t.Fatalf("unexpected error from fallback %d: %v", idx, err)
		}
		if !strings.Contains(reply.Text, "The Little Seed") {
			t.Errorf("fallback %d missing story title: %q", idx, reply.Text)
		}
	}
}

func TestKeywordResponderLadderOrder(t *testing.T) {
	// "what" outranks "character" in the ladder, so a message containing
	// both resolves to the story info reply.
	got := keywordReply(t, sampleStory(), "what about the characters?")
	if !strings.Contains(got, "is about:") {
		t.Errorf("expected story info reply to win, got %q", got)
	}
}

func TestKeywordResponderNeverSetsPermissible(t *testing.T) {
	reply, err := NewKeywordResponder().Reply(context.Background(), sampleStory(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.IsPermissible != nil {
		t.Error("expected keyword replies to carry no permissibility flag")
	}
}

func TestDescribeElements(t *testing.T) {
	got := describeElements(sampleStory().Elements)
	if !strings.Contains(got, `character "The Little Seed"`) {
		t.Errorf("expected character line, got %q", got)
	}
	if !strings.Contains(got, `location "Garden"`) {
		t.Errorf("expected location line, got %q", got)
	}

	empty := describeElements(nil)
	if empty != "The story has no defined elements yet." {
		t.Errorf("empty elements = %q", empty)
	}
}
