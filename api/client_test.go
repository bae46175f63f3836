// ABOUTME: Tests for the story service HTTP client.
// ABOUTME: Exercises every endpoint against httptest servers, including shape and status failures.

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	c := NewClient("http://localhost:8000/")
	if c.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, "http://localhost:8000")
	}
}

func TestListStories(t *testing.T) {
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		// Full story records; the client only reads id and title.
		_, _ = w.Write([]byte(`{"stories":[{"id":"1","title":"The Little Seed","content":"Once upon a time..."},{"id":"2","title":"Dragon's Adventure"}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	stories, err := c.ListStories(context.Background())
	if err != nil {
		t.Fatalf("ListStories error: %v", err)
	}
	if receivedPath != "/api/stories" {
		t.Errorf("path = %q, want %q", receivedPath, "/api/stories")
	}
	if len(stories) != 2 {
		t.Fatalf("got %d stories, want 2", len(stories))
	}
	if stories[0].ID != "1" || stories[0].Title != "The Little Seed" {
		t.Errorf("stories[0] = %+v", stories[0])
	}
}

func TestListStoriesMissingField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	stories, err := c.ListStories(context.Background())
	if err == nil {
		t.Fatal("expected error for response without stories field")
	}
	if !IsApplication(err) {
		t.Errorf("want ApplicationError, got %T", err)
	}
	if stories != nil {
		t.Errorf("stories = %v, want nil on failure", stories)
	}
}

func TestListStoriesEmptyCatalog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"stories":[]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	stories, err := c.ListStories(context.Background())
	if err != nil {
		t.Fatalf("ListStories error: %v", err)
	}
	if len(stories) != 0 {
		t.Errorf("got %d stories, want 0", len(stories))
	}
}

func TestListStoriesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.ListStories(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *ApplicationError
	if !errors.As(err, &ae) {
		t.Fatalf("want ApplicationError, got %T", err)
	}
	if ae.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", ae.StatusCode)
	}
	if !strings.Contains(ae.Status, "500") {
		t.Errorf("status text %q should contain the code", ae.Status)
	}
}

func TestListStoriesTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := NewClient(server.URL)
	_, err := c.ListStories(context.Background())
	if err == nil {
		t.Fatal("expected error against closed server")
	}
	if !IsTransport(err) {
		t.Errorf("want TransportError, got %T", err)
	}
}

func TestStoryElements(t *testing.T) {
	var receivedPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedPath = r.URL.Path
		_, _ = w.Write([]byte(`{"success":true,"message":"Story retrieved successfully","data":{"elements":[{"type":"character","name":"The Little Seed","description":"The main character"},{"type":"location","name":"Garden","description":"Where it happens"},{"type":"item","name":"Watering Can","description":"A prop"}]}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	elements, err := c.StoryElements(context.Background(), "1")
	if err != nil {
		t.Fatalf("StoryElements error: %v", err)
	}
	if receivedPath != "/api/stories/1" {
		t.Errorf("path = %q, want %q", receivedPath, "/api/stories/1")
	}
	if len(elements) != 3 {
		t.Fatalf("got %d elements, want 3", len(elements))
	}
	if elements[0].Type != ElementCharacter || elements[0].Name != "The Little Seed" {
		t.Errorf("elements[0] = %+v", elements[0])
	}
}

func TestStoryElementsFailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"Story logic unavailable"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.StoryElements(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for success=false envelope")
	}
	if !IsApplication(err) {
		t.Errorf("want ApplicationError, got %T", err)
	}
	if !strings.Contains(err.Error(), "Story logic unavailable") {
		t.Errorf("error %q should carry the envelope message", err.Error())
	}
}

func TestStoryElementsMissingData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"ok"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.StoryElements(context.Background(), "1")
	if err == nil {
		t.Fatal("expected error for envelope without data")
	}
	if !IsApplication(err) {
		t.Errorf("want ApplicationError, got %T", err)
	}
}

func TestMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stories/1/messages" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"id":"m1","content":"Hello!","sender":"bot","timestamp":"2026-01-02T03:04:05"},{"content":"hi","sender":"user"},{"content":"A reply","sender":"bot","is_permissible":false}]`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	msgs, err := c.Messages(context.Background(), "1")
	if err != nil {
		t.Fatalf("Messages error: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	if msgs[0].Sender != "bot" || msgs[1].Sender != "user" {
		t.Errorf("sender order: %q then %q", msgs[0].Sender, msgs[1].Sender)
	}
	if msgs[0].IsPermissible != nil {
		t.Error("message without flag should decode a nil pointer")
	}
	if msgs[2].IsPermissible == nil || *msgs[2].IsPermissible {
		t.Errorf("msgs[2].IsPermissible = %v, want false", msgs[2].IsPermissible)
	}
}

func TestSendMessage(t *testing.T) {
	var receivedMethod, receivedPath string
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedPath = r.URL.Path
		receivedBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"m9","content":"hi","sender":"user"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if err := c.SendMessage(context.Background(), "1", "hi there"); err != nil {
		t.Fatalf("SendMessage error: %v", err)
	}
	if receivedMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", receivedMethod)
	}
	if receivedPath != "/api/stories/1/messages" {
		t.Errorf("path = %q", receivedPath)
	}

	var decoded MessageRequest
	if err := json.Unmarshal(receivedBody, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.Content != "hi there" || decoded.Sender != "user" {
		t.Errorf("body = %+v, want content=hi there sender=user", decoded)
	}
}

func TestSendMessageIgnoresBodyShape(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json at all`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if err := c.SendMessage(context.Background(), "1", "hi"); err != nil {
		t.Errorf("any OK response should succeed, got %v", err)
	}
}

func TestSendMessageNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"Story not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.SendMessage(context.Background(), "missing", "hi")
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *ApplicationError
	if !errors.As(err, &ae) {
		t.Fatalf("want ApplicationError, got %T", err)
	}
	if ae.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", ae.StatusCode)
	}
}

func TestProposeExpansion(t *testing.T) {
	var receivedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/propose-expansion" {
			t.Errorf("path = %q", r.URL.Path)
		}
		receivedBody, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true,"message":"Expansion proposal submitted successfully","data":{"proposal_id":"abc"}}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	result, err := c.ProposeExpansion(context.Background(), ExpansionProposal{
		StoryID:    "1",
		NewContent: "add a dragon",
		PageNumber: 3,
	})
	if err != nil {
		t.Fatalf("ProposeExpansion error: %v", err)
	}
	if !result.Success {
		t.Error("result.Success = false, want true")
	}
	if result.Message != "Expansion proposal submitted successfully" {
		t.Errorf("message = %q", result.Message)
	}

	// The wire body must always carry an empty array, never null.
	if !strings.Contains(string(receivedBody), `"element_references":[]`) {
		t.Errorf("body %s should contain an empty element_references array", receivedBody)
	}
	var decoded ExpansionProposal
	if err := json.Unmarshal(receivedBody, &decoded); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if decoded.StoryID != "1" || decoded.NewContent != "add a dragon" || decoded.PageNumber != 3 {
		t.Errorf("body = %+v", decoded)
	}
}

func TestProposeExpansionFailureEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"page_number must be >= 1"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	result, err := c.ProposeExpansion(context.Background(), ExpansionProposal{StoryID: "1", NewContent: "x", PageNumber: 1})
	if err != nil {
		t.Fatalf("envelope failure should not be a client error: %v", err)
	}
	if result.Success {
		t.Error("result.Success = true, want false")
	}
}

func TestUploadPDF(t *testing.T) {
	var receivedFilename string
	var receivedContent []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/upload-pdf/" {
			t.Errorf("path = %q", r.URL.Path)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		defer file.Close()
		receivedFilename = header.Filename
		receivedContent, _ = io.ReadAll(file)
		_, _ = w.Write([]byte(`{"status":"success","story_id":"2","title":"story"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	result, err := c.UploadPDF(context.Background(), "story.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("UploadPDF error: %v", err)
	}
	if receivedFilename != "story.pdf" {
		t.Errorf("filename = %q, want %q", receivedFilename, "story.pdf")
	}
	if string(receivedContent) != "%PDF-1.4 fake" {
		t.Errorf("content = %q", receivedContent)
	}
	if result.Status != "success" || result.StoryID != "2" || result.Title != "story" {
		t.Errorf("result = %+v", result)
	}
}

func TestUploadPDFServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "extraction failed", http.StatusInternalServerError)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.UploadPDF(context.Background(), "story.pdf", strings.NewReader("x"))
	if err == nil {
		t.Fatal("expected error")
	}
	var ae *ApplicationError
	if !errors.As(err, &ae) {
		t.Fatalf("want ApplicationError, got %T", err)
	}
	if !strings.Contains(ae.Status, "Internal Server Error") {
		t.Errorf("status text %q should contain the response status text", ae.Status)
	}
}

func TestHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"2026-01-02T03:04:05","version":"1.0.0"}`))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	h, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health error: %v", err)
	}
	if h.Status != "healthy" || h.Version != "1.0.0" {
		t.Errorf("health = %+v", h)
	}
}

