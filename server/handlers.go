// ABOUTME: HTTP handlers for the development backend's story API.
// ABOUTME: Catalog, story detail, chat messages, elements, expansion proposals, and PDF upload.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// apiResponse is the envelope shape used by the enveloped endpoints
// (story detail, expansion proposal).
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// storyDetailPayload is the data block of the story detail envelope.
type storyDetailPayload struct {
	StoryID   string    `json:"story_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Elements  []Element `json:"elements"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// writeError responds with the {"detail": ...} error shape.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// handleListStories returns the full catalog wrapped in a stories field.
func (s *Server) handleListStories(w http.ResponseWriter, r *http.Request) {
	stories, err := s.store.ListStories()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stories": stories})
}

// handleCreateStory creates a story from a title and content body.
func (s *Server) handleCreateStory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	story, err := s.store.CreateStory(req.Title, req.Content)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, story)
}

// handleGetStory returns one story's detail in the success envelope the
// client projects elements from.
func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")
	story, err := s.store.GetStory(storyID)
	if errors.Is(err, ErrStoryNotFound) {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Story retrieved successfully",
		Data: storyDetailPayload{
			StoryID:   story.ID,
			Title:     story.Title,
			Content:   story.Content,
			Elements:  story.Elements,
			CreatedAt: story.CreatedAt,
			UpdatedAt: story.UpdatedAt,
		},
	})
}

// handleListMessages returns a story's transcript as a bare JSON array.
func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")
	exists, err := s.store.StoryExists(storyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}

	messages, err := s.store.Messages(storyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleCreateMessage appends a message to a story's transcript. A user
// message also gets a bot reply appended server-side; the response carries
// only the created message, so clients reload the transcript to see it.
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")

	var req struct {
		Content string `json:"content"`
		Sender  string `json:"sender"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	story, err := s.store.GetStory(storyID)
	if errors.Is(err, ErrStoryNotFound) {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	created, err := s.store.AddMessage(storyID, req.Content, req.Sender, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if req.Sender == "user" {
		reply, err := s.responder.Reply(r.Context(), story, req.Content)
		if err != nil {
			// Responder outages degrade to the keyword ladder, chat keeps working.
			log.Printf("responder error, falling back to keywords: %v", err)
			reply, _ = NewKeywordResponder().Reply(r.Context(), story, req.Content)
		}
		if _, err := s.store.AddMessage(storyID, reply.Text, "bot", reply.IsPermissible); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, created)
}

// handleCreateElement adds a typed element to a story.
func (s *Server) handleCreateElement(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")

	var req struct {
		Name        string `json:"name"`
		Type        string `json:"type"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Type) == "" {
		writeError(w, http.StatusBadRequest, "name and type are required")
		return
	}

	exists, err := s.store.StoryExists(storyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}

	element, err := s.store.AddElement(storyID, req.Type, req.Name, req.Description)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, element)
}

// handleListExpansions returns a story's expansion proposals, newest first.
func (s *Server) handleListExpansions(w http.ResponseWriter, r *http.Request) {
	storyID := chi.URLParam(r, "storyID")
	exists, err := s.store.StoryExists(storyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Story not found")
		return
	}

	expansions, err := s.store.Expansions(storyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, expansions)
}

// handleProposeExpansion records an expansion proposal. Rejections come back
// in the envelope with success false rather than as HTTP errors, which is
// the shape the client surfaces to the user.
func (s *Server) handleProposeExpansion(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StoryID           string   `json:"story_id"`
		NewContent        string   `json:"new_content"`
		PageNumber        int      `json:"page_number"`
		ElementReferences []string `json:"element_references"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	exists, err := s.store.StoryExists(req.StoryID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Message: "Story not found"})
		return
	}

	expansion, err := s.store.AddExpansion(req.StoryID, req.NewContent, req.PageNumber)
	if err != nil {
		writeJSON(w, http.StatusOK, apiResponse{Success: false, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Message: "Expansion proposal submitted successfully",
		Data: map[string]any{
			"proposal_id": expansion.ProposalID,
			"consistency_check": map[string]any{
				"is_consistent":  true,
				"contradictions": []string{},
				"suggestions":    []string{"Consider character development"},
			},
		},
	})
}

// handleUploadPDF ingests an uploaded document as a new story. Extraction
// failures are client errors; the document was unreadable.
func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	text, err := ExtractText(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := strings.ReplaceAll(header.Filename, ".pdf", "")
	story, err := s.store.CreateStoryFromText(title, text)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "success",
		"story_id": story.ID,
		"title":    story.Title,
	})
}
