// ABOUTME: Wire types for the story service HTTP API.
// ABOUTME: Mirrors the backend's JSON shapes for stories, elements, messages, expansions, and uploads.

package api

// StorySummary is one entry in the story catalog. The catalog returns full
// story records; the client only depends on id and title.
type StorySummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// StoryElement is a structured element derived from a story: a character, a
// location, or another typed entity. Unknown types are ignored by callers.
type StoryElement struct {
	ID          string `json:"id,omitempty"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Element type values the client projects into views. The backend may send
// others (item, event, theme); callers omit those silently.
const (
	ElementCharacter = "character"
	ElementLocation  = "location"
)

// Message is one chat message in a story's transcript as stored remotely.
// IsPermissible is an optional consistency flag supplied by the backend; the
// client displays it and never derives it.
type Message struct {
	ID            string `json:"id,omitempty"`
	Content       string `json:"content"`
	Sender        string `json:"sender"`
	Timestamp     string `json:"timestamp,omitempty"`
	StoryID       string `json:"story_id,omitempty"`
	IsPermissible *bool  `json:"is_permissible,omitempty"`
}

// MessageRequest is the body for posting a new chat message.
type MessageRequest struct {
	Content string `json:"content"`
	Sender  string `json:"sender"`
}

// ExpansionProposal is the body for submitting a story expansion.
// ElementReferences is always sent, and always empty: the client has no
// mechanism to populate it. This is a known limitation preserved on purpose.
type ExpansionProposal struct {
	StoryID           string   `json:"story_id"`
	NewContent        string   `json:"new_content"`
	PageNumber        int      `json:"page_number"`
	ElementReferences []string `json:"element_references"`
}

// Envelope is the backend's generic response wrapper for enveloped endpoints
// (story detail, expansion proposal).
type Envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// UploadResult is the response to a successful PDF upload.
type UploadResult struct {
	Status  string `json:"status"`
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
}

// Health is the service health report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// storiesEnvelope decodes the catalog response. Stories is a pointer so a
// response without the stories field is distinguishable from an empty list.
type storiesEnvelope struct {
	Stories *[]StorySummary `json:"stories"`
}

// storyDetailEnvelope decodes the story detail response.
type storyDetailEnvelope struct {
	Envelope
	Data *storyDetailData `json:"data"`
}

type storyDetailData struct {
	Elements []StoryElement `json:"elements"`
}

// expansionEnvelope decodes the expansion proposal response.
type expansionEnvelope struct {
	Envelope
	Data map[string]any `json:"data,omitempty"`
}

// ExpansionResult is the decoded outcome of an expansion proposal.
type ExpansionResult struct {
	Success bool
	Message string
	Data    map[string]any
}
