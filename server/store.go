// ABOUTME: SQLite-backed story store for the development backend.
// ABOUTME: Holds stories, their elements, ordered messages, and expansion proposals.
package server

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Expansion proposal review states.
const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

// ErrStoryNotFound is returned when a story ID does not exist.
var ErrStoryNotFound = errors.New("story not found")

// Story is a stored narrative with its elements and messages attached.
type Story struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Elements  []Element `json:"elements"`
	Messages  []Message `json:"messages"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// Element is a structured story fact: a character, a location, and so on.
type Element struct {
	ID          string `json:"id"`
	StoryID     string `json:"story_id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Message is one chat line attached to a story, in send order.
type Message struct {
	ID            string `json:"id"`
	StoryID       string `json:"story_id"`
	Content       string `json:"content"`
	Sender        string `json:"sender"`
	IsPermissible *bool  `json:"is_permissible,omitempty"`
	Timestamp     string `json:"timestamp"`
}

// Expansion is a proposed addition to a story page, awaiting review.
type Expansion struct {
	ProposalID string `json:"proposal_id"`
	StoryID    string `json:"story_id"`
	NewContent string `json:"new_content"`
	PageNumber int    `json:"page_number"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Store is the SQLite-backed persistence layer for the development backend.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the story database at the given path.
// Runs migrations to ensure the schema is up to date.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS stories (
			story_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS elements (
			element_id TEXT PRIMARY KEY,
			story_id TEXT NOT NULL,
			element_type TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			FOREIGN KEY (story_id) REFERENCES stories(story_id)
		);

		CREATE TABLE IF NOT EXISTS messages (
			message_id TEXT PRIMARY KEY,
			story_id TEXT NOT NULL,
			content TEXT NOT NULL,
			sender TEXT NOT NULL,
			is_permissible INTEGER,
			created_at TEXT NOT NULL,
			seq INTEGER NOT NULL,
			FOREIGN KEY (story_id) REFERENCES stories(story_id)
		);

		CREATE TABLE IF NOT EXISTS expansions (
			proposal_id TEXT PRIMARY KEY,
			story_id TEXT NOT NULL,
			new_content TEXT NOT NULL,
			page_number INTEGER NOT NULL,
			status TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (story_id) REFERENCES stories(story_id)
		);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// now returns the timestamp format stored throughout the database.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Seed inserts the sample story if the database holds no stories yet.
func (s *Store) Seed() error {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM stories").Scan(&count); err != nil {
		return fmt.Errorf("count stories: %w", err)
	}
	if count > 0 {
		return nil
	}

	ts := now()
	if _, err := s.db.Exec(
		"INSERT INTO stories (story_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		"1", "The Little Seed", "Once upon a time, there was a little seed...", ts, ts,
	); err != nil {
		return fmt.Errorf("seed story: %w", err)
	}

	elements := []Element{
		{ID: "1-1", StoryID: "1", Type: "character", Name: "The Little Seed",
			Description: "The main character of the story, a small seed with big dreams."},
		{ID: "1-2", StoryID: "1", Type: "location", Name: "Garden",
			Description: "A beautiful garden where the story takes place."},
	}
	for _, el := range elements {
		if _, err := s.db.Exec(
			"INSERT INTO elements (element_id, story_id, element_type, name, description) VALUES (?, ?, ?, ?, ?)",
			el.ID, el.StoryID, el.Type, el.Name, el.Description,
		); err != nil {
			return fmt.Errorf("seed element %s: %w", el.ID, err)
		}
	}

	if _, err := s.db.Exec(
		`INSERT INTO messages (message_id, story_id, content, sender, is_permissible, created_at, seq)
		 VALUES (?, ?, ?, ?, NULL, ?, 1)`,
		"m1", "1", "Hello! I'm here to help you explore and expand this story.", "bot", ts,
	); err != nil {
		return fmt.Errorf("seed welcome message: %w", err)
	}

	return nil
}

// StoryExists reports whether a story row exists for the given ID.
func (s *Store) StoryExists(storyID string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM stories WHERE story_id = ?", storyID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query story: %w", err)
	}
	return true, nil
}

// ListStories returns every story with elements and messages attached,
// in insertion order.
func (s *Store) ListStories() ([]Story, error) {
	rows, err := s.db.Query(
		"SELECT story_id, title, content, created_at, updated_at FROM stories ORDER BY rowid ASC")
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stories []Story
	for rows.Next() {
		var st Story
		if err := rows.Scan(&st.ID, &st.Title, &st.Content, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan story row: %w", err)
		}
		stories = append(stories, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range stories {
		if stories[i].Elements, err = s.Elements(stories[i].ID); err != nil {
			return nil, err
		}
		if stories[i].Messages, err = s.Messages(stories[i].ID); err != nil {
			return nil, err
		}
	}
	return stories, nil
}

// GetStory returns one story with elements and messages attached.
func (s *Store) GetStory(storyID string) (*Story, error) {
	var st Story
	err := s.db.QueryRow(
		"SELECT story_id, title, content, created_at, updated_at FROM stories WHERE story_id = ?",
		storyID,
	).Scan(&st.ID, &st.Title, &st.Content, &st.CreatedAt, &st.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrStoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query story: %w", err)
	}

	if st.Elements, err = s.Elements(storyID); err != nil {
		return nil, err
	}
	if st.Messages, err = s.Messages(storyID); err != nil {
		return nil, err
	}
	return &st, nil
}

// Elements returns a story's elements in insertion order.
func (s *Store) Elements(storyID string) ([]Element, error) {
	rows, err := s.db.Query(
		`SELECT element_id, story_id, element_type, name, description
		 FROM elements WHERE story_id = ? ORDER BY rowid ASC`,
		storyID)
	if err != nil {
		return nil, fmt.Errorf("query elements: %w", err)
	}
	defer func() { _ = rows.Close() }()

	elements := []Element{}
	for rows.Next() {
		var el Element
		if err := rows.Scan(&el.ID, &el.StoryID, &el.Type, &el.Name, &el.Description); err != nil {
			return nil, fmt.Errorf("scan element row: %w", err)
		}
		elements = append(elements, el)
	}
	return elements, rows.Err()
}

// Messages returns a story's messages in send order.
func (s *Store) Messages(storyID string) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT message_id, story_id, content, sender, is_permissible, created_at
		 FROM messages WHERE story_id = ? ORDER BY seq ASC`,
		storyID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.StoryID, &m.Content, &m.Sender, &m.IsPermissible, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan message row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// AddMessage appends a message to a story and bumps the story's updated_at.
func (s *Store) AddMessage(storyID, content, sender string, isPermissible *bool) (*Message, error) {
	exists, err := s.StoryExists(storyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStoryNotFound
	}

	m := Message{
		ID:            uuid.NewString(),
		StoryID:       storyID,
		Content:       content,
		Sender:        sender,
		IsPermissible: isPermissible,
		Timestamp:     now(),
	}
	if _, err := s.db.Exec(
		`INSERT INTO messages (message_id, story_id, content, sender, is_permissible, created_at, seq)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE story_id = ?))`,
		m.ID, m.StoryID, m.Content, m.Sender, m.IsPermissible, m.Timestamp, m.StoryID,
	); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	if err := s.touchStory(storyID); err != nil {
		return nil, err
	}
	return &m, nil
}

// AddElement appends an element to a story and bumps the story's updated_at.
func (s *Store) AddElement(storyID, elementType, name, description string) (*Element, error) {
	exists, err := s.StoryExists(storyID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrStoryNotFound
	}

	el := Element{
		ID:          uuid.NewString(),
		StoryID:     storyID,
		Type:        elementType,
		Name:        name,
		Description: description,
	}
	if _, err := s.db.Exec(
		"INSERT INTO elements (element_id, story_id, element_type, name, description) VALUES (?, ?, ?, ?, ?)",
		el.ID, el.StoryID, el.Type, el.Name, el.Description,
	); err != nil {
		return nil, fmt.Errorf("insert element: %w", err)
	}
	if err := s.touchStory(storyID); err != nil {
		return nil, err
	}
	return &el, nil
}

// CreateStory inserts a new story with a random identifier.
func (s *Store) CreateStory(title, content string) (*Story, error) {
	ts := now()
	st := Story{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Elements:  []Element{},
		Messages:  []Message{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := s.db.Exec(
		"INSERT INTO stories (story_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		st.ID, st.Title, st.Content, st.CreatedAt, st.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}
	return &st, nil
}

// CreateStoryFromText inserts a story with the next sequential numeric ID,
// a content preview, and the full text attached as the first system message.
func (s *Store) CreateStoryFromText(title, fullText string) (*Story, error) {
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM stories").Scan(&count); err != nil {
		return nil, fmt.Errorf("count stories: %w", err)
	}
	storyID := strconv.Itoa(count + 1)

	preview := fullText
	if len(preview) > 500 {
		preview = preview[:500] + "..."
	}

	ts := now()
	st := Story{
		ID:        storyID,
		Title:     title,
		Content:   preview,
		Elements:  []Element{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	if _, err := s.db.Exec(
		"INSERT INTO stories (story_id, title, content, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		st.ID, st.Title, st.Content, st.CreatedAt, st.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert story: %w", err)
	}

	first, err := s.AddMessage(storyID, "PDF content:\n\n"+fullText, "system", nil)
	if err != nil {
		return nil, err
	}
	st.Messages = []Message{*first}
	return &st, nil
}

// AddExpansion records a pending expansion proposal after validation.
func (s *Store) AddExpansion(storyID, newContent string, pageNumber int) (*Expansion, error) {
	if storyID == "" {
		return nil, errors.New("story_id cannot be empty")
	}
	if newContent == "" {
		return nil, errors.New("new_content cannot be empty")
	}
	if pageNumber < 1 {
		return nil, errors.New("page_number must be a positive integer")
	}

	exp := Expansion{
		ProposalID: uuid.NewString(),
		StoryID:    storyID,
		NewContent: newContent,
		PageNumber: pageNumber,
		Status:     ProposalPending,
		CreatedAt:  now(),
	}
	if _, err := s.db.Exec(
		`INSERT INTO expansions (proposal_id, story_id, new_content, page_number, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		exp.ProposalID, exp.StoryID, exp.NewContent, exp.PageNumber, exp.Status, exp.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert expansion: %w", err)
	}
	return &exp, nil
}

// Expansions returns a story's proposals, newest first.
func (s *Store) Expansions(storyID string) ([]Expansion, error) {
	rows, err := s.db.Query(
		`SELECT proposal_id, story_id, new_content, page_number, status, created_at
		 FROM expansions WHERE story_id = ? ORDER BY created_at DESC`,
		storyID)
	if err != nil {
		return nil, fmt.Errorf("query expansions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expansions []Expansion
	for rows.Next() {
		var exp Expansion
		if err := rows.Scan(&exp.ProposalID, &exp.StoryID, &exp.NewContent,
			&exp.PageNumber, &exp.Status, &exp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan expansion row: %w", err)
		}
		expansions = append(expansions, exp)
	}
	return expansions, rows.Err()
}

// touchStory bumps a story's updated_at timestamp.
func (s *Store) touchStory(storyID string) error {
	if _, err := s.db.Exec(
		"UPDATE stories SET updated_at = ? WHERE story_id = ?", now(), storyID); err != nil {
		return fmt.Errorf("touch story: %w", err)
	}
	return nil
}
