// ABOUTME: Bot reply generation for the development server's chat loop.
// ABOUTME: Keyword-matching responder with an optional OpenAI-backed upgrade.
package server

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// BotReply is a generated assistant message. IsPermissible is set only by
// responders that actually vet the reply against the story.
type BotReply struct {
	Text          string
	IsPermissible *bool
}

// Responder produces the bot's reply to a user message in a story's chat.
type Responder interface {
	Reply(ctx context.Context, story *Story, userText string) (BotReply, error)
}

// DetectResponder picks a responder from the environment. With OPENAI_API_KEY
// set it returns an OpenAI-backed responder, otherwise the keyword responder.
func DetectResponder() Responder {
	if key := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); key != "" {
		return NewOpenAIResponder(key, os.Getenv("OPENAI_MODEL"), os.Getenv("OPENAI_BASE_URL"))
	}
	return NewKeywordResponder()
}

// KeywordResponder replies from a fixed ladder of keyword checks against the
// story's title, content, and elements. It never fails and needs no network.
type KeywordResponder struct {
	pick func(n int) int
}

// NewKeywordResponder returns a responder with randomized fallback replies.
func NewKeywordResponder() *KeywordResponder {
	return &KeywordResponder{pick: rand.IntN}
}

// Reply walks the keyword ladder and returns the first matching response.
func (k *KeywordResponder) Reply(_ context.Context, story *Story, userText string) (BotReply, error) {
	lower := strings.ToLower(userText)

	if containsAny(lower, "hi", "hello", "hey", "greetings") {
		return textReply("Hello! I'm here to help you explore '%s'. What would you like to know about this story?", story.Title), nil
	}

	if containsAny(lower, "what", "tell me", "about", "summary") {
		return textReply("'%s' is about: %s... Would you like me to elaborate on any part of the story?", story.Title, clip(story.Content, 200)), nil
	}

	if containsAny(lower, "character", "who") {
		names := elementNames(story.Elements, "character")
		if len(names) > 0 {
			return textReply("The main characters in this story are: %s. Which character would you like to know more about?", strings.Join(names, ", ")), nil
		}
		return textReply("This story doesn't have any defined characters yet. Would you like to add some?"), nil
	}

	if containsAny(lower, "where", "location", "place") {
		names := elementNames(story.Elements, "location")
		if len(names) > 0 {
			return textReply("The story takes place in: %s. Would you like to explore any of these locations?", strings.Join(names, ", ")), nil
		}
		return textReply("The story's setting isn't fully described yet. Where would you like the story to take place?"), nil
	}

	if containsAny(lower, "expand", "continue", "what happens next", "add") {
		return textReply("That's a great idea! To expand '%s', you could add new characters, events, or explore what happens next. What specific expansion would you like to propose?", story.Title), nil
	}

	if containsAny(lower, "help", "how", "can i") {
		return textReply("I can help you with this story in several ways:\n" +
			"• Ask questions about the plot or characters\n" +
			"• Suggest story expansions or new elements\n" +
			"• Discuss story themes and ideas\n" +
			"• Help maintain story consistency\n" +
			"\nWhat would you like to do?"), nil
	}

	if containsAny(lower, "seed", "little seed") {
		return textReply("The Little Seed is the main character of our story! It's a small seed with big dreams, waiting to grow into something wonderful. What would you like to know about the seed's journey?"), nil
	}

	if strings.Contains(lower, "garden") {
		return textReply("The garden is where our story takes place! It's a beautiful setting full of life and possibilities. Would you like to explore what happens in the garden?"), nil
	}

	if containsAny(lower, "grow", "growth") {
		return textReply("Growth is a central theme in this story! The little seed's journey represents patience, hope, and transformation. What aspect of growth interests you most?"), nil
	}

	if containsAny(lower, "interesting", "cool", "nice", "good") {
		return textReply("I'm glad you find it interesting! There's so much more to explore in this story. What would you like to discover next?"), nil
	}

	if containsAny(lower, "yes", "yeah", "sure", "ok") {
		return textReply("Great! Let's continue exploring. What aspect of the story would you like to focus on - the characters, the setting, or perhaps what happens next?"), nil
	}

	fallbacks := []string{
		fmt.Sprintf("Let's explore '%s' together! We could look at the characters, the setting, or imagine what happens next. What interests you?", story.Title),
		fmt.Sprintf("There's so much to discover in '%s'. Would you like to discuss the themes, characters, or plot development?", story.Title),
		fmt.Sprintf("I'd love to help you dive deeper into '%s'. What part of the story captures your imagination the most?", story.Title),
		fmt.Sprintf("Every story has many layers. In '%s', we could explore character motivations, setting details, or future possibilities. What shall we focus on?", story.Title),
		fmt.Sprintf("Stories are like journeys. In '%s', where would you like our journey to take us next - character development, plot twists, or world-building?", story.Title),
	}
	return BotReply{Text: fallbacks[k.pick(len(fallbacks))]}, nil
}

func textReply(format string, args ...any) BotReply {
	if len(args) == 0 {
		return BotReply{Text: format}
	}
	return BotReply{Text: fmt.Sprintf(format, args...)}
}

// containsAny reports whether s contains any of the given substrings.
// Matching is deliberately loose; "hi" matches inside "this".
func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func elementNames(elements []Element, elemType string) []string {
	var names []string
	for _, e := range elements {
		if e.Type == elemType {
			names = append(names, e.Name)
		}
	}
	return names
}

const storyAssistantPrompt = `You are a collaborative story assistant. You help the user explore and
expand the story below. Stay grounded in the story's existing content and
elements. Keep replies to a few sentences unless asked for more.

Title: %s

Content:
%s

%s`

// OpenAIResponder generates replies with a chat completion model, grounding
// the conversation in the story's content and elements.
type OpenAIResponder struct {
	client openai.Client
	model  string
}

// NewOpenAIResponder creates a responder for the given API key. Model defaults
// to gpt-5.2 when empty; baseURL overrides the API endpoint when set.
func NewOpenAIResponder(apiKey, model, baseURL string) *OpenAIResponder {
	if model == "" {
		model = "gpt-5.2"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIResponder{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

// Reply asks the model for a story-grounded response to the user's message.
func (r *OpenAIResponder) Reply(ctx context.Context, story *Story, userText string) (BotReply, error) {
	params := openai.ChatCompletionNewParams{
		Model: r.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(storyAssistantPrompt, story.Title, story.Content, describeElements(story.Elements))),
			openai.UserMessage(userText),
		},
		MaxCompletionTokens: openai.Int(512),
	}

	resp, err := r.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return BotReply{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return BotReply{}, fmt.Errorf("chat completion returned no choices")
	}

	permissible := true
	return BotReply{
		Text:          resp.Choices[0].Message.Content,
		IsPermissible: &permissible,
	}, nil
}

func describeElements(elements []Element) string {
	if len(elements) == 0 {
		return "The story has no defined elements yet."
	}
	var b strings.Builder
	b.WriteString("Story elements:\n")
	for _, e := range elements {
		if e.Description != "" {
			fmt.Fprintf(&b, "- %s %q: %s\n", e.Type, e.Name, e.Description)
		} else {
			fmt.Fprintf(&b, "- %s %q\n", e.Type, e.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
