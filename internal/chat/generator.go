// Package chat provides the retrieval orchestrator and the generation
// provider boundary used to answer questions over indexed notes.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/sagemind/noteai/internal/apperr"
	"github.com/sagemind/noteai/internal/vectorstore"
)

// Message is one turn of conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Generator is the external generation collaborator. It consumes the
// core's ranked context; how it forms prompts and calls a model is its
// own business. SuggestTitle and SuggestTags never fail: on any provider
// error they fall back to a sensible default.
type Generator interface {
	// Answer generates a grounded response to query using the retrieved
	// notes as context and the prior turns as history.
	Answer(ctx context.Context, query string, notes []vectorstore.SearchHit, history []Message) (string, error)

	// Enumerate generates a listing response over all indexed notes.
	Enumerate(ctx context.Context, query string, summaries []vectorstore.Summary) (string, error)

	// SuggestTitle proposes a title for raw note content.
	SuggestTitle(ctx context.Context, content string) string

	// SuggestTags proposes tags for raw note content.
	SuggestTags(ctx context.Context, content string) []string
}

const (
	answerTemperature = 0.7
	answerMaxTokens   = 500

	// defaultTitle is the fallback when title suggestion fails.
	defaultTitle = "Untitled Note"
)

// OpenAIGenerator implements Generator against the OpenAI chat API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator using the given chat model.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGenerator{client: openai.NewClient(apiKey), model: model}, nil
}

// Answer asks the chat model to respond to query grounded in the given notes.
func (g *OpenAIGenerator) Answer(ctx context.Context, query string, notes []vectorstore.SearchHit, history []Message) (string, error) {
	var contextText strings.Builder
	for i, n := range notes {
		if i > 0 {
			contextText.WriteString("\n\n")
		}
		fmt.Fprintf(&contextText, "Note: %s", n.Content)
	}
	system := "You are a helpful AI assistant that answers questions about the user's notes. " +
		"Use the following context to answer the question. If the context does not contain " +
		"relevant information, provide a general helpful answer based on your knowledge, " +
		"without stating that the answer was not found in the context.\n\nContext:\n" +
		contextText.String()

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: system,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})
	return g.complete(ctx, messages)
}

// Enumerate asks the chat model to render a numbered list of all notes.
func (g *OpenAIGenerator) Enumerate(ctx context.Context, query string, summaries []vectorstore.Summary) (string, error) {
	var titles strings.Builder
	for i, s := range summaries {
		fmt.Fprintf(&titles, "%d. %s\n", i+1, s.Title)
	}
	system := "You are a helpful AI assistant. The user has asked to list their notes. " +
		"Here are the note titles:\n" + titles.String() +
		"Respond with a numbered list of all the note titles. Do not add additional " +
		"information unless specifically asked."

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
		{Role: openai.ChatMessageRoleUser, Content: query},
	}
	return g.complete(ctx, messages)
}

// SuggestTitle proposes a short title for content, falling back to
// "Untitled Note" on any provider failure.
func (g *OpenAIGenerator) SuggestTitle(ctx context.Context, content string) string {
	out, err := g.complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "Suggest a short, descriptive title for the following note content. " +
				"Respond with the title only, no quotes.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	})
	if err != nil {
		return defaultTitle
	}
	title := strings.TrimSpace(strings.Trim(out, `"`))
	if title == "" {
		return defaultTitle
	}
	return title
}

// SuggestTags proposes tags for content, falling back to an empty list on
// any provider failure.
func (g *OpenAIGenerator) SuggestTags(ctx context.Context, content string) []string {
	out, err := g.complete(ctx, []openai.ChatCompletionMessage{
		{
			Role: openai.ChatMessageRoleSystem,
			Content: "Suggest up to five short lowercase tags for the following note content. " +
				"Respond with the tags only, comma-separated.",
		},
		{Role: openai.ChatMessageRoleUser, Content: content},
	})
	if err != nil {
		return nil
	}
	var tags []string
	for _, part := range strings.Split(out, ",") {
		if tag := strings.ToLower(strings.Trim(strings.TrimSpace(part), "#")); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (g *OpenAIGenerator) complete(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: answerTemperature,
		MaxTokens:   answerMaxTokens,
	})
	if err != nil {
		return "", &apperr.ProviderError{Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &apperr.ProviderError{Op: "chat completion", Err: fmt.Errorf("no choices returned")}
	}
	return resp.Choices[0].Message.Content, nil
}
