package ollama

import (
	"context"
	"errors"
	"time"

	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged chat message
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a non-streaming chat call
type ChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Options  map[string]any `json:"options,omitempty"`
	Stream   bool           `json:"stream"`
}

// ChatResponse is the single reply to a ChatRequest
type ChatResponse struct {
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
	Message   Message   `json:"message"`
	Done      bool      `json:"done"`
	Reason    string    `json:"done_reason,omitempty"`
}

// Chatter is what callers need from a chat completion service
type Chatter interface {
	Chat(ctx context.Context, model string, messages []Message, temperature float64) (*ChatResponse, error)
}

var _ Chatter = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Chat sends the message sequence and returns the assistant reply
func (c *Client) Chat(ctx context.Context, model string, messages []Message, temperature float64) (*ChatResponse, error) {
	if model == "" {
		model = DefaultModel
	}
	if len(messages) == 0 {
		return nil, errors.New("no messages")
	}

	req, err := client.NewJSONRequest(ChatRequest{
		Model:    model,
		Messages: messages,
		Options:  map[string]any{"temperature": temperature},
		Stream:   false,
	})
	if err != nil {
		return nil, err
	}

	var response ChatResponse
	if err := c.DoWithContext(ctx, req, &response, client.OptPath("chat")); err != nil {
		return nil, err
	}
	return &response, nil
}

// Ask is a single user turn with an optional system prompt. It returns the
// reply text.
func Ask(ctx context.Context, c Chatter, model, system, prompt string, temperature float64) (string, error) {
	messages := make([]Message, 0, 2)
	if system != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: system})
	}
	messages = append(messages, Message{Role: RoleUser, Content: prompt})

	response, err := c.Chat(ctx, model, messages, temperature)
	if err != nil {
		return "", err
	}
	return response.Message.Content, nil
}
