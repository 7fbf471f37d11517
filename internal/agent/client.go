// Package agent wraps the Anthropic Messages API behind a small collaborator
// boundary. The agent handles the language work the core engine deliberately
// avoids: turning free-text queries into structured intents, summarizing
// sampled reviews, and phrasing cross-sell suggestions.
//
// The boundary is strict: the agent receives prepared material (parsed
// intents come back through a validating decoder, summaries are generated
// from pre-sampled texts and pre-computed metrics) and its absence or
// failure never breaks a core operation. A client constructed without an API
// key is disabled; callers check Enabled and fall back to deterministic
// responses.
package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-3-5-haiku-latest"

// DefaultMaxTokens bounds every completion request.
const DefaultMaxTokens = 1000

// ErrDisabled is returned by generation methods when no API key was
// configured.
var ErrDisabled = errors.New("agent disabled: no API key")

// Client talks to the Anthropic Messages API.
type Client struct {
	api       *anthropic.Client
	model     string
	maxTokens int
}

// NewClient builds a Client. An empty apiKey yields a disabled client whose
// generation methods return ErrDisabled; an empty model selects DefaultModel.
func NewClient(apiKey, model string) *Client {
	c := &Client{model: model, maxTokens: DefaultMaxTokens}
	if c.model == "" {
		c.model = DefaultModel
	}
	if apiKey != "" {
		c.api = anthropic.NewClient(apiKey)
	}
	return c
}

// Enabled reports whether the client holds an API key.
func (c *Client) Enabled() bool { return c != nil && c.api != nil }

// complete sends a single user prompt and returns the concatenated text
// blocks of the response.
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	resp, err := c.api.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: []anthropic.MessageContent{
				{Type: "text", Text: &prompt},
			}},
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Text != nil {
			b.WriteString(*block.Text)
		}
	}
	return b.String(), nil
}
