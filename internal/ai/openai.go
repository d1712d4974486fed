// Package ai talks to an OpenAI-compatible chat completions endpoint.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/oauth2"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("content generator not configured")

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Client calls the chat completions API with bearer auth
type Client struct {
	httpClient  *http.Client
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	enabled     bool
}

// Message represents a message in the conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

const systemPrompt = "You are a study coach for school students preparing for exams. Answer concisely and follow the requested output format exactly."

// NewClient creates a client. An empty apiKey yields a client whose every
// call fails with ErrNotConfigured.
func NewClient(ctx context.Context, apiKey, apiURL, model string) *Client {
	c := &Client{
		apiURL:      apiURL,
		model:       model,
		maxTokens:   1200,
		temperature: 0.7,
		enabled:     apiKey != "",
	}
	if !c.enabled {
		return c
	}

	base := &http.Client{Timeout: 60 * time.Second}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	c.httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: apiKey,
		TokenType:   "Bearer",
	}))
	c.httpClient.Timeout = base.Timeout
	return c
}

// Generate sends prompt as a single user message and returns the reply
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.enabled {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("API error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("no choices in response")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, so the text can be parsed as JSON. The fence may span one
// line or several.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	// A language tag runs up to the first space or newline.
	end := strings.IndexFunc(text, func(r rune) bool { return !isTagRune(r) })
	if end < 0 {
		return ""
	}
	if next, _ := utf8.DecodeRuneInString(text[end:]); end > 0 && unicode.IsSpace(next) {
		text = text[end:]
	}
	return strings.TrimSpace(text)
}

func isTagRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}
