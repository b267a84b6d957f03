// Package llm implements the script generation collaborator: a chat
// completion that returns a raw spec payload. The payload is untrusted
// until it has passed the spec validator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

const systemPrompt = `You design short narrated videos. Reply with a single JSON object:
{"durationTarget": <seconds, 80-180>,
 "scenes": [{"type": "intro|skill|summary", "start": <s>, "end": <s>,
             "narration": ["..."],
             "events": [{"t": <seconds from scene start>, "action": "move|fade|scale",
                         "duration": <s>, "from": [x,y], "to": [x,y]}]}],
 "style": {"voice": "alloy", "colors": {"primary": "#hex", "accent": "#hex"}}}
Scenes must not overlap and must cover the duration target. No prose, JSON only.`

// Client calls a chat-completions endpoint to turn a prompt into a spec.
type Client struct {
	Endpoint string
	APIKey   string
	Model    string
	Timeout  time.Duration

	HTTPClient *http.Client
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// GenerateSpec produces a validated spec from a text prompt. A structurally
// broken reply surfaces as a validation error, never as a half-trusted spec.
func (c *Client) GenerateSpec(ctx context.Context, prompt string) (*storyboard.Spec, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat service returned %s: %s", resp.Status, detail)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	spec, err := storyboard.Parse([]byte(extractJSON(parsed.Choices[0].Message.Content)))
	if err != nil {
		return nil, fmt.Errorf("model reply is not a spec: %w", err)
	}
	if err := storyboard.Validate(spec); err != nil {
		return nil, fmt.Errorf("generated spec rejected: %w", err)
	}
	return spec, nil
}

// extractJSON strips markdown code fences models like to wrap JSON in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		if i := strings.LastIndex(content, "```"); i >= 0 {
			content = content[:i]
		}
	}
	return strings.TrimSpace(content)
}
