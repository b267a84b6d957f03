// Package tts implements the speech synthesis collaborator against an
// OpenAI-compatible audio endpoint. The timing core only ever sees the
// returned clip's duration; the audio file itself is passthrough data.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/prompt2video/internal/narration"
	"github.com/ivlev/prompt2video/internal/system"
)

// Client calls a speech endpoint and writes the audio into WorkDir.
type Client struct {
	Endpoint string
	APIKey   string
	Model    string
	WorkDir  string
	Timeout  time.Duration

	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client

	// ProbeDuration defaults to ffprobe via system.GetAudioDuration.
	ProbeDuration func(path string) (float64, error)
}

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed,omitempty"`
	ResponseFormat string  `json:"response_format,omitempty"`
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) probe() func(string) (float64, error) {
	if c.ProbeDuration != nil {
		return c.ProbeDuration
	}
	return system.GetAudioDuration
}

// Synthesize implements narration.Synthesizer: it renders one chunk of text
// to an audio file and reports the file's real duration.
func (c *Client) Synthesize(ctx context.Context, text, voice string, speed float64) (narration.Clip, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(speechRequest{
		Model:          c.Model,
		Input:          text,
		Voice:          voice,
		Speed:          speed,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return narration.Clip{}, fmt.Errorf("encode speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return narration.Clip{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return narration.Clip{}, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return narration.Clip{}, fmt.Errorf("speech service returned %s: %s", resp.Status, detail)
	}

	if err := os.MkdirAll(c.WorkDir, 0755); err != nil {
		return narration.Clip{}, fmt.Errorf("create audio directory: %w", err)
	}

	path := filepath.Join(c.WorkDir, fmt.Sprintf("chunk_%s.mp3", uuid.NewString()[:8]))
	f, err := os.Create(path)
	if err != nil {
		return narration.Clip{}, fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return narration.Clip{}, fmt.Errorf("write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return narration.Clip{}, err
	}

	duration, err := c.probe()(path)
	if err != nil {
		return narration.Clip{}, fmt.Errorf("probe duration of %s: %w", path, err)
	}

	return narration.Clip{Path: path, Duration: duration}, nil
}
