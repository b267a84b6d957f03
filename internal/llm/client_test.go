package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const goodSpecJSON = `{
  "durationTarget": 90,
  "scenes": [
    {"type": "intro", "start": 0, "end": 30, "narration": ["Hello"], "events": []},
    {"type": "summary", "start": 30, "end": 90, "narration": ["Bye"], "events": []}
  ],
  "style": {"voice": "alloy", "colors": {"primary": "#112233"}}
}`

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reply := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(reply)
	}))
}

func TestGenerateSpec(t *testing.T) {
	server := chatServer(t, goodSpecJSON)
	defer server.Close()

	c := &Client{Endpoint: server.URL, Model: "gpt-4o-mini"}
	spec, err := c.GenerateSpec(context.Background(), "a video about Go")
	if err != nil {
		t.Fatalf("GenerateSpec failed: %v", err)
	}
	if spec.DurationTarget != 90 || len(spec.Scenes) != 2 {
		t.Errorf("unexpected spec: %+v", spec)
	}
}

func TestGenerateSpecUnwrapsCodeFence(t *testing.T) {
	server := chatServer(t, "```json\n"+goodSpecJSON+"\n```")
	defer server.Close()

	c := &Client{Endpoint: server.URL}
	if _, err := c.GenerateSpec(context.Background(), "prompt"); err != nil {
		t.Fatalf("fenced JSON should parse: %v", err)
	}
}

func TestGenerateSpecRejectsInvalid(t *testing.T) {
	// Structurally parseable but violates the duration invariant.
	bad := `{"durationTarget": 50, "scenes": [{"type":"intro","start":0,"end":30,"narration":[],"events":[]}], "style": {"voice":"alloy","colors":{"primary":"#000"}}}`
	server := chatServer(t, bad)
	defer server.Close()

	c := &Client{Endpoint: server.URL}
	if _, err := c.GenerateSpec(context.Background(), "prompt"); err == nil {
		t.Fatal("invalid generated spec must be rejected")
	}
}

func TestGenerateSpecServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := &Client{Endpoint: server.URL}
	if _, err := c.GenerateSpec(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a": 1}`, `{"a": 1}`},
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
	}
	for i, tt := range tests {
		if got := extractJSON(tt.in); got != tt.want {
			t.Errorf("case %d: got %q, want %q", i, got, tt.want)
		}
	}
}
