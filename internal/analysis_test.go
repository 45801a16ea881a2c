package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeChatClient returns a canned response or error and records the prompt
// it was called with.
type fakeChatClient struct {
	response string
	err      error
	prompt   string
	calls    int
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testTranscript() *Transcript {
	return &Transcript{Segments: []TranscriptSegment{
		{Text: "Hello", Start: 0, Duration: 1.5},
		{Text: "world", Start: 1.5, Duration: 2},
	}}
}

func TestAIAnalyzeSuccess(t *testing.T) {
	client := &fakeChatClient{
		response: `{"timestamps": [{"seconds": 0, "time": "0:00", "reason": "Opening"}]}`,
	}
	pm := NewPromptManager("", "Find highlights in: {{.Transcript}}")
	ai := NewAI(client, pm, "test-model", time.Minute)

	highlights, err := ai.Analyze(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(highlights) != 1 {
		t.Fatalf("got %d highlights, want 1", len(highlights))
	}
	if highlights[0] != (Highlight{Seconds: 0, Time: "0:00", Reason: "Opening"}) {
		t.Errorf("unexpected highlight: %+v", highlights[0])
	}
	if !strings.Contains(client.prompt, "Hello world") {
		t.Errorf("prompt does not contain joined transcript: %q", client.prompt)
	}
}

func TestAIAnalyzeFencedResponse(t *testing.T) {
	client := &fakeChatClient{
		response: "```json\n{\"timestamps\": [{\"seconds\": 30, \"time\": \"0:30\", \"reason\": \"Key point\"}]}\n```",
	}
	ai := NewAI(client, NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	highlights, err := ai.Analyze(context.Background(), testTranscript())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(highlights) != 1 || highlights[0].Seconds != 30 {
		t.Errorf("unexpected highlights: %+v", highlights)
	}
}

func TestAIAnalyzeMalformedResponse(t *testing.T) {
	client := &fakeChatClient{response: "Sure! Here are the highlights: 0:00 intro"}
	ai := NewAI(client, NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	_, err := ai.Analyze(context.Background(), testTranscript())
	classified, ok := AsPipelineError(err)
	if !ok {
		t.Fatalf("Analyze error = %v, want PipelineError", err)
	}
	if classified.Kind != FailureAnalysisMalformed {
		t.Errorf("Kind = %s, want analysis_malformed", classified.Kind)
	}
	if !strings.HasPrefix(classified.Message, "Failed to parse AI response:") {
		t.Errorf("Message = %q", classified.Message)
	}
}

func TestAIAnalyzeTimeout(t *testing.T) {
	client := &fakeChatClient{err: context.DeadlineExceeded}
	ai := NewAI(client, NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	_, err := ai.Analyze(context.Background(), testTranscript())
	classified, ok := AsPipelineError(err)
	if !ok {
		t.Fatalf("Analyze error = %v, want PipelineError", err)
	}
	if classified.Kind != FailureAnalysisTimeout {
		t.Errorf("Kind = %s, want analysis_timeout", classified.Kind)
	}
	if classified.Message != "AI request timed out. Please try again." {
		t.Errorf("Message = %q", classified.Message)
	}
}

func TestAIAnalyzeUpstreamError(t *testing.T) {
	client := &fakeChatClient{err: errors.New("connection reset")}
	ai := NewAI(client, NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	_, err := ai.Analyze(context.Background(), testTranscript())
	classified, ok := AsPipelineError(err)
	if !ok {
		t.Fatalf("Analyze error = %v, want PipelineError", err)
	}
	if classified.Kind != FailureAnalysisUpstream {
		t.Errorf("Kind = %s, want analysis_upstream_error", classified.Kind)
	}
}

func TestAIAnalyzeMissingKey(t *testing.T) {
	ai := NewAIWithKey("", DefaultOpenRouterURL,
		NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	_, err := ai.Analyze(context.Background(), testTranscript())
	classified, ok := AsPipelineError(err)
	if !ok {
		t.Fatalf("Analyze error = %v, want PipelineError", err)
	}
	if classified.Kind != FailureAnalysisUnconfigured {
		t.Errorf("Kind = %s, want analysis_unconfigured", classified.Kind)
	}
	if !strings.Contains(classified.Message, "OPENROUTER_API_KEY") {
		t.Errorf("Message = %q, should mention the env variable", classified.Message)
	}
}

func TestNewAIWithKeyConcurrentAnalyze(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "{\"timestamps\": [{\"seconds\": 0, \"time\": \"0:00\", \"reason\": \"Opening\"}]}"}}]}`)
	}))
	defer srv.Close()

	ai := NewAIWithKey("test-key", srv.URL,
		NewPromptManager("", "{{.Transcript}}"), "test-model", time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			highlights, err := ai.Analyze(context.Background(), testTranscript())
			if err != nil {
				t.Errorf("Analyze: %v", err)
				return
			}
			if len(highlights) != 1 {
				t.Errorf("got %d highlights, want 1", len(highlights))
			}
		}()
	}
	wg.Wait()
}

func TestParseHighlights(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "plain JSON",
			content: `{"timestamps": [{"seconds": 0, "time": "0:00", "reason": "a"}, {"seconds": 60, "time": "1:00", "reason": "b"}]}`,
			want:    2,
		},
		{
			name:    "fenced with language tag",
			content: "```json\n{\"timestamps\": []}\n```",
			want:    0,
		},
		{
			name:    "fenced without language tag",
			content: "```\n{\"timestamps\": [{\"seconds\": 5, \"time\": \"0:05\", \"reason\": \"x\"}]}\n```",
			want:    1,
		},
		{
			name:    "surrounding whitespace",
			content: "\n  {\"timestamps\": []}  \n",
			want:    0,
		},
		{
			name:    "prose instead of JSON",
			content: "I could not find any highlights.",
			wantErr: true,
		},
		{
			name:    "truncated JSON",
			content: `{"timestamps": [{"seconds": 0,`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseHighlights(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseHighlights succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseHighlights: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d highlights, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"```json\n{}\n```", "{}"},
		{"```\n{}\n```", "{}"},
		{"```json\n{}", "{}"},
		{"  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
