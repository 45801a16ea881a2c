package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Analyzer identifies notable moments in a transcript.
type Analyzer interface {
	Analyze(ctx context.Context, transcript *Transcript) ([]Highlight, error)
}

// ChatClient defines the chat-completion call the analysis engine needs
// from the underlying SDK.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, model, prompt string) (string, error)
}

// OpenRouterClient wraps the official OpenAI Go SDK pointed at OpenRouter,
// which speaks the same chat-completions wire protocol.
type OpenRouterClient struct {
	client *openai.Client
}

// NewOpenRouterClient creates a chat client against the given base URL.
func NewOpenRouterClient(apiKey, baseURL string) *OpenRouterClient {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHeader("HTTP-Referer", "http://localhost:8000"),
		option.WithHeader("X-Title", "ClipGenius"),
	)
	return &OpenRouterClient{client: &client}
}

// CreateChatCompletion implements the chat completion method
func (c *OpenRouterClient) CreateChatCompletion(ctx context.Context, model, prompt string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(2048),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from model")
	}
	return resp.Choices[0].Message.Content, nil
}

// AI turns transcripts into highlight lists via a remote language model.
// The client field is set once at construction and never mutated after, so
// Analyze is safe to call from concurrent request handlers.
type AI struct {
	client        ChatClient
	promptManager *PromptManager
	model         string
	timeout       time.Duration
}

// NewAI creates an analysis engine with an explicit client, for tests.
func NewAI(client ChatClient, promptManager *PromptManager, model string, timeout time.Duration) *AI {
	return &AI{
		client:        client,
		promptManager: promptManager,
		model:         model,
		timeout:       timeout,
	}
}

// NewAIWithKey creates an analysis engine against OpenRouter. An empty key
// leaves the engine unconfigured; that only surfaces when an analysis is
// actually attempted, never at startup.
func NewAIWithKey(apiKey, baseURL string, promptManager *PromptManager, model string, timeout time.Duration) *AI {
	ai := &AI{
		promptManager: promptManager,
		model:         model,
		timeout:       timeout,
	}
	if apiKey != "" {
		ai.client = NewOpenRouterClient(apiKey, baseURL)
	}
	return ai
}

// ensureClient reports whether a chat client was configured
func (ai *AI) ensureClient() error {
	if ai.client == nil {
		return NewPipelineError(FailureAnalysisUnconfigured,
			"OpenRouter API key not configured. Please add OPENROUTER_API_KEY to your .env file.", nil)
	}
	return nil
}

// Analyze implements Analyzer. The returned highlights are passed through
// exactly as the model produced them: no sorting, no deduplication.
func (ai *AI) Analyze(ctx context.Context, transcript *Transcript) ([]Highlight, error) {
	if err := ai.ensureClient(); err != nil {
		return nil, err
	}

	prompt, err := ai.promptManager.CreatePrompt(transcript)
	if err != nil {
		return nil, fmt.Errorf("creating prompt: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, ai.timeout)
	defer cancel()

	content, err := ai.client.CreateChatCompletion(ctx, ai.model, prompt)
	if err != nil {
		return nil, classifyAnalysisError(err)
	}

	highlights, err := ParseHighlights(content)
	if err != nil {
		return nil, NewPipelineError(FailureAnalysisMalformed,
			fmt.Sprintf("Failed to parse AI response: %v", err), err)
	}

	return highlights, nil
}

// classifyAnalysisError maps SDK-level failures into the closed analysis
// taxonomy.
func classifyAnalysisError(err error) *PipelineError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewPipelineError(FailureAnalysisTimeout,
			"AI request timed out. Please try again.", err)
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return NewPipelineError(FailureAnalysisUpstream,
			fmt.Sprintf("OpenRouter API error: %s", apiErr.Message), err)
	}

	return NewPipelineError(FailureAnalysisUpstream,
		fmt.Sprintf("AI analysis failed: %v", err), err)
}

// ParseHighlights decodes the engine's raw textual output into highlights.
// One layer of fenced code block wrapping is stripped before parsing; a
// malformed structure is an error, never silently an empty list.
func ParseHighlights(content string) ([]Highlight, error) {
	var parsed struct {
		Timestamps []Highlight `json:"timestamps"`
	}

	if err := json.Unmarshal([]byte(stripCodeFence(content)), &parsed); err != nil {
		return nil, err
	}

	return parsed.Timestamps, nil
}

// stripCodeFence removes one layer of ``` wrapping, including an optional
// "json" language tag.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	parts := strings.SplitN(s, "```", 3)
	if len(parts) < 2 {
		return s
	}

	inner := strings.TrimPrefix(parts[1], "json")
	return strings.TrimSpace(inner)
}
