package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	openai "github.com/sashabaranov/go-openai"
)

// CompletionRequest is one call to a completion backend.
type CompletionRequest struct {
	Prompt     string
	Structured bool // send the prompt as a one-message list instead of a plain string
	MaxTokens  int
}

// Completer is a completion backend.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Response, error)
}

// ErrRateLimited matches any *RateLimitError via errors.Is.
var ErrRateLimited = errors.New("rate limit or insufficient quota")

// RateLimitError is returned when the provider rejects a call for rate or quota reasons.
type RateLimitError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate limited (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return "rate limited: " + e.Message
}

func (e *RateLimitError) Is(target error) bool { return target == ErrRateLimited }
func (e *RateLimitError) Unwrap() error        { return e.Err }

// APIError is a non-rate-limit error status from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewCompleter builds the backend selected by c.LLMBackend.
func NewCompleter(c Config) Completer {
	c = c.withDefaults()
	switch c.LLMBackend {
	case BackendChat:
		return &chatCompleter{client: llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(SimpleFlowMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(c.HTTPClient),
		)}
	case BackendOpenAI:
		oc := openai.DefaultConfig(c.LLMAPIKey)
		oc.BaseURL = c.LLMAPIBase
		oc.HTTPClient = c.HTTPClient
		return &openaiCompleter{
			client:      openai.NewClientWithConfig(oc),
			model:       c.LLMModel,
			temperature: c.LLMTemperature,
		}
	default:
		return &responsesCompleter{
			base:        strings.TrimRight(c.LLMAPIBase, "/"),
			key:         c.LLMAPIKey,
			model:       c.LLMModel,
			temperature: c.LLMTemperature,
			httpClient:  c.HTTPClient,
		}
	}
}

// --- Responses API (raw HTTP) ---

type responsesCompleter struct {
	base        string
	key         string
	model       string
	temperature float64
	httpClient  *http.Client
}

type responsesRequest struct {
	Model           string   `json:"model"`
	Input           any      `json:"input"`
	MaxOutputTokens int      `json:"max_output_tokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

func (c *responsesCompleter) Complete(ctx context.Context, req CompletionRequest) (Response, error) {
	payload := responsesRequest{
		Model:           c.model,
		Input:           req.Prompt,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.Structured {
		payload.Input = []inputMessage{{Role: "user", Content: req.Prompt}}
	}
	if c.temperature > 0 {
		t := c.temperature
		payload.Temperature = &t
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/responses", bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("responses: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return Response{}, fmt.Errorf("responses: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return Response{}, statusError(resp.StatusCode, data)
	}
	return DecodeResponse(data), nil
}

// statusError maps an error body to *RateLimitError or *APIError.
func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var pe providerError
	if json.Unmarshal(body, &pe) == nil && pe.Error.Message != "" {
		msg = pe.Error.Message
	}
	if status == http.StatusTooManyRequests || pe.Error.Type == "insufficient_quota" || pe.Error.Code == "insufficient_quota" {
		return &RateLimitError{StatusCode: status, Message: msg}
	}
	return &APIError{StatusCode: status, Message: Preview(msg, 300)}
}

// --- Chat completions via go-kit/llm ---

type chatCompleter struct {
	client *llm.Client
}

func (c *chatCompleter) Complete(ctx context.Context, req CompletionRequest) (Response, error) {
	text, err := c.client.Complete(ctx, "", req.Prompt, llm.WithChatMaxTokens(req.MaxTokens))
	if err != nil {
		return Response{}, classifyError(err)
	}
	return Response{Kind: KindDirectText, OutputText: text, Raw: text}, nil
}

// classifyError recognizes rate-limit failures from clients that only expose
// an error message.
func classifyError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "quota") {
		return &RateLimitError{Message: err.Error(), Err: err}
	}
	return err
}

// --- Chat completions via go-openai ---

type openaiCompleter struct {
	client      *openai.Client
	model       string
	temperature float64
}

func (c *openaiCompleter) Complete(ctx context.Context, req CompletionRequest) (Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: float32(c.temperature),
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) &&
			(apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.Type == "insufficient_quota") {
			return Response{}, &RateLimitError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return Response{}, &RateLimitError{StatusCode: reqErr.HTTPStatusCode, Message: err.Error(), Err: err}
		}
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}

	out := make([]any, 0, len(resp.Choices))
	for _, ch := range resp.Choices {
		out = append(out, map[string]any{
			"type": "message",
			"role": ch.Message.Role,
			"content": []any{
				map[string]any{"type": "output_text", "text": ch.Message.Content},
			},
		})
	}
	return Response{Kind: KindStructured, Output: out, Raw: resp}, nil
}
