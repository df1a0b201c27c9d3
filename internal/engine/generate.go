package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Output caps for the two generation flows.
const (
	ReducedFlowMaxTokens = 700
	SimpleFlowMaxTokens  = 2500
)

// EmptyTranscriptMessage is returned instead of calling the endpoint when
// there is no transcript text to work from.
const EmptyTranscriptMessage = "Transcript is empty; nothing to generate content from."

// GenerationErrorMarker prefixes every failure string GenerateContent returns.
const GenerationErrorMarker = "[Completion request failed"

// RateLimitMessage is returned when the provider reports rate or quota exhaustion.
const RateLimitMessage = GenerationErrorMarker + ": rate limit or insufficient quota]"

// GenerationRequest is the input of one generation call.
type GenerationRequest struct {
	Platform   string
	Intent     string
	Transcript string
}

// IsGenerationError reports whether s is a failure string from GenerateContent.
func IsGenerationError(s string) bool {
	return strings.HasPrefix(s, GenerationErrorMarker)
}

// BuildPrompt renders the prompt and completion request for the configured flow.
func BuildPrompt(gr GenerationRequest) CompletionRequest {
	intent := strings.TrimSpace(gr.Intent)
	if intent == "" {
		intent = DefaultIntent
	}
	transcript := TruncateChars(gr.Transcript, cfg.MaxTranscriptChars)

	if cfg.GenerationFlow == FlowSimple {
		return CompletionRequest{
			Prompt:     fmt.Sprintf(simplePostPrompt, transcript, gr.Platform, intent),
			Structured: true,
			MaxTokens:  SimpleFlowMaxTokens,
		}
	}
	return CompletionRequest{
		Prompt:    fmt.Sprintf(socialPostPrompt, gr.Platform, intent, transcript),
		MaxTokens: ReducedFlowMaxTokens,
	}
}

// GenerateContent produces platform-tailored text from a transcript.
// Failures are reported in-band: the result then starts with GenerationErrorMarker.
func GenerateContent(ctx context.Context, transcript, platform, intent string) string {
	if strings.TrimSpace(transcript) == "" {
		return EmptyTranscriptMessage
	}
	slog.Info("generating content", slog.String("platform", platform))

	req := BuildPrompt(GenerationRequest{Platform: platform, Intent: intent, Transcript: transcript})
	resp, err := complete(ctx, req)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.LLMRateLimited.Add(1)
			slog.Error("completion rate limited", slog.Any("error", err))
			return RateLimitMessage
		}
		slog.Error("completion failed", slog.Any("error", err))
		return fmt.Sprintf("%s: %v]", GenerationErrorMarker, err)
	}

	text := ExtractText(resp)
	slog.Debug("content generated",
		slog.String("kind", resp.Kind.String()),
		slog.String("preview", Preview(text, 120)),
	)
	return text
}

// complete sends req through the configured Completer.
func complete(ctx context.Context, req CompletionRequest) (Response, error) {
	if cfg.Completer == nil {
		return Response{}, errors.New("completion client not configured")
	}
	metrics.LLMCalls.Add(1)
	resp, err := cfg.Completer.Complete(ctx, req)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return Response{}, err
	}
	return resp, nil
}
