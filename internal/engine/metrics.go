package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	TranscriptRequests atomic.Int64
	TranscriptFailures atomic.Int64
	CaptionTracksTried atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	LLMRateLimited     atomic.Int64
	PostsGenerated     atomic.Int64
	ToolCallsRejected  atomic.Int64
}

var metricKeys = []string{
	"transcript_requests", "transcript_failures", "caption_tracks_tried",
	"llm_calls", "llm_errors", "llm_rate_limited",
	"posts_generated", "tool_calls_rejected",
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"transcript_failures":  metrics.TranscriptFailures.Load(),
		"caption_tracks_tried": metrics.CaptionTracksTried.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"llm_rate_limited":     metrics.LLMRateLimited.Load(),
		"posts_generated":      metrics.PostsGenerated.Load(),
		"tool_calls_rejected":  metrics.ToolCallsRejected.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	for _, k := range metricKeys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptFailures() { metrics.TranscriptFailures.Add(1) }
func IncrCaptionTracksTried() { metrics.CaptionTracksTried.Add(1) }
func IncrPostsGenerated()     { metrics.PostsGenerated.Add(1) }
func IncrToolCallsRejected()  { metrics.ToolCallsRejected.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
