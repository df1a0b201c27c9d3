package postserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"github.com/anatolykoptev/go_vidpost/internal/engine/posts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the English transcript of a YouTube video as plain text, truncated to max_chars. Returns an error when the video has no usable English captions.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoTranscriptInput) (*mcp.CallToolResult, engine.VideoTranscriptOutput, error) {
		id, ok := engine.ResolveVideoID(input.Video)
		if !ok {
			return nil, engine.VideoTranscriptOutput{}, fmt.Errorf("%w: %q", posts.ErrUnresolvedVideo, input.Video)
		}
		if err := throttle.Check("video_transcript"); err != nil {
			return nil, engine.VideoTranscriptOutput{}, err
		}

		tr := fetchTranscript(ctx, string(id))
		if tr.Text == "" {
			return nil, engine.VideoTranscriptOutput{}, errors.New("transcript not available")
		}
		limit := input.MaxChars
		if limit <= 0 {
			limit = engine.Cfg.MaxTranscriptChars
		}
		text := engine.TruncateChars(tr.Text, limit)
		return nil, engine.VideoTranscriptOutput{
			VideoID:     string(id),
			Language:    tr.LanguageCode,
			IsGenerated: tr.IsGenerated,
			Truncated:   text != tr.Text,
			Text:        text,
		}, nil
	})
}
