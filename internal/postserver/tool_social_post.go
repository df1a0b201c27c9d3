package postserver

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"github.com/anatolykoptev/go_vidpost/internal/engine/posts"
	"github.com/anatolykoptev/go_vidpost/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSocialPost(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "social_post",
		Description: "Turn a YouTube video into a ready-to-publish social media post. Fetches the English transcript, then asks the LLM for concise platform-appropriate content (LinkedIn, X, Instagram, ...). If the video has no usable transcript the content says so; if generation fails, failed=true and content holds the error.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.SocialPostInput) (*mcp.CallToolResult, engine.SocialPostOutput, error) {
		if input.Video == "" {
			return nil, engine.SocialPostOutput{}, errors.New("video is required")
		}
		if err := throttle.Check("social_post"); err != nil {
			return nil, engine.SocialPostOutput{}, err
		}

		res, err := runVideoPost(ctx, posts.PostRequest{
			Video:    input.Video,
			Platform: toolutil.NormPlatform(input.Platform),
			Intent:   input.Intent,
		})
		if err != nil {
			return nil, engine.SocialPostOutput{}, err
		}
		return nil, engine.SocialPostOutput{
			VideoID:       string(res.VideoID),
			Platform:      res.Post.Platform,
			Content:       res.Post.Content,
			Failed:        res.Failed,
			Language:      res.Transcript.LanguageCode,
			IsGenerated:   res.Transcript.IsGenerated,
			TranscriptLen: utf8.RuneCountInString(res.Transcript.Text),
		}, nil
	})
}
