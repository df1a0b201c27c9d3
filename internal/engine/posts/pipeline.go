package posts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"github.com/anatolykoptev/go_vidpost/internal/engine/sources"
)

// --- Video → social post ---

// DefaultPlatform is used when the request names none.
const DefaultPlatform = "LinkedIn"

// ErrUnresolvedVideo is returned when the video reference is neither an ID nor a known URL form.
var ErrUnresolvedVideo = errors.New("invalid video reference")

// Post is generated content for one platform.
type Post struct {
	Platform string `json:"platform"`
	Content  string `json:"content"`
}

// PostRequest is one video-to-post invocation.
type PostRequest struct {
	Video    string // raw ID or URL
	Platform string
	Intent   string
}

// PostResult carries the post plus what was learned about the transcript.
type PostResult struct {
	VideoID    engine.VideoRef
	Post       Post
	Transcript sources.TranscriptResult
	Failed     bool // Post.Content is a generation error string
}

// transcriptFunc and generateFunc are swapped in tests.
var (
	transcriptFunc = sources.FetchEnglishTranscript
	generateFunc   = engine.GenerateContent
)

// RunVideoPost resolves the video, fetches its transcript and generates a post.
// Only an unresolvable reference or a cancelled context is an error; a missing
// transcript or a failed completion is reported through the post content.
func RunVideoPost(ctx context.Context, req PostRequest) (PostResult, error) {
	id, ok := engine.ResolveVideoID(req.Video)
	if !ok {
		return PostResult{}, ErrUnresolvedVideo
	}
	platform := strings.TrimSpace(req.Platform)
	if platform == "" {
		platform = DefaultPlatform
	}

	var res PostResult
	res.VideoID = id
	err := engine.TrackOperation(ctx, "video_post", 30*time.Second, func(ctx context.Context) error {
		res.Transcript = transcriptFunc(ctx, string(id))
		if err := ctx.Err(); err != nil {
			return err
		}
		if res.Transcript.Text == "" {
			slog.Info("proceeding without transcript", slog.String("id", string(id)))
		}
		content := generateFunc(ctx, res.Transcript.Text, platform, req.Intent)
		res.Post = Post{Platform: platform, Content: content}
		res.Failed = engine.IsGenerationError(content)
		return nil
	})
	if err != nil {
		return res, fmt.Errorf("video post %s: %w", id, err)
	}

	if !res.Failed && res.Transcript.Text != "" {
		engine.IncrPostsGenerated()
	}
	slog.Info("video post done",
		slog.String("id", string(id)),
		slog.String("platform", platform),
		slog.Int("transcript_chars", utf8.RuneCountInString(res.Transcript.Text)),
		slog.Bool("failed", res.Failed),
	)
	return res, nil
}
