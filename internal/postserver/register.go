package postserver

import (
	"github.com/anatolykoptev/go_vidpost/internal/engine/posts"
	"github.com/anatolykoptev/go_vidpost/internal/engine/sources"
	"github.com/anatolykoptev/go_vidpost/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// throttle guards the tools that reach YouTube or the completion provider.
var throttle *toolutil.Throttle

// runVideoPost and fetchTranscript are swapped in tests.
var (
	runVideoPost    = posts.RunVideoPost
	fetchTranscript = sources.FetchEnglishTranscript
)

// RegisterTools registers the video tools on the given MCP server:
// social_post, video_transcript, resolve_video.
// perMinute caps calls to the network-bound tools; 0 disables the cap.
func RegisterTools(server *mcp.Server, perMinute int) int {
	throttle = toolutil.NewThrottle(perMinute)
	registerSocialPost(server)
	registerVideoTranscript(server)
	registerResolveVideo(server)
	return 3
}
