package postserver

import (
	"context"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResolveVideo(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_video",
		Description: "Normalize a YouTube video ID or URL (watch, youtu.be, shorts, embed) to its 11-character video ID. No network access.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, input engine.ResolveVideoInput) (*mcp.CallToolResult, engine.ResolveVideoOutput, error) {
		id, ok := engine.ResolveVideoID(input.Video)
		return nil, engine.ResolveVideoOutput{VideoID: string(id), Resolved: ok}, nil
	})
}
