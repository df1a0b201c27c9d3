// go_vidpost turns a YouTube video into a social media post.
//
// CLI mode fetches the video's English transcript, asks an OpenAI-compatible
// LLM (Groq by default) for platform-tailored content and prints it.
// With -serve it runs as an MCP server exposing social_post, video_transcript
// and resolve_video.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"github.com/anatolykoptev/go_vidpost/internal/engine/posts"
	"github.com/anatolykoptev/go_vidpost/internal/postserver"
	"github.com/anatolykoptev/go_vidpost/internal/toolutil"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var version = "dev"

const defaultVideo = "Zxs7Rf2rWxc"

func main() {
	video := flag.String("video", defaultVideo, "YouTube video ID or URL")
	platform := flag.String("platform", posts.DefaultPlatform, "target platform (LinkedIn, X, Instagram, ...)")
	intent := flag.String("intent", "", "free-text instruction for the post")
	serve := flag.Bool("serve", false, "run as MCP server instead of generating one post")
	render := flag.Bool("render", false, "render the post as markdown in the terminal")
	flag.Parse()

	envErr := godotenv.Load()
	closeLog := setupLogging()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		slog.Warn(".env load failed", slog.Any("error", envErr))
	}

	initEngine()

	var code int
	if *serve {
		code = runServer()
	} else {
		code = runCLI(context.Background(), *video, *platform, *intent, *render)
	}
	closeLog()
	os.Exit(code)
}

func initEngine() {
	c := engine.Config{
		LLMAPIKey:            env.Str("AI_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("AI_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("AI_API_BASE", engine.DefaultLLMAPIBase),
		LLMModel:             env.Str("AI_MODEL", engine.DefaultLLMModel),
		LLMTemperature:       env.Float("AI_TEMPERATURE", 0),
		LLMBackend:           env.Str("LLM_BACKEND", engine.BackendResponses),
		GenerationFlow:       env.Str("GENERATION_FLOW", engine.FlowReduced),
		MaxTranscriptChars:   env.Int("MAX_TRANSCRIPT_CHARS", engine.DefaultMaxTranscriptChars),
		TranscriptLangPrefix: env.Str("TRANSCRIPT_LANG_PREFIX", engine.DefaultTranscriptLangPrefix),
		HTTPTimeout:          env.Duration("HTTP_TIMEOUT", 60*time.Second),
	}
	if err := c.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	c.HTTPClient = &http.Client{
		Timeout: c.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     60 * time.Second,
		},
	}

	engine.Init(c)
	slog.Debug("engine initialized",
		slog.String("backend", engine.Cfg.LLMBackend),
		slog.String("model", engine.Cfg.LLMModel),
		slog.String("flow", engine.Cfg.GenerationFlow),
	)
}

// runVideoPost and serveMCP are swapped in tests.
var (
	runVideoPost = posts.RunVideoPost
	serveMCP     = mcpserver.Run
)

// runCLI prints one post and returns the exit code: 2 for an unresolvable
// video reference, 1 for a failed generation.
func runCLI(ctx context.Context, video, platform, intent string, render bool) int {
	res, err := runVideoPost(ctx, posts.PostRequest{
		Video:    video,
		Platform: toolutil.NormPlatform(platform),
		Intent:   intent,
	})
	if errors.Is(err, posts.ErrUnresolvedVideo) {
		fmt.Fprintf(os.Stderr, "%v: %q\n", err, video)
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	out := res.Post.Content
	if render && !res.Failed {
		out = renderMarkdown(out)
	}
	fmt.Println(out)
	if res.Failed {
		return 1
	}
	return 0
}

func runServer() int {
	mcpPort := env.Str("MCP_PORT", "8892")
	slog.Info("starting go_vidpost", slog.String("port", mcpPort))

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_vidpost",
		Version: version,
	}, nil)

	n := postserver.RegisterTools(server, env.Int("TOOL_RATE_PER_MIN", 30))
	slog.Info("tools registered", slog.Int("count", n))

	if err := serveMCP(server, mcpserver.Config{
		Name:         "go_vidpost",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 180 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
		return 1
	}
	return 0
}
