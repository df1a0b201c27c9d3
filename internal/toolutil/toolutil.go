// Package toolutil provides shared helper functions for go_vidpost MCP tools.
package toolutil

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
	"golang.org/x/time/rate"
)

// ErrThrottled is returned when a tool call exceeds the configured rate.
var ErrThrottled = errors.New("too many requests, try again later")

var platformNames = map[string]string{
	"linkedin":  "LinkedIn",
	"x":         "X",
	"twitter":   "X",
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"threads":   "Threads",
	"tiktok":    "TikTok",
	"youtube":   "YouTube",
	"mastodon":  "Mastodon",
	"bluesky":   "Bluesky",
	"reddit":    "Reddit",
}

// NormPlatform canonicalizes well-known platform names ("linkedin" → "LinkedIn",
// "twitter" → "X"). Unknown names are returned trimmed but otherwise untouched;
// empty input stays empty so callers can apply their own default.
func NormPlatform(platform string) string {
	p := strings.TrimSpace(platform)
	if name, ok := platformNames[strings.ToLower(p)]; ok {
		return name
	}
	return p
}

// Throttle rejects tool calls above a fixed rate. Calls over the limit fail
// immediately; nothing is queued. A nil *Throttle allows everything.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows perMinute calls per minute with a burst of the same size.
// perMinute <= 0 disables throttling and returns nil.
func NewThrottle(perMinute int) *Throttle {
	if perMinute <= 0 {
		return nil
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)}
}

// Check returns ErrThrottled when the call for tool must be rejected.
func (t *Throttle) Check(tool string) error {
	if t == nil || t.limiter.Allow() {
		return nil
	}
	engine.IncrToolCallsRejected()
	slog.Warn("tool call throttled", slog.String("tool", tool))
	return fmt.Errorf("%s: %w", tool, ErrThrottled)
}
