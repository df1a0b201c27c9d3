package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_vidpost/internal/engine"
)

// YouTube transcript fetching.
// Listing:  watch page ytInitialPlayerResponse → captionTracks (primary)
//           ANDROID Innertube /player → captionTracks          (fallback)
// Fetching: caption track baseUrl → timedtext XML → segments

var (
	ErrInvalidVideoID      = errors.New("invalid video id")
	ErrVideoUnavailable    = errors.New("video unavailable")
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	ErrNoTranscriptFound   = errors.New("no transcript found")
	ErrTooManyRequests     = errors.New("youtube is blocking requests from this IP")
)

// TranscriptInfo describes one caption track available for a video.
type TranscriptInfo struct {
	VideoID        string
	BaseURL        string
	LanguageCode   string
	Language       string
	IsGenerated    bool
	IsTranslatable bool
}

// Segment is one timed caption fragment. Times are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// TranscriptResult is the outcome of FetchEnglishTranscript.
// An empty Text means no usable transcript was found.
type TranscriptResult struct {
	VideoID      string
	Text         string
	LanguageCode string
	Language     string
	IsGenerated  bool
	Segments     int
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

// ListTranscripts returns the caption tracks of a video in the order YouTube
// reports them. Tries the watch page first and the ANDROID player on failure.
func ListTranscripts(ctx context.Context, videoID string) ([]TranscriptInfo, error) {
	if !engine.IsVideoID(videoID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidVideoID, videoID)
	}

	tracks, err := listViaWatchPage(ctx, videoID)
	if err == nil {
		return tracks, nil
	}
	slog.Warn("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	resp, perr := postPlayerANDROID(ctx, videoID)
	if perr != nil {
		return nil, errors.Join(err, perr)
	}
	return tracksFromPlayer(videoID, resp)
}

func listViaWatchPage(ctx context.Context, videoID string) ([]TranscriptInfo, error) {
	body, err := getWatchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	idx := bytes.Index(body, []byte(ytInitialPlayerResponseMarker))
	if idx < 0 {
		if bytes.Contains(body, []byte(`class="g-recaptcha"`)) {
			return nil, ErrTooManyRequests
		}
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return tracksFromPlayer(videoID, playerResp)
}

// tracksFromPlayer maps a player response to track infos, turning playability
// and caption problems into typed errors.
func tracksFromPlayer(videoID string, resp innertubePlayerResp) ([]TranscriptInfo, error) {
	if ps := resp.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
		switch ps.Status {
		case "ERROR", "UNPLAYABLE":
			return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, ps.Reason)
		default:
			return nil, fmt.Errorf("playability %s: %s", ps.Status, ps.Reason)
		}
	}
	if resp.Captions == nil || len(resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks) == 0 {
		return nil, ErrTranscriptsDisabled
	}

	tracks := resp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	infos := make([]TranscriptInfo, 0, len(tracks))
	for _, t := range tracks {
		infos = append(infos, TranscriptInfo{
			VideoID:        videoID,
			BaseURL:        t.BaseURL,
			LanguageCode:   t.LanguageCode,
			Language:       t.Name.String(),
			IsGenerated:    t.Kind == "asr",
			IsTranslatable: t.IsTranslatable,
		})
	}
	return infos, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Such tracks usually come back empty when fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// FetchTranscript downloads and parses one caption track.
func FetchTranscript(ctx context.Context, info TranscriptInfo) ([]Segment, error) {
	if info.BaseURL == "" {
		return nil, errors.New("caption track has no URL")
	}
	body, err := getTimedText(ctx, info.BaseURL)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if needsPoToken(info.BaseURL) {
			return nil, errors.New("empty timedtext response: track requires PoToken")
		}
		return nil, errors.New("empty timedtext response")
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) ([]Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]Segment, 0, len(tt.Lines)+len(tt.Paras))
	for _, line := range tt.Lines {
		if text := engine.CleanCaption(line.Text); text != "" {
			segs = append(segs, Segment{Text: text, Start: line.Start, Duration: line.Dur})
		}
	}
	for _, p := range tt.Paras {
		raw := p.Text
		if len(p.Segs) > 0 {
			parts := make([]string, 0, len(p.Segs))
			for _, s := range p.Segs {
				parts = append(parts, s.Text)
			}
			raw = strings.Join(parts, "")
		}
		if text := engine.CleanCaption(raw); text != "" {
			segs = append(segs, Segment{
				Text:     text,
				Start:    float64(p.T) / 1000,
				Duration: float64(p.D) / 1000,
			})
		}
	}
	return segs, nil
}

// FilterLanguage keeps the tracks whose language code starts with prefix,
// preserving order.
func FilterLanguage(tracks []TranscriptInfo, prefix string) ([]TranscriptInfo, error) {
	var out []TranscriptInfo
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, prefix) {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w for language %q", ErrNoTranscriptFound, prefix)
	}
	return out, nil
}

// JoinSegments concatenates segment texts with single spaces.
func JoinSegments(segs []Segment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
}

// FetchEnglishTranscript returns the first non-empty transcript among the
// video's tracks whose language code starts with the configured prefix
// ("en" by default), trying them in listing order. Every failure is logged
// and yields an empty Text; the caller never sees an error.
func FetchEnglishTranscript(ctx context.Context, videoID string) TranscriptResult {
	engine.IncrTranscriptRequests()
	result := TranscriptResult{VideoID: videoID}

	tracks, err := ListTranscripts(ctx, videoID)
	if err != nil {
		engine.IncrTranscriptFailures()
		slog.Warn("youtube: transcript not available",
			slog.String("id", videoID), slog.Any("err", err))
		return result
	}

	prefix := engine.Cfg.TranscriptLangPrefix
	candidates, err := FilterLanguage(tracks, prefix)
	if err != nil {
		engine.IncrTranscriptFailures()
		slog.Warn("youtube: transcript not available",
			slog.String("id", videoID), slog.Any("err", err))
		return result
	}
	for _, track := range candidates {
		engine.IncrCaptionTracksTried()
		segs, err := FetchTranscript(ctx, track)
		if err != nil {
			slog.Warn("youtube: caption track failed",
				slog.String("id", videoID),
				slog.String("lang", track.LanguageCode),
				slog.Any("err", err))
			continue
		}
		text := strings.TrimSpace(JoinSegments(segs))
		if text == "" {
			continue
		}
		result.Text = text
		result.LanguageCode = track.LanguageCode
		result.Language = track.Language
		result.IsGenerated = track.IsGenerated
		result.Segments = len(segs)
		return result
	}

	engine.IncrTranscriptFailures()
	slog.Warn("youtube: no usable transcript",
		slog.String("id", videoID),
		slog.Int("candidates", len(candidates)))
	return result
}
