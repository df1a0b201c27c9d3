package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVideoID = "Zxs7Rf2rWxc"

// fakeYouTube serves a watch page, the Innertube player and timedtext tracks.
type fakeYouTube struct {
	watchPlayer  string            // ytInitialPlayerResponse JSON; "" = page without it
	androidReply string            // /player JSON body; "" = HTTP 500
	tracks       map[string]string // lang → timedtext body; missing = HTTP 404
	playerCalls  atomic.Int32
	trackCalls   atomic.Int32
	watchHeader  atomic.Pointer[http.Header]
}

func (f *fakeYouTube) start(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			h := r.Header.Clone()
			f.watchHeader.Store(&h)
			if f.watchPlayer == "" {
				_, _ = io.WriteString(w, `<html><body>consent</body></html>`)
				return
			}
			fmt.Fprintf(w, `<html><script>var ytInitialPlayerResponse = %s;var meta = {};</script></html>`, f.watchPlayer)
		case "/youtubei/v1/player":
			f.playerCalls.Add(1)
			if f.androidReply == "" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = io.WriteString(w, f.androidReply)
		case "/api/timedtext":
			f.trackCalls.Add(1)
			body, ok := f.tracks[r.URL.Query().Get("lang")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = io.WriteString(w, body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	prevWatch, prevPlayer := ytWatchURL, ytInnertubeURL
	ytWatchURL = srv.URL + "/watch"
	ytInnertubeURL = srv.URL + "/youtubei/v1/player"
	t.Cleanup(func() {
		ytWatchURL, ytInnertubeURL = prevWatch, prevPlayer
		srv.Close()
	})
	return srv
}

func playerJSON(base string, langs ...string) string {
	var tracks []string
	for _, l := range langs {
		kind := ""
		if strings.HasSuffix(l, "-asr") {
			l = strings.TrimSuffix(l, "-asr")
			kind = `,"kind":"asr"`
		}
		tracks = append(tracks, fmt.Sprintf(
			`{"baseUrl":"%s/api/timedtext?v=%s\u0026lang=%s","languageCode":"%s","name":{"simpleText":"Lang %s"}%s}`,
			base, testVideoID, l, l, l, kind))
	}
	return fmt.Sprintf(`{"playabilityStatus":{"status":"OK"},"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[%s]}}}`,
		strings.Join(tracks, ","))
}

const legacyXML = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.2">Hello &amp;amp; welcome</text>
<text start="1.7" dur="2">to the &lt;i&gt;show&lt;/i&gt;</text>
<text start="3.7" dur="1"></text>
</transcript>`

const format3XML = `<?xml version="1.0" encoding="utf-8" ?><timedtext format="3"><body>
<p t="1000" d="2500"><s>auto</s><s> captions</s></p>
<p t="3500" d="1000">here</p>
</body></timedtext>`

func TestParseTimedText(t *testing.T) {
	segs, err := parseTimedText([]byte(legacyXML))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "Hello & welcome", Start: 0.5, Duration: 1.2}, segs[0])
	assert.Equal(t, "to the show", segs[1].Text)

	segs, err = parseTimedText([]byte(format3XML))
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "auto captions", Start: 1, Duration: 2.5}, segs[0])
	assert.Equal(t, "here", segs[1].Text)

	_, err = parseTimedText([]byte("<transcript><text>unclosed"))
	assert.Error(t, err)
}

func TestListTranscripts(t *testing.T) {
	f := &fakeYouTube{}
	srv := f.start(t)
	f.watchPlayer = playerJSON(srv.URL, "de", "en-asr", "en-GB")

	tracks, err := ListTranscripts(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, tracks, 3)
	assert.Equal(t, "de", tracks[0].LanguageCode)
	assert.Equal(t, "en", tracks[1].LanguageCode)
	assert.True(t, tracks[1].IsGenerated)
	assert.Equal(t, "Lang en-GB", tracks[2].Language)
	assert.Contains(t, tracks[2].BaseURL, "lang=en-GB")
	assert.Zero(t, f.playerCalls.Load(), "player fallback must not run when the page works")
}

func TestListTranscripts_BrowserHeaders(t *testing.T) {
	f := &fakeYouTube{}
	srv := f.start(t)
	f.watchPlayer = playerJSON(srv.URL, "en")

	_, err := ListTranscripts(context.Background(), testVideoID)
	require.NoError(t, err)
	h := f.watchHeader.Load()
	require.NotNil(t, h)
	assert.NotEmpty(t, h.Get("User-Agent"))
	assert.Contains(t, h.Get("Accept"), "text/html")
	assert.Equal(t, "en-US,en;q=0.9", h.Get("Accept-Language"))
	assert.NotContains(t, h.Get("Accept-Encoding"), "br")
}

func TestListTranscripts_PlayerFallback(t *testing.T) {
	f := &fakeYouTube{}
	srv := f.start(t)
	f.androidReply = playerJSON(srv.URL, "en")

	tracks, err := ListTranscripts(context.Background(), testVideoID)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.EqualValues(t, 1, f.playerCalls.Load())
}

func TestListTranscripts_Errors(t *testing.T) {
	tests := []struct {
		name    string
		videoID string
		watch   string
		android string
		wantErr error
	}{
		{
			name:    "invalid id",
			videoID: "short",
			wantErr: ErrInvalidVideoID,
		},
		{
			name:    "captions disabled",
			videoID: testVideoID,
			watch:   `{"playabilityStatus":{"status":"OK"}}`,
			android: `{"playabilityStatus":{"status":"OK"}}`,
			wantErr: ErrTranscriptsDisabled,
		},
		{
			name:    "video unavailable",
			videoID: testVideoID,
			watch:   `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`,
			android: `{"playabilityStatus":{"status":"ERROR","reason":"Video unavailable"}}`,
			wantErr: ErrVideoUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeYouTube{watchPlayer: tt.watch, androidReply: tt.android}
			f.start(t)

			_, err := ListTranscripts(context.Background(), tt.videoID)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFilterLanguage(t *testing.T) {
	tracks := []TranscriptInfo{{LanguageCode: "fr"}, {LanguageCode: "en-US"}, {LanguageCode: "es"}, {LanguageCode: "en"}}

	got, err := FilterLanguage(tracks, "en")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "en-US", got[0].LanguageCode)
	assert.Equal(t, "en", got[1].LanguageCode)

	_, err = FilterLanguage(tracks, "ja")
	assert.ErrorIs(t, err, ErrNoTranscriptFound)
}

func TestFetchEnglishTranscript(t *testing.T) {
	f := &fakeYouTube{tracks: map[string]string{
		"de":    legacyXML,
		"en-GB": format3XML,
		"en":    legacyXML,
	}}
	srv := f.start(t)
	f.watchPlayer = playerJSON(srv.URL, "de", "en-GB", "en")

	res := FetchEnglishTranscript(context.Background(), testVideoID)
	assert.Equal(t, "auto captions here", res.Text)
	assert.Equal(t, "en-GB", res.LanguageCode)
	assert.Equal(t, 2, res.Segments)
	assert.EqualValues(t, 1, f.trackCalls.Load(), "stops at the first non-empty transcript")
}

func TestFetchEnglishTranscript_ContinuesPastFailures(t *testing.T) {
	f := &fakeYouTube{tracks: map[string]string{
		"en-US": `<transcript><text start="0" dur="1">   </text></transcript>`,
		"en":    legacyXML,
	}}
	srv := f.start(t)
	// en-AU is missing from tracks → HTTP 404; en-US parses to nothing.
	f.watchPlayer = playerJSON(srv.URL, "en-AU", "en-US", "en-asr")

	res := FetchEnglishTranscript(context.Background(), testVideoID)
	assert.Equal(t, "Hello & welcome to the show", res.Text)
	assert.Equal(t, "en", res.LanguageCode)
	assert.True(t, res.IsGenerated)
	assert.EqualValues(t, 3, f.trackCalls.Load())
}

func TestFetchEnglishTranscript_Unavailable(t *testing.T) {
	tests := []struct {
		name  string
		watch func(base string) string
	}{
		{"no english track", func(base string) string { return playerJSON(base, "de", "fr") }},
		{"all tracks fail", func(base string) string { return playerJSON(base, "en") }},
		{"captions disabled", func(string) string { return `{"playabilityStatus":{"status":"OK"}}` }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeYouTube{tracks: map[string]string{"de": legacyXML}}
			srv := f.start(t)
			f.watchPlayer = tt.watch(srv.URL)

			res := FetchEnglishTranscript(context.Background(), testVideoID)
			assert.Empty(t, res.Text)
			assert.Equal(t, testVideoID, res.VideoID)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", `{"a":1};rest`, `{"a":1}`},
		{"nested", `{"a":{"b":{}}} tail`, `{"a":{"b":{}}}`},
		{"brace in string", `{"a":"}{"}x`, `{"a":"}{"}`},
		{"escaped quote", `{"a":"say \"}\""}x`, `{"a":"say \"}\""}`},
		{"escaped backslash", `{"a":"c:\\"}x`, `{"a":"c:\\"}`},
		{"not an object", `[1,2]`, ""},
		{"unterminated", `{"a":1`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.in))))
		})
	}
}
