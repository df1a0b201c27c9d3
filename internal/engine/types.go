package engine

// --- Tool input types ---

type SocialPostInput struct {
	Video    string `json:"video" jsonschema:"YouTube video ID or URL (watch, youtu.be, shorts, embed)"`
	Platform string `json:"platform,omitempty" jsonschema:"Target platform, e.g. LinkedIn, X, Instagram, Facebook (default: LinkedIn)"`
	Intent   string `json:"intent,omitempty" jsonschema:"Free-text instruction for the post, e.g. 'announce our talk, casual tone'"`
}

type VideoTranscriptInput struct {
	Video    string `json:"video" jsonschema:"YouTube video ID or URL"`
	MaxChars int    `json:"max_chars,omitempty" jsonschema:"Truncate transcript to this many characters (default: MAX_TRANSCRIPT_CHARS)"`
}

type ResolveVideoInput struct {
	Video string `json:"video" jsonschema:"YouTube video ID or URL"`
}

// --- Output types (JSON responses) ---

type SocialPostOutput struct {
	VideoID       string `json:"video_id"`
	Platform      string `json:"platform"`
	Content       string `json:"content"`
	Failed        bool   `json:"failed,omitempty"`
	Language      string `json:"transcript_language,omitempty"`
	IsGenerated   bool   `json:"transcript_auto_generated,omitempty"`
	TranscriptLen int    `json:"transcript_chars"`
}

type VideoTranscriptOutput struct {
	VideoID     string `json:"video_id"`
	Language    string `json:"language,omitempty"`
	IsGenerated bool   `json:"auto_generated,omitempty"`
	Truncated   bool   `json:"truncated,omitempty"`
	Text        string `json:"text"`
}

type ResolveVideoOutput struct {
	VideoID  string `json:"video_id,omitempty"`
	Resolved bool   `json:"resolved"`
}
