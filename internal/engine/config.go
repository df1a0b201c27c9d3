package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Generation flows. The reduced flow sends a plain prompt with a tight output
// cap; the simple flow sends a structured message list with a larger cap.
const (
	FlowReduced = "reduced"
	FlowSimple  = "simple"
)

// LLM backends selectable via LLM_BACKEND.
const (
	BackendResponses = "responses"
	BackendChat      = "chat"
	BackendOpenAI    = "openai"
)

const (
	DefaultLLMAPIBase           = "https://api.groq.com/openai/v1"
	DefaultLLMModel             = "llama-3.3-70b-versatile"
	DefaultMaxTranscriptChars   = 12000
	DefaultTranscriptLangPrefix = "en"
)

// ErrMissingAPIKey is returned by Validate when no completion API key is set.
var ErrMissingAPIKey = errors.New("AI_API_KEY is not set")

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey            string
	LLMAPIKeyFallbacks   []string
	LLMAPIBase           string
	LLMModel             string
	LLMTemperature       float64
	LLMBackend           string
	GenerationFlow       string
	MaxTranscriptChars   int
	TranscriptLangPrefix string
	HTTPTimeout          time.Duration
	HTTPClient           *http.Client
	Completer            Completer // nil = built by Init from the fields above
}

// Validate checks the fields that have no usable default.
func (c Config) Validate() error {
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		return ErrMissingAPIKey
	}
	switch c.LLMBackend {
	case "", BackendResponses, BackendChat, BackendOpenAI:
	default:
		return fmt.Errorf("unknown LLM_BACKEND %q", c.LLMBackend)
	}
	switch c.GenerationFlow {
	case "", FlowReduced, FlowSimple:
	default:
		return fmt.Errorf("unknown GENERATION_FLOW %q", c.GenerationFlow)
	}
	if c.MaxTranscriptChars < 0 {
		return fmt.Errorf("MAX_TRANSCRIPT_CHARS must not be negative, got %d", c.MaxTranscriptChars)
	}
	return nil
}

// withDefaults fills zero-valued fields.
func (c Config) withDefaults() Config {
	if c.LLMAPIBase == "" {
		c.LLMAPIBase = DefaultLLMAPIBase
	}
	if c.LLMModel == "" {
		c.LLMModel = DefaultLLMModel
	}
	if c.LLMBackend == "" {
		c.LLMBackend = BackendResponses
	}
	if c.GenerationFlow == "" {
		c.GenerationFlow = FlowReduced
	}
	if c.MaxTranscriptChars == 0 {
		c.MaxTranscriptChars = DefaultMaxTranscriptChars
	}
	if c.TranscriptLangPrefix == "" {
		c.TranscriptLangPrefix = DefaultTranscriptLangPrefix
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.HTTPTimeout}
	}
	return c
}

var cfg = Config{}.withDefaults()

// Cfg exposes the engine configuration for sub-packages (sources, posts).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
// Call once at startup, before any request is served.
func Init(c Config) {
	c = c.withDefaults()
	if c.Completer == nil && c.LLMAPIKey != "" {
		c.Completer = NewCompleter(c)
	}
	cfg = c
	Cfg = &cfg
}
