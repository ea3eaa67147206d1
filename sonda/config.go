package sonda

import (
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Default keyword sets for the auto selector. Queries matching the
// comprehensive set route to the deep-research backend, queries
// matching the technical set route to the agent pipeline. Both sets
// can be overridden in Config.
var (
	DefaultComprehensiveKeywords = []string{
		"landscape", "comprehensive", "current state", "overview",
		"compare", "analysis", "trends", "future",
	}
	DefaultTechnicalKeywords = []string{
		"how to", "implement", "specific", "technical", "which", "best",
	}
)

const (
	defaultResearchModel     = "gpt-4o"
	defaultAuxModel          = "gpt-4o-mini"
	defaultDeepResearchModel = "o3-deep-research-2025-06-26"
	defaultTimeout           = 600 * time.Second
)

// Config holds the credential and client-wide knobs. Construct it once
// at process start and pass it to New; there is no hidden process-wide
// state beyond the credential read from the environment.
type Config struct {
	// APIKey is the OpenAI API key, shared by both backends. Falls
	// back to env OPENAI_API_KEY if empty and DetectEnv is true. The
	// key is never logged.
	APIKey string

	// ResearchModel runs the agent pipeline's research step.
	ResearchModel string
	// AuxModel runs the pipeline's auxiliary agents (instruction
	// generation, clarification folding).
	AuxModel string
	// DeepResearchModel is the hosted deep-research model.
	DeepResearchModel string

	// DefaultMethod is returned by the selector when neither keyword
	// set matches. Defaults to MethodAgents for lower latency.
	DefaultMethod Method

	// Keyword sets driving auto selection. Defaults above apply when
	// nil. An empty non-nil slice disables that set.
	ComprehensiveKeywords []string
	TechnicalKeywords     []string

	// Timeout bounds each backend call unless a request overrides it.
	Timeout time.Duration

	// BaseURL optionally points both backends at a custom endpoint.
	BaseURL string

	// HTTPClient is shared by both backends when set.
	HTTPClient *http.Client

	// Logger defaults to zap.NewNop().
	Logger *zap.Logger

	// DetectEnv pulls a missing APIKey from OPENAI_API_KEY.
	DetectEnv bool
}

// withDefaults returns a copy with zero fields filled in. DetectEnv is
// resolved here so the environment is read exactly once.
func (c Config) withDefaults() Config {
	if c.DetectEnv && c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.ResearchModel == "" {
		c.ResearchModel = defaultResearchModel
	}
	if c.AuxModel == "" {
		c.AuxModel = defaultAuxModel
	}
	if c.DeepResearchModel == "" {
		c.DeepResearchModel = defaultDeepResearchModel
	}
	if c.DefaultMethod == "" || c.DefaultMethod == MethodAuto {
		c.DefaultMethod = MethodAgents
	}
	if c.ComprehensiveKeywords == nil {
		c.ComprehensiveKeywords = DefaultComprehensiveKeywords
	}
	if c.TechnicalKeywords == nil {
		c.TechnicalKeywords = DefaultTechnicalKeywords
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// validate reports fatal configuration problems. Called by New before
// any request is attempted.
func (c Config) validate() error {
	if c.APIKey == "" {
		return &ConfigError{Field: "APIKey", Cause: ErrMissingAPIKey}
	}
	switch c.DefaultMethod {
	case MethodAgents, MethodDeepResearch:
	default:
		return &ConfigError{Field: "DefaultMethod", Cause: ErrUnknownMethod}
	}
	return nil
}
