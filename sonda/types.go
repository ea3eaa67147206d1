package sonda

import "time"

// Method identifies which research backend to use.
type Method string

const (
	// MethodAuto lets the selector classify the query and pick a backend.
	MethodAuto Method = "auto"
	// MethodAgents routes to the agent-pipeline backend: a multi-step
	// chat-completion sequence (instruction generation, then research).
	MethodAgents Method = "openai_agents"
	// MethodDeepResearch routes to the hosted deep-research backend
	// (Responses API with web search and code execution).
	MethodDeepResearch Method = "deep_research"
)

// SummaryLevel controls the reasoning-summary verbosity requested from
// the deep-research backend.
type SummaryLevel string

const (
	SummaryAuto     SummaryLevel = "auto"
	SummaryDetailed SummaryLevel = "detailed"
	// SummaryNone skips the reasoning-summary request entirely.
	SummaryNone SummaryLevel = "none"
)

// Citation is a reference from the report text back to a source.
// StartIndex/EndIndex are byte offsets into UnifiedResult.Result and
// always satisfy 0 <= StartIndex <= EndIndex <= len(Result).
type Citation struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Excerpt    string `json:"excerpt"`
}

// ResearchRequest is the unified request for a single research call.
type ResearchRequest struct {
	// Query is the research question or topic. Required.
	Query string

	// Method forces a specific backend. MethodAuto (or empty) lets the
	// keyword selector decide.
	Method Method

	// Model overrides the configured model for the chosen backend. The
	// override is not carried into a fallback attempt: a model valid
	// for one backend is generally invalid for the other, so the
	// fallback backend runs its configured default.
	Model string

	// System overrides the default research system message.
	System string

	// Summary sets the reasoning-summary verbosity for the
	// deep-research backend. Defaults to SummaryAuto.
	Summary SummaryLevel

	// Clarifications are optional answers to scoping questions; the
	// agent pipeline folds them into its instruction-generation step.
	Clarifications map[string]string

	// Timeout bounds each backend call for this request. Zero means
	// the client-wide Config.Timeout applies.
	Timeout time.Duration

	// OnProgress, if set, receives best-effort progress events while
	// the request runs. The callback is invoked synchronously.
	OnProgress func(ProgressEvent)
}

// ProgressStage identifies what a ProgressEvent describes.
type ProgressStage string

const (
	// StageAgentSwitch is emitted when the agent pipeline hands off to
	// the next agent. Agent carries the agent name.
	StageAgentSwitch ProgressStage = "agent_switch"
	// StageDegraded is emitted when the deep-research backend retries
	// without reasoning summaries after an organization-verification
	// rejection.
	StageDegraded ProgressStage = "degraded"
	// StageFallback is emitted when the primary backend failed and the
	// other backend is being tried.
	StageFallback ProgressStage = "fallback"
)

// ProgressEvent is a best-effort notification about request progress.
type ProgressEvent struct {
	Stage  ProgressStage
	Agent  string
	Detail string
}

// UnifiedResult is the normalized, backend-agnostic response record.
type UnifiedResult struct {
	// Query echoes the input query.
	Query string `json:"query"`
	// MethodUsed is the backend that actually produced the result. If
	// a fallback occurred this is the fallback method, not the one
	// originally selected.
	MethodUsed Method `json:"method_used"`
	// Result is the report text.
	Result string `json:"result"`
	// Metadata carries method-specific counters and lists under the
	// stable Meta* key names.
	Metadata map[string]any `json:"metadata"`
	// RequestID is a unique identifier assigned to this request and
	// carried through logs.
	RequestID string `json:"request_id"`
}

// Stable metadata key names. Counter keys are present for every
// method so callers can read them uniformly; list keys are populated
// only where the backend produces them.
const (
	MetaModel              = "model"
	MetaApproach           = "approach"
	MetaCitations          = "citations"
	MetaCitationCount      = "citation_count"
	MetaDiscardedCitations = "discarded_citations"
	MetaSources            = "sources"
	MetaSourceCount        = "source_count"
	MetaAgentTrace         = "agent_trace"
	MetaAgentTraceLen      = "agent_trace_len"
	MetaWebSearches        = "web_searches"
	MetaWebSearchCount     = "web_search_count"
	MetaReasoningStepCount = "reasoning_step_count"
)

// Approach values stored under MetaApproach.
const (
	approachAgents       = "agent_orchestration"
	approachDeepResearch = "native_deep_research"
)
