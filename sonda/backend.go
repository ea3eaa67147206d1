package sonda

import "context"

// backendClient is the internal interface each research backend
// implements.
type backendClient interface {
	// call executes one research request according to the plan and
	// returns the backend's raw bundle. Failures are reported as
	// *BackendError.
	call(ctx context.Context, plan callPlan) (rawResult, error)
	// method identifies the backend for error reporting and metadata.
	method() Method
}

// callPlan is the normalized, backend-agnostic instruction set the
// client builds from a ResearchRequest.
type callPlan struct {
	Query          string
	System         string
	Model          string
	Summary        SummaryLevel
	Clarifications map[string]string
	OnProgress     func(ProgressEvent)
	RequestID      string
}

// emit delivers a progress event if a callback is attached.
func (p callPlan) emit(ev ProgressEvent) {
	if p.OnProgress != nil {
		p.OnProgress(ev)
	}
}

// rawCitation is a citation as reported by the deep-research backend,
// before offset validation. The excerpt is derived later from the
// validated offsets.
type rawCitation struct {
	Title      string
	URL        string
	StartIndex int
	EndIndex   int
}

// rawResult is a backend's raw bundle. Each backend fills only its own
// fields; the normalizer consumes the bundle once and discards it.
type rawResult struct {
	Text  string
	Model string

	// Agent pipeline.
	Trace   []string
	Sources []string

	// Deep research.
	Citations      []rawCitation
	ReasoningSteps []string
	WebSearches    []string
}
