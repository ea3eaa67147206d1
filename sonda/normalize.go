package sonda

// normalize maps a backend's raw bundle into the unified result
// record. It is pure: same inputs always produce the same result, and
// it performs no I/O. Citations with offsets that do not fit the
// report text are dropped and counted under MetaDiscardedCitations.
func normalize(raw rawResult, method Method, query, requestID string) UnifiedResult {
	citations, discarded := validateCitations(raw.Citations, raw.Text)

	metadata := map[string]any{
		MetaModel:              raw.Model,
		MetaCitationCount:      len(citations),
		MetaDiscardedCitations: discarded,
		MetaSourceCount:        len(raw.Sources),
		MetaAgentTraceLen:      len(raw.Trace),
		MetaWebSearchCount:     len(raw.WebSearches),
		MetaReasoningStepCount: len(raw.ReasoningSteps),
	}

	switch method {
	case MethodAgents:
		metadata[MetaApproach] = approachAgents
		metadata[MetaAgentTrace] = append([]string(nil), raw.Trace...)
		metadata[MetaSources] = append([]string(nil), raw.Sources...)
	case MethodDeepResearch:
		metadata[MetaApproach] = approachDeepResearch
		metadata[MetaCitations] = citations
		metadata[MetaWebSearches] = append([]string(nil), raw.WebSearches...)
	}

	return UnifiedResult{
		Query:      query,
		MethodUsed: method,
		Result:     raw.Text,
		Metadata:   metadata,
		RequestID:  requestID,
	}
}

// validateCitations keeps citations whose offsets satisfy
// 0 <= start <= end <= len(text) and derives each excerpt from the
// validated range. Malformed entries are dropped silently; only their
// count is reported.
func validateCitations(raw []rawCitation, text string) ([]Citation, int) {
	citations := make([]Citation, 0, len(raw))
	discarded := 0
	for _, rc := range raw {
		if rc.StartIndex < 0 || rc.StartIndex > rc.EndIndex || rc.EndIndex > len(text) {
			discarded++
			continue
		}
		citations = append(citations, Citation{
			Title:      rc.Title,
			URL:        rc.URL,
			StartIndex: rc.StartIndex,
			EndIndex:   rc.EndIndex,
			Excerpt:    text[rc.StartIndex:rc.EndIndex],
		})
	}
	return citations, discarded
}
