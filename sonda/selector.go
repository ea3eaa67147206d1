package sonda

import (
	"strings"

	"go.uber.org/zap"
)

// Selector classifies queries into a research method by case-insensitive
// keyword matching. Selection is a pure function of the query and the
// configured keyword sets: the same query always selects the same
// method absent an explicit override.
type Selector struct {
	comprehensive []string
	technical     []string
	fallback      Method
	logger        *zap.Logger
}

// NewSelector builds a selector from the (already defaulted) config.
func NewSelector(cfg Config, logger *zap.Logger) *Selector {
	return &Selector{
		comprehensive: lowerAll(cfg.ComprehensiveKeywords),
		technical:     lowerAll(cfg.TechnicalKeywords),
		fallback:      cfg.DefaultMethod,
		logger:        logger,
	}
}

// Select returns the method to use for query. An explicit method other
// than MethodAuto is returned verbatim. Otherwise the comprehensive
// set is checked before the technical set, so a query matching both
// routes to deep research; a query matching neither returns the
// configured default.
func (s *Selector) Select(query string, explicit Method) Method {
	if explicit != "" && explicit != MethodAuto {
		return explicit
	}

	lowered := strings.ToLower(query)

	if kw, ok := matchAny(lowered, s.comprehensive); ok {
		s.logger.Debug("query classified as comprehensive",
			zap.String("keyword", kw))
		return MethodDeepResearch
	}
	if kw, ok := matchAny(lowered, s.technical); ok {
		s.logger.Debug("query classified as technical",
			zap.String("keyword", kw))
		return MethodAgents
	}

	s.logger.Debug("no keyword match, using default method",
		zap.String("method", string(s.fallback)))
	return s.fallback
}

func matchAny(lowered string, keywords []string) (string, bool) {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lowered, kw) {
			return kw, true
		}
	}
	return "", false
}

func lowerAll(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, strings.ToLower(kw))
	}
	return out
}
