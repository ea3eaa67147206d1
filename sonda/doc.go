// Package sonda routes natural-language research queries to one of two
// hosted OpenAI research backends and normalizes their responses into a
// single result schema.
//
// The agent-pipeline backend runs a multi-step chat-completion
// sequence (instruction generation, then research); the deep-research
// backend issues a single Responses API call with web search and code
// execution declared as tools. With MethodAuto the selector classifies
// the query by keyword heuristics, and a failed backend is retried
// once against the other before the request fails.
//
//	client, err := sonda.New(sonda.Config{DetectEnv: true})
//	if err != nil {
//		// missing credential
//	}
//	res, err := client.Research(ctx, sonda.ResearchRequest{
//		Query: "Analyze the competitive landscape of AI agent frameworks",
//	})
package sonda
