package sonda

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Agent names as they appear in the trace.
const (
	agentClarifying  = "Query Clarification Agent"
	agentInstruction = "Research Instruction Agent"
	agentResearch    = "Research Agent"
)

// agentStep is one hop of the pipeline: a single chat completion run
// under a named agent's system prompt. Chain builds the next step's
// input from this step's output; nil on the final step.
type agentStep struct {
	Agent  string
	Model  string
	System string
	Chain  func(query, output string) string
}

// agentPipelineClient runs research as a multi-step chat-completion
// sequence: an optional clarification step (when clarification
// answers are supplied) refines the query, an instruction-generation
// step turns it into a research briefing, and a research step executes
// the briefing. Later steps consume earlier outputs.
type agentPipelineClient struct {
	client *openai.Client
	cfg    Config
	logger *zap.Logger
}

func newAgentPipelineClient(cfg Config, logger *zap.Logger) *agentPipelineClient {
	occ := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		occ.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		occ.HTTPClient = cfg.HTTPClient
	}
	return &agentPipelineClient{
		client: openai.NewClientWithConfig(occ),
		cfg:    cfg,
		logger: logger,
	}
}

func (c *agentPipelineClient) method() Method { return MethodAgents }

func (c *agentPipelineClient) call(ctx context.Context, plan callPlan) (rawResult, error) {
	steps := c.buildSteps(plan)
	input := pipelineInput(plan)

	trace := make([]string, 0, len(steps))
	var finalText string
	var finalModel string

	for i, step := range steps {
		plan.emit(ProgressEvent{Stage: StageAgentSwitch, Agent: step.Agent})
		c.logger.Debug("running pipeline step",
			zap.String("request_id", plan.RequestID),
			zap.String("agent", step.Agent),
			zap.String("model", step.Model))

		text, err := c.completeStep(ctx, step, input)
		if err != nil {
			return rawResult{}, newBackendError(MethodAgents, classifyAgentsError(err), err)
		}
		trace = append(trace, step.Agent)
		finalText = text
		finalModel = step.Model

		// Chain this step's output into the next step's input.
		if i+1 < len(steps) {
			input = step.Chain(plan.Query, text)
		}
	}

	return rawResult{
		Text:    finalText,
		Model:   finalModel,
		Trace:   trace,
		Sources: extractSources(finalText),
	}, nil
}

func (c *agentPipelineClient) buildSteps(plan callPlan) []agentStep {
	researchModel := c.cfg.ResearchModel
	if plan.Model != "" {
		researchModel = plan.Model
	}
	researchSystem := researchAgentPrompt
	if strings.TrimSpace(plan.System) != "" {
		researchSystem = plan.System
	}

	steps := make([]agentStep, 0, 3)
	if len(plan.Clarifications) > 0 {
		// The clarification agent rewrites the query plus the supplied
		// answers into a single refined query, which becomes the
		// instruction agent's input as-is.
		steps = append(steps, agentStep{
			Agent:  agentClarifying,
			Model:  c.cfg.AuxModel,
			System: clarifyingAgentPrompt,
			Chain:  func(_, refined string) string { return refined },
		})
	}
	steps = append(steps,
		agentStep{Agent: agentInstruction, Model: c.cfg.AuxModel, System: instructionAgentPrompt, Chain: chainInput},
		agentStep{Agent: agentResearch, Model: researchModel, System: researchSystem},
	)
	return steps
}

func (c *agentPipelineClient) completeStep(ctx context.Context, step agentStep, input string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: step.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: step.System},
			{Role: openai.ChatMessageRoleUser, Content: input},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ValidationError{
			Field: "choices",
			Cause: fmt.Errorf("empty completion from %s", step.Agent),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// pipelineInput builds the first step's input: the query, plus any
// clarification answers in deterministic order.
func pipelineInput(plan callPlan) string {
	if len(plan.Clarifications) == 0 {
		return plan.Query
	}
	keys := make([]string, 0, len(plan.Clarifications))
	for k := range plan.Clarifications {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(plan.Query)
	b.WriteString("\n\nClarifications provided by the requester:\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, plan.Clarifications[k])
	}
	return b.String()
}

func chainInput(query, instructions string) string {
	return "Original query: " + query + "\n\nResearch instructions:\n" + instructions
}

var sourceURLPattern = regexp.MustCompile(`https?://[^\s<>()\[\]"']+`)

// extractSources harvests unique source URLs from the report text in
// order of first appearance.
func extractSources(text string) []string {
	matches := sourceURLPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	sources := make([]string, 0, len(matches))
	for _, m := range matches {
		m = strings.TrimRight(m, ".,;:")
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		sources = append(sources, m)
	}
	return sources
}

func classifyAgentsError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return FailurePermission
		}
		return FailureStatus
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return FailureStatus
	}
	return FailureNetwork
}
