package sonda

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAgentsClient(t *testing.T) *agentPipelineClient {
	t.Helper()
	return newAgentPipelineClient(Config{APIKey: "sk-test"}.withDefaults(), zap.NewNop())
}

func TestBuildSteps_Defaults(t *testing.T) {
	c := testAgentsClient(t)

	steps := c.buildSteps(callPlan{Query: "q"})
	require.Len(t, steps, 2)

	assert.Equal(t, agentInstruction, steps[0].Agent)
	assert.Equal(t, defaultAuxModel, steps[0].Model)
	assert.Equal(t, instructionAgentPrompt, steps[0].System)

	assert.Equal(t, agentResearch, steps[1].Agent)
	assert.Equal(t, defaultResearchModel, steps[1].Model)
	assert.Equal(t, researchAgentPrompt, steps[1].System)
}

func TestBuildSteps_Overrides(t *testing.T) {
	c := testAgentsClient(t)

	steps := c.buildSteps(callPlan{
		Query:  "q",
		Model:  "gpt-4.1",
		System: "focus on benchmarks",
	})
	require.Len(t, steps, 2)

	// Overrides apply to the research step only; the instruction agent
	// keeps its own prompt and model.
	assert.Equal(t, defaultAuxModel, steps[0].Model)
	assert.Equal(t, instructionAgentPrompt, steps[0].System)
	assert.Equal(t, "gpt-4.1", steps[1].Model)
	assert.Equal(t, "focus on benchmarks", steps[1].System)
}

func TestBuildSteps_ClarificationsAddStep(t *testing.T) {
	c := testAgentsClient(t)

	steps := c.buildSteps(callPlan{
		Query:          "q",
		Clarifications: map[string]string{"audience": "engineers"},
	})
	require.Len(t, steps, 3)

	assert.Equal(t, agentClarifying, steps[0].Agent)
	assert.Equal(t, defaultAuxModel, steps[0].Model)
	assert.Equal(t, clarifyingAgentPrompt, steps[0].System)
	// The refined query feeds the instruction agent unchanged.
	assert.Equal(t, "refined", steps[0].Chain("q", "refined"))

	assert.Equal(t, agentInstruction, steps[1].Agent)
	assert.Equal(t, agentResearch, steps[2].Agent)
}

func TestCall_ClarifyingHopInTrace(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices":[{"message":{"role":"assistant","content":"step %d output"}}]}`, requests)
	}))
	defer srv.Close()

	cfg := Config{APIKey: "sk-test", BaseURL: srv.URL}.withDefaults()
	c := newAgentPipelineClient(cfg, zap.NewNop())

	raw, err := c.call(context.Background(), callPlan{
		Query:          "q",
		Clarifications: map[string]string{"timeframe": "2026"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, requests)
	assert.Equal(t, []string{agentClarifying, agentInstruction, agentResearch}, raw.Trace)
	assert.Equal(t, "step 3 output", raw.Text)
}

func TestPipelineInput_NoClarifications(t *testing.T) {
	assert.Equal(t, "q", pipelineInput(callPlan{Query: "q"}))
}

func TestPipelineInput_ClarificationsAreDeterministic(t *testing.T) {
	plan := callPlan{
		Query: "q",
		Clarifications: map[string]string{
			"timeframe": "last 2 years",
			"audience":  "engineers",
		},
	}

	first := pipelineInput(plan)
	assert.Contains(t, first, "audience: engineers")
	assert.Contains(t, first, "timeframe: last 2 years")

	for i := 0; i < 10; i++ {
		assert.Equal(t, first, pipelineInput(plan))
	}
}

func TestChainInput(t *testing.T) {
	got := chainInput("the query", "the instructions")
	assert.Contains(t, got, "the query")
	assert.Contains(t, got, "the instructions")
}

func TestExtractSources(t *testing.T) {
	text := `Findings are based on https://example.com/report and
(https://arxiv.org/abs/1234.5678). See also https://example.com/report.`

	sources := extractSources(text)
	assert.Equal(t, []string{
		"https://example.com/report",
		"https://arxiv.org/abs/1234.5678",
	}, sources)
}

func TestExtractSources_TrimsTrailingPunctuation(t *testing.T) {
	sources := extractSources("Read https://example.com/a. Then https://example.com/b,")
	assert.Equal(t, []string{"https://example.com/a", "https://example.com/b"}, sources)
}

func TestExtractSources_NoURLs(t *testing.T) {
	assert.Nil(t, extractSources("no links here"))
}

func TestClassifyAgentsError(t *testing.T) {
	assert.Equal(t, FailureTimeout, classifyAgentsError(context.DeadlineExceeded))
	assert.Equal(t, FailurePermission,
		classifyAgentsError(&openai.APIError{HTTPStatusCode: 401}))
	assert.Equal(t, FailurePermission,
		classifyAgentsError(&openai.APIError{HTTPStatusCode: 403}))
	assert.Equal(t, FailureStatus,
		classifyAgentsError(&openai.APIError{HTTPStatusCode: 429}))
	assert.Equal(t, FailureStatus,
		classifyAgentsError(&ValidationError{Field: "choices", Cause: errors.New("empty")}))
	assert.Equal(t, FailureNetwork, classifyAgentsError(errors.New("conn refused")))
}
