package sonda

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/responses"
	"go.uber.org/zap"
)

// deepResearchClient issues a single Responses API call against the
// hosted deep-research models, with web search and code execution
// declared as tools. The raw output items are decoded through a
// tagged type switch; a response with no output text is rejected.
type deepResearchClient struct {
	client openai.Client
	cfg    Config
	logger *zap.Logger
}

func newDeepResearchClient(cfg Config, logger *zap.Logger) *deepResearchClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	return &deepResearchClient{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		logger: logger,
	}
}

func (d *deepResearchClient) method() Method { return MethodDeepResearch }

func (d *deepResearchClient) call(ctx context.Context, plan callPlan) (rawResult, error) {
	params := d.buildParams(plan)

	resp, err := d.client.Responses.New(ctx, params)
	if err != nil && needsVerificationFallback(err, params) {
		// Reasoning summaries require a verified organization; degrade
		// instead of failing the request.
		plan.emit(ProgressEvent{Stage: StageDegraded, Detail: "reasoning summaries unavailable"})
		d.logger.Warn("organization not verified for reasoning summaries, retrying without",
			zap.String("request_id", plan.RequestID))
		params.Reasoning = responses.ReasoningParam{}
		resp, err = d.client.Responses.New(ctx, params)
	}
	if err != nil {
		return rawResult{}, newBackendError(MethodDeepResearch, classifyDeepError(err), err)
	}

	raw, err := decodeDeepResponse(resp)
	if err != nil {
		return rawResult{}, newBackendError(MethodDeepResearch, FailureStatus, err)
	}
	raw.Model = string(params.Model)
	return raw, nil
}

func (d *deepResearchClient) buildParams(plan callPlan) responses.ResponseNewParams {
	model := d.cfg.DeepResearchModel
	if plan.Model != "" {
		model = plan.Model
	}
	system := defaultDeepResearchSystem
	if strings.TrimSpace(plan.System) != "" {
		system = plan.System
	}

	input := responses.ResponseInputParam{
		{
			OfMessage: &responses.EasyInputMessageParam{
				Role: responses.EasyInputMessageRoleDeveloper,
				Content: responses.EasyInputMessageContentUnionParam{
					OfString: openai.String(system),
				},
			},
		},
		{
			OfMessage: &responses.EasyInputMessageParam{
				Role: responses.EasyInputMessageRoleUser,
				Content: responses.EasyInputMessageContentUnionParam{
					OfString: openai.String(plan.Query),
				},
			},
		},
	}

	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{OfInputItemList: input},
		Tools: []responses.ToolUnionParam{
			{OfWebSearch: &responses.WebSearchToolParam{}},
			codeInterpreterTool(),
		},
	}

	switch plan.Summary {
	case SummaryNone:
		// no reasoning request
	case SummaryDetailed:
		params.Reasoning = responses.ReasoningParam{Summary: responses.ReasoningSummaryDetailed}
	default:
		params.Reasoning = responses.ReasoningParam{Summary: responses.ReasoningSummaryAuto}
	}
	return params
}

// codeInterpreterTool declares a code-execution tool with an
// auto-provisioned container.
func codeInterpreterTool() responses.ToolUnionParam {
	return param.Override[responses.ToolUnionParam](map[string]any{
		"type":      "code_interpreter",
		"container": map[string]any{"type": "auto"},
	})
}

// decodeDeepResponse maps the Responses API output items into the raw
// bundle. Citation offsets are rebased onto the concatenated report
// text so they stay valid when the output carries several messages.
func decodeDeepResponse(resp *responses.Response) (rawResult, error) {
	var raw rawResult
	var text strings.Builder

	for _, outputItem := range resp.Output {
		switch item := outputItem.AsAny().(type) {
		case responses.ResponseOutputMessage:
			for _, contentPart := range item.Content {
				switch part := contentPart.AsAny().(type) {
				case responses.ResponseOutputText:
					base := text.Len()
					text.WriteString(part.Text)
					for _, ann := range part.Annotations {
						if ann.Type != "url_citation" {
							continue
						}
						raw.Citations = append(raw.Citations, rawCitation{
							Title:      ann.Title,
							URL:        ann.URL,
							StartIndex: base + int(ann.StartIndex),
							EndIndex:   base + int(ann.EndIndex),
						})
					}
				}
			}
		case responses.ResponseReasoningItem:
			for _, summary := range item.Summary {
				if summary.Text != "" {
					raw.ReasoningSteps = append(raw.ReasoningSteps, summary.Text)
				}
			}
		case responses.ResponseFunctionWebSearch:
			if q := item.Action.Query; q != "" {
				raw.WebSearches = append(raw.WebSearches, q)
			}
		}
	}

	raw.Text = text.String()
	if raw.Text == "" {
		return rawResult{}, &ValidationError{
			Field: "output",
			Cause: errors.New("response contained no output text"),
		}
	}
	return raw, nil
}

// needsVerificationFallback reports whether the error is the
// organization-verification rejection for reasoning summaries, and a
// summary was actually requested.
func needsVerificationFallback(err error, params responses.ResponseNewParams) bool {
	if params.Reasoning.Summary == "" {
		return false
	}
	return strings.Contains(err.Error(), "must be verified")
}

func classifyDeepError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return FailurePermission
		}
		return FailureStatus
	}
	return FailureNetwork
}
