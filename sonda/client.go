package sonda

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client is the unified research entry point: it selects a backend,
// runs the call, and normalizes the raw bundle into a UnifiedResult.
// A Client is safe for concurrent use; requests share nothing but the
// configuration and the underlying HTTP clients.
type Client struct {
	cfg      Config
	logger   *zap.Logger
	selector *Selector
	agents   backendClient
	deep     backendClient
}

// New creates a Client with the given config. A missing API key is a
// *ConfigError reported here, before any request is attempted.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	return &Client{
		cfg:      cfg,
		logger:   logger,
		selector: NewSelector(cfg, logger),
		agents:   newAgentPipelineClient(cfg, logger),
		deep:     newDeepResearchClient(cfg, logger),
	}, nil
}

// Research runs one research request. When the method was
// auto-selected and the primary backend fails with a *BackendError,
// the other backend is tried once; if that fails too the returned
// error is an *AggregateError carrying both causes.
func (c *Client) Research(ctx context.Context, req ResearchRequest) (UnifiedResult, error) {
	if strings.TrimSpace(req.Query) == "" {
		return UnifiedResult{}, ErrEmptyQuery
	}
	if err := knownMethod(req.Method); err != nil {
		return UnifiedResult{}, err
	}

	requestID := uuid.NewString()
	method := c.selector.Select(req.Query, req.Method)
	explicit := req.Method != "" && req.Method != MethodAuto

	plan := callPlan{
		Query:          req.Query,
		System:         req.System,
		Model:          req.Model,
		Summary:        req.Summary,
		Clarifications: req.Clarifications,
		OnProgress:     req.OnProgress,
		RequestID:      requestID,
	}

	c.logger.Info("starting research",
		zap.String("request_id", requestID),
		zap.String("method", string(method)),
		zap.Bool("explicit", explicit))

	raw, err := c.callBackend(ctx, c.backendFor(method), plan, req.Timeout)
	if err == nil {
		return normalize(raw, method, req.Query, requestID), nil
	}
	var backendErr *BackendError
	if explicit || !errors.As(err, &backendErr) {
		return UnifiedResult{}, err
	}

	// One-shot fallback against the other backend. The primary error
	// is retained in case the fallback fails as well. A per-request
	// model override targets the originally selected backend, so the
	// fallback runs the other backend's configured default instead.
	fallbackMethod := otherMethod(method)
	fallbackPlan := plan
	fallbackPlan.Model = ""
	plan.emit(ProgressEvent{Stage: StageFallback, Detail: string(fallbackMethod)})
	c.logger.Warn("primary backend failed, trying fallback",
		zap.String("request_id", requestID),
		zap.String("primary", string(method)),
		zap.String("fallback", string(fallbackMethod)),
		zap.Error(err))

	raw, fallbackErr := c.callBackend(ctx, c.backendFor(fallbackMethod), fallbackPlan, req.Timeout)
	if fallbackErr != nil {
		return UnifiedResult{}, &AggregateError{Primary: err, Fallback: fallbackErr}
	}
	return normalize(raw, fallbackMethod, req.Query, requestID), nil
}

// callBackend bounds a single backend call with the request or
// client-wide timeout.
func (c *Client) callBackend(ctx context.Context, backend backendClient, plan callPlan, timeout time.Duration) (rawResult, error) {
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return backend.call(callCtx, plan)
}

func (c *Client) backendFor(method Method) backendClient {
	if method == MethodDeepResearch {
		return c.deep
	}
	return c.agents
}

func otherMethod(method Method) Method {
	if method == MethodDeepResearch {
		return MethodAgents
	}
	return MethodDeepResearch
}

func knownMethod(method Method) error {
	switch method {
	case "", MethodAuto, MethodAgents, MethodDeepResearch:
		return nil
	default:
		return ErrUnknownMethod
	}
}
