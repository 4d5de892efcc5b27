package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"helperbot/internal/config"
	"helperbot/internal/rag/interfaces"
	"helperbot/pkg/circuitbreaker"
)

// OpenAI is a chat-completion client for any provider speaking the OpenAI
// wire format; the default configuration points it at Groq. Generation runs
// with low temperature and a bounded output size for factual, short answers,
// and every call carries its own timeout so a slow upstream cannot stall the
// serving path.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	maxRetries  int
	breaker     circuitbreaker.CircuitBreaker
}

// Option configures an OpenAI client.
type Option func(*OpenAI)

// WithCircuitBreaker guards every provider call with the given breaker.
// A nil breaker leaves the client unguarded.
func WithCircuitBreaker(cb circuitbreaker.CircuitBreaker) Option {
	return func(o *OpenAI) { o.breaker = cb }
}

// NewOpenAI creates a chat client from the LLM configuration.
func NewOpenAI(cfg config.LLMConfig, opts ...Option) (*OpenAI, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("chat model name is required")
	}
	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	o := &OpenAI{
		client:      openai.NewClientWithConfig(conf),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		maxRetries:  cfg.MaxRetries,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Generate sends the prompt as a single user message and returns the raw
// completion text. Transient provider failures are retried up to maxRetries
// times with a short backoff; a rate-limited call that never recovers
// surfaces as ErrRateLimited.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: &o.temperature,
		MaxTokens:   o.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		text, err := o.complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !isTransient(err) {
			break
		}
	}

	if isRateLimited(lastErr) {
		return "", fmt.Errorf("chat completion failed: %w", ErrRateLimited)
	}
	return "", fmt.Errorf("chat completion failed: %w", lastErr)
}

func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	call := func() (interface{}, error) {
		return o.client.CreateChatCompletion(callCtx, req)
	}

	var raw interface{}
	var err error
	if o.breaker != nil {
		raw, err = o.breaker.Execute(call)
	} else {
		raw, err = call()
	}
	if err != nil {
		return "", err
	}

	resp := raw.(openai.ChatCompletionResponse)
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// isRateLimited inspects the provider error's status code. This is a typed
// check; the response text is never string-matched.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}

// isTransient reports whether a retry could plausibly succeed: rate limits,
// server-side errors, and transport failures qualify. An open circuit
// breaker does not; retrying against it would only keep it open.
func isTransient(err error) bool {
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return false
	}
	if isRateLimited(err) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode >= http.StatusInternalServerError
	}
	// Anything that never produced an HTTP response (timeout, DNS, reset).
	return true
}

// compile-time check to ensure OpenAI implements the LLM interface
var _ interfaces.LLM = (*OpenAI)(nil)
