// Package mealplan turns a user's selections into a single completion
// request and hands back the generated plan text.
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultModel       = "gpt-3.5-turbo"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.8
)

// ErrNoCandidates is reported when the service answered without any completion.
var ErrNoCandidates = errors.New("no completion candidates returned")

// RequestFailedError is the only failure RequestMealPlan returns. Message
// is the description of whatever went wrong during the call.
type RequestFailedError struct {
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("an error occurred: %s", e.Message)
}

// IsRequestFailed reports whether err is a *RequestFailedError.
func IsRequestFailed(err error) (*RequestFailedError, bool) {
	var rf *RequestFailedError
	if errors.As(err, &rf) {
		return rf, true
	}
	return nil, false
}

// Completer is a text-completion service.
type Completer interface {
	Complete(ctx context.Context, messages []Message, params Params) (Completion, error)
}

// Option configures a Requester.
type Option func(*Requester)

// WithModel sets the model identifier sent to the service.
func WithModel(model string) Option {
	return func(r *Requester) {
		if model != "" {
			r.params.Model = model
		}
	}
}

// WithMaxTokens bounds the length of the generated plan.
func WithMaxTokens(n int) Option {
	return func(r *Requester) {
		r.params.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(r *Requester) {
		r.params.Temperature = t
	}
}

// Requester builds meal plan prompts and sends them to a Completer.
type Requester struct {
	completer Completer
	params    Params
}

// NewRequester creates a Requester that sends requests through completer.
func NewRequester(completer Completer, opts ...Option) *Requester {
	r := &Requester{
		completer: completer,
		params: Params{
			Model:       defaultModel,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
			Candidates:  1,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Params returns the generation parameters used for every request.
func (r *Requester) Params() Params {
	return r.params
}

// RequestMealPlan asks the completion service for a daily meal plan and
// returns the first candidate unmodified. It makes exactly one call and
// never retries. Callers must pass at least one ingredient.
func (r *Requester) RequestMealPlan(ctx context.Context, ingredients []string, calorieTarget, mealCount int) (plan string, err error) {
	messages, err := Messages(Request{
		Ingredients:   ingredients,
		CalorieTarget: calorieTarget,
		MealCount:     mealCount,
	})
	if err != nil {
		return "", &RequestFailedError{Message: err.Error()}
	}

	defer func() {
		if p := recover(); p != nil {
			plan, err = "", &RequestFailedError{Message: fmt.Sprint(p)}
			slog.ErrorContext(ctx, "mealplan: completion panicked", "panic", p)
		}
	}()

	start := time.Now()
	completion, err := r.completer.Complete(ctx, messages, r.params)
	if err != nil {
		slog.WarnContext(ctx, "mealplan: completion failed", "model", r.params.Model, "error", err)
		return "", &RequestFailedError{Message: err.Error()}
	}
	if len(completion.Candidates) == 0 {
		return "", &RequestFailedError{Message: ErrNoCandidates.Error()}
	}

	slog.InfoContext(ctx, "mealplan: completion received",
		"model", r.params.Model,
		"prompt_tokens", completion.Usage.PromptTokens,
		"completion_tokens", completion.Usage.CompletionTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return completion.Candidates[0], nil
}
