/*
Package ai provides the AI capabilities the research pipeline depends on: a
single-turn research query against Perplexity and a structured-output
reformatting pass against the Gemini API.
*/
package ai

import (
	"context"
	"fmt"
)

// Answer is the raw result of one research query.
type Answer struct {
	Content   string
	Citations []string
}

// Querier performs a single-turn research completion call.
type Querier interface {
	Query(ctx context.Context, systemPrompt, userPrompt string) (Answer, error)
}

// Reformatter coerces free text into the categorized news JSON schema via a
// structured-output completion call. The returned string is the model's JSON
// output, not yet validated.
type Reformatter interface {
	Reformat(ctx context.Context, content string) (string, error)
}

// APIError is a transport, timeout or malformed-response failure from an AI
// provider. It is retried up to the orchestrator's attempt budget.
type APIError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s API error: %s", e.Provider, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
