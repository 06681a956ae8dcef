// Package llm defines the language model provider interface and common
// types for single-shot completion calls.
//
// # Backends
//
//   - llm/gemini: Google AI Studio (Gemini) REST API
package llm

import "context"

// CompletionRequest is the universal input for all LLM providers.
type CompletionRequest struct {
	// Prompt is the full prompt text.
	Prompt string `json:"prompt"`
	// JSONResponse asks the provider for a JSON-typed response where the
	// backend supports response MIME type negotiation.
	JSONResponse bool `json:"json_response,omitempty"`
}

// CompletionResponse is the universal output from all LLM providers.
type CompletionResponse struct {
	// Content is the generated text, raw and unvalidated.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model,omitempty"`
}

// Provider is the interface that LLM backends must implement.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// IsAvailable checks if the backend is reachable.
	IsAvailable(ctx context.Context) bool

	// Complete sends a completion request and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
