package driven

import "context"

// CompletionService generates a natural-language answer to a question,
// constrained to the supplied grounding context.
//
// Implementations may include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
type CompletionService interface {
	// Complete answers the question using only the grounding context.
	// The context is the concatenation of retrieved passages, each tagged
	// with its source URL.
	Complete(ctx context.Context, question, groundingContext string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures answer generation behaviour.
type CompleteOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
