package port

import "context"

// LLMClient sends one prompt to a language model and returns its raw text.
// Rate limits surface as errors matching domain.ErrRateLimited.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
