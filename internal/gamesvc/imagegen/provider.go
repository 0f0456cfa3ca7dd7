package imagegen

import "context"

// Provider turns a player's prompt into a hosted image. A failed generation
// is a retryable submission attempt, never fatal to the round.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
