package service

import (
	"context"
)

// AIService generates the final natural-language answer from a prompt that
// already embeds the retrieved context. The answer is surfaced verbatim,
// including the "I don't know based on the provided context" sentinel.
type AIService interface {
	Answer(ctx context.Context, prompt string) (string, error)
}
