package summarizer

import "context"

const noOpMaxChars = 500

// NoOp returns the input text truncated instead of calling a model. Useful
// for local development and tests where no API key is available.
type NoOp struct{}

// NewNoOp creates a new NoOp summary provider.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Summarize returns the first 500 characters of the text.
func (n *NoOp) Summarize(_ context.Context, text string) (string, error) {
	if len(text) <= noOpMaxChars {
		return text, nil
	}
	return text[:noOpMaxChars] + "...", nil
}
