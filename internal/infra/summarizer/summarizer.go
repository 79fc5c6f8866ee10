// Package summarizer provides pluggable abstractive-summary providers for the
// enrichment pipeline. The default summary task runs on the HF summary model
// inside the enricher; this package supplies the OpenAI, Claude and NoOp
// alternatives selected via SUMMARY_PROVIDER.
package summarizer

import (
	"fmt"
	"log/slog"
	"os"

	"intelcore/internal/enrich"
)

// maxInputChars bounds the text sent to a provider. Enrichment already caps
// the working text at 2000 chars; this is a second guard against misuse.
const maxInputChars = 4000

// FromEnv selects the summary provider from SUMMARY_PROVIDER:
// "hf" (default) returns nil so the enricher uses its built-in HF summary
// task; "openai" and "claude" require their API key envs; "noop" truncates.
func FromEnv(logger *slog.Logger) (enrich.Summarizer, error) {
	switch provider := os.Getenv("SUMMARY_PROVIDER"); provider {
	case "", "hf":
		return nil, nil
	case "openai":
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("SUMMARY_PROVIDER=openai requires OPENAI_API_KEY")
		}
		logger.Info("summary provider selected", slog.String("provider", "openai"))
		return NewOpenAI(key), nil
	case "claude":
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, fmt.Errorf("SUMMARY_PROVIDER=claude requires ANTHROPIC_API_KEY")
		}
		logger.Info("summary provider selected", slog.String("provider", "claude"))
		return NewClaude(key), nil
	case "noop":
		logger.Info("summary provider selected", slog.String("provider", "noop"))
		return NewNoOp(), nil
	default:
		return nil, fmt.Errorf("unknown SUMMARY_PROVIDER: %s", provider)
	}
}

// buildPrompt asks for a wire-service style abstract within the word budget
// shared by all chat-model providers.
func buildPrompt(text string) string {
	return "Summarize the following news item in at most 90 words of plain English. " +
		"Keep concrete facts (actors, places, numbers); drop opinion and boilerplate:\n" + text
}

func truncateInput(text string) string {
	if len(text) <= maxInputChars {
		return text
	}
	return text[:maxInputChars] + "..."
}
