package enrich

import (
	"context"
	"encoding/json"
	"fmt"

	"intelcore/internal/domain/entity"
)

// Upstream responses are dynamically shaped; each task normalises its payload
// to the strict internal form at this boundary and nothing downstream touches
// provider JSON except the opaque sentiment blob.

// classification is the {label, score} pair most HF classifier heads return,
// usually nested one level deep.
type classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// DetectLanguage returns the top ISO language code for the text, "en" when
// the provider gives nothing usable.
func (c *HFClient) DetectLanguage(ctx context.Context, model, text string) (string, error) {
	raw, err := c.Call(ctx, model, map[string]any{"inputs": text})
	if err != nil {
		return "", err
	}

	var nested [][]classification
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 && len(nested[0]) > 0 {
		return nested[0][0].Label, nil
	}
	var flat []classification
	if err := json.Unmarshal(raw, &flat); err == nil && len(flat) > 0 {
		return flat[0].Label, nil
	}
	return "en", nil
}

// Translate renders the text into English.
func (c *HFClient) Translate(ctx context.Context, model, text string) (string, error) {
	raw, err := c.Call(ctx, model, map[string]any{"inputs": text})
	if err != nil {
		return "", err
	}

	var out []struct {
		TranslationText string `json:"translation_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return "", fmt.Errorf("unexpected translation response shape")
	}
	return out[0].TranslationText, nil
}

// ZeroShot classifies the text against the candidate labels, keeping labels
// scoring at least minScore, up to maxLabels, in provider ranking order.
func (c *HFClient) ZeroShot(ctx context.Context, model, text string, labels []string, minScore float64, maxLabels int) ([]string, error) {
	raw, err := c.Call(ctx, model, map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"candidate_labels": labels,
			"multi_label":      true,
		},
	})
	if err != nil {
		return nil, err
	}

	var out struct {
		Labels []string  `json:"labels"`
		Scores []float64 `json:"scores"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unexpected zero-shot response shape: %w", err)
	}

	var kept []string
	for i, label := range out.Labels {
		if i >= len(out.Scores) || out.Scores[i] < minScore {
			continue
		}
		kept = append(kept, label)
		if len(kept) == maxLabels {
			break
		}
	}
	return kept, nil
}

// Summarize produces an abstractive summary within the given length bounds.
func (c *HFClient) Summarize(ctx context.Context, model, text string, maxLength, minLength int) (string, error) {
	raw, err := c.Call(ctx, model, map[string]any{
		"inputs": text,
		"parameters": map[string]any{
			"max_length": maxLength,
			"min_length": minLength,
		},
	})
	if err != nil {
		return "", err
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return "", fmt.Errorf("unexpected summary response shape")
	}
	return out[0].SummaryText, nil
}

// Sentiment returns the provider payload as-is; it is stored opaque.
func (c *HFClient) Sentiment(ctx context.Context, model, text string) (json.RawMessage, error) {
	return c.Call(ctx, model, map[string]any{"inputs": text})
}

// NER extracts named entities from the text.
func (c *HFClient) NER(ctx context.Context, model, text string) ([]entity.Entity, error) {
	raw, err := c.Call(ctx, model, map[string]any{"inputs": text})
	if err != nil {
		return nil, err
	}

	var out []struct {
		Word        string  `json:"word"`
		EntityGroup string  `json:"entity_group"`
		Score       float64 `json:"score"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("unexpected ner response shape: %w", err)
	}

	entities := make([]entity.Entity, 0, len(out))
	for _, e := range out {
		if e.Word == "" {
			continue
		}
		entities = append(entities, entity.Entity{Word: e.Word, Group: e.EntityGroup, Score: e.Score})
	}
	return entities, nil
}
