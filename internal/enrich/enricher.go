package enrich

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"intelcore/internal/domain/entity"
	"intelcore/internal/infra/kv"
	"intelcore/internal/observability/metrics"
	"intelcore/internal/registry"
	"intelcore/internal/resilience/retry"
)

// normalizedTextLimit bounds the English working text handed to the AI tasks.
const normalizedTextLimit = 2000

// Summarizer produces the abstractive summary. The default implementation
// goes through the HF summary model; OpenAI/Claude adapters can be injected
// via SUMMARY_PROVIDER.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Enricher runs the per-item AI task pipeline with a hard cap, a KV result
// cache and fail-soft task guards: a failing task leaves its field empty and
// the item flows on.
type Enricher struct {
	cfg        Config
	hf         *HFClient
	store      kv.Store
	summarizer Summarizer // nil means use the HF summary model
	topics     []string
}

// New creates an Enricher. store may not be nil; summarizer may be nil to use
// the built-in HF summary task.
func New(cfg Config, hf *HFClient, store kv.Store, summarizer Summarizer) *Enricher {
	return &Enricher{
		cfg:        cfg,
		hf:         hf,
		store:      store,
		summarizer: summarizer,
		topics:     registry.TopicLabels(),
	}
}

// cachedEnrichment is the KV value format of one enrichment result.
type cachedEnrichment struct {
	Lang           string          `json:"lang,omitempty"`
	Translated     bool            `json:"translated"`
	NormalizedText string          `json:"normalizedText,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	ZSLabels       []string        `json:"zsLabels,omitempty"`
	Sentiment      json.RawMessage `json:"sentiment,omitempty"`
	Entities       []entity.Entity `json:"entities,omitempty"`
}

// EnrichAll enriches the head of the batch up to the configured cap; items
// beyond the cap and items hit by auth failures pass through un-enriched.
// Input order is preserved. A cancelled context stops upstream work and the
// remaining items pass through, so partial results are still returned.
func (e *Enricher) EnrichAll(ctx context.Context, items []entity.ScoredItem) []entity.EnrichedItem {
	out := make([]entity.EnrichedItem, 0, len(items))
	for i, it := range items {
		if i >= e.cfg.MaxEnrich || ctx.Err() != nil {
			passthrough := entity.EnrichedItem{ScoredItem: it}
			passthrough.Tags = copyTags(it.Tags)
			out = append(out, passthrough)
			continue
		}
		out = append(out, e.enrichOne(ctx, it))
	}
	return out
}

// enrichOne runs the task pipeline for a single item, consulting the cache
// first.
func (e *Enricher) enrichOne(ctx context.Context, it entity.ScoredItem) entity.EnrichedItem {
	cacheKey := kv.EnrichPrefix + kv.HashKey(identifier(it))

	if cached, ok := e.cacheGet(ctx, cacheKey); ok {
		metrics.RecordEnrichCache(true)
		return apply(it, cached)
	}
	metrics.RecordEnrichCache(false)

	result, ok := e.runTasks(ctx, it)
	if !ok {
		// Auth rejection: surface in logs, return the item un-enriched.
		passthrough := entity.EnrichedItem{ScoredItem: it}
		passthrough.Tags = copyTags(it.Tags)
		return passthrough
	}

	e.cachePut(ctx, cacheKey, result)
	return apply(it, result)
}

// runTasks executes the ordered task list. It reports ok=false only for
// credential rejections; any other task failure is logged and leaves the
// corresponding field empty.
func (e *Enricher) runTasks(ctx context.Context, it entity.ScoredItem) (cachedEnrichment, bool) {
	var res cachedEnrichment
	baseText := truncateRunes(strings.TrimSpace(it.Title+". "+it.Description), normalizedTextLimit)

	// 1. Language detection; default "en" on failure.
	res.Lang = "en"
	lang, err := guard(ctx, e.cfg.TaskTimeout, "language_detect", func(taskCtx context.Context) (string, error) {
		return e.hf.DetectLanguage(taskCtx, e.cfg.LangModel, baseText)
	})
	if retry.IsAuthError(err) {
		return cachedEnrichment{}, false
	}
	if err == nil && lang != "" {
		res.Lang = lang
	}

	// 2. Translate to English, only for non-English items.
	res.NormalizedText = baseText
	if res.Lang != "en" {
		translated, err := guard(ctx, e.cfg.TaskTimeout, "translate", func(taskCtx context.Context) (string, error) {
			return e.hf.Translate(taskCtx, e.cfg.TranslateModel, baseText)
		})
		if retry.IsAuthError(err) {
			return cachedEnrichment{}, false
		}
		if err == nil && translated != "" {
			res.Translated = true
			res.NormalizedText = truncateRunes(translated, normalizedTextLimit)
		}
	}

	// 3. Zero-shot topic classification.
	labels, err := guard(ctx, e.cfg.TaskTimeout, "zero_shot", func(taskCtx context.Context) ([]string, error) {
		return e.hf.ZeroShot(taskCtx, e.cfg.ZeroShotModel, res.NormalizedText, e.topics, e.cfg.ZeroShotMinScore, e.cfg.ZeroShotMaxLabels)
	})
	if retry.IsAuthError(err) {
		return cachedEnrichment{}, false
	}
	if err == nil {
		res.ZSLabels = labels
	}

	// 4. Abstractive summary.
	summary, err := guard(ctx, e.cfg.TaskTimeout, "summary", func(taskCtx context.Context) (string, error) {
		if e.summarizer != nil {
			return e.summarizer.Summarize(taskCtx, res.NormalizedText)
		}
		return e.hf.Summarize(taskCtx, e.cfg.SummaryModel, res.NormalizedText, e.cfg.SummaryMaxLength, e.cfg.SummaryMinLength)
	})
	if retry.IsAuthError(err) {
		return cachedEnrichment{}, false
	}
	if err == nil {
		res.Summary = summary
	}

	// 5. Sentiment, stored as the opaque provider payload.
	sentiment, err := guard(ctx, e.cfg.TaskTimeout, "sentiment", func(taskCtx context.Context) (json.RawMessage, error) {
		return e.hf.Sentiment(taskCtx, e.cfg.SentimentModel, res.NormalizedText)
	})
	if retry.IsAuthError(err) {
		return cachedEnrichment{}, false
	}
	if err == nil {
		res.Sentiment = sentiment
	}

	// 6. Named-entity recognition.
	entities, err := guard(ctx, e.cfg.TaskTimeout, "ner", func(taskCtx context.Context) ([]entity.Entity, error) {
		return e.hf.NER(taskCtx, e.cfg.NERModel, res.NormalizedText)
	})
	if retry.IsAuthError(err) {
		return cachedEnrichment{}, false
	}
	if err == nil {
		res.Entities = entities
	}

	return res, true
}

// guard runs one task under the per-task timeout, recording metrics and
// logging failures without propagating them (except to the caller's
// auth-error check).
func guard[T any](ctx context.Context, timeout time.Duration, task string, fn func(context.Context) (T, error)) (T, error) {
	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	start := time.Now()
	v, err := fn(taskCtx)
	metrics.RecordEnrichTask(task, err == nil, time.Since(start))
	if err != nil {
		if retry.IsAuthError(err) {
			slog.Error("enrichment credentials rejected",
				slog.String("task", task),
				slog.Any("error", err))
		} else {
			slog.Warn("enrichment task failed, leaving field empty",
				slog.String("task", task),
				slog.Any("error", err))
		}
	}
	return v, err
}

// apply merges the enrichment result onto the scored item. Tags are the
// union of the original tags and the zero-shot labels, original order first.
func apply(it entity.ScoredItem, res cachedEnrichment) entity.EnrichedItem {
	merged := copyTags(it.Tags)
	seen := make(map[string]bool, len(merged))
	for _, t := range merged {
		seen[t] = true
	}
	for _, l := range res.ZSLabels {
		if !seen[l] {
			seen[l] = true
			merged = append(merged, l)
		}
	}

	enriched := entity.EnrichedItem{
		ScoredItem:     it,
		Lang:           res.Lang,
		Translated:     res.Translated,
		NormalizedText: res.NormalizedText,
		Summary:        res.Summary,
		ZSLabels:       res.ZSLabels,
		Sentiment:      res.Sentiment,
		Entities:       res.Entities,
		Enriched:       true,
	}
	enriched.Tags = merged
	return enriched
}

func (e *Enricher) cacheGet(ctx context.Context, key string) (cachedEnrichment, bool) {
	raw, ok, err := e.store.Get(ctx, key)
	if err != nil {
		slog.Warn("enrichment cache read failed", slog.Any("error", err))
		return cachedEnrichment{}, false
	}
	if !ok {
		return cachedEnrichment{}, false
	}
	var res cachedEnrichment
	if err := json.Unmarshal(raw, &res); err != nil {
		slog.Warn("enrichment cache entry corrupt, ignoring", slog.Any("error", err))
		return cachedEnrichment{}, false
	}
	return res, true
}

func (e *Enricher) cachePut(ctx context.Context, key string, res cachedEnrichment) {
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	// Best effort: the write must survive a request-level cancellation.
	if err := e.store.Put(context.WithoutCancel(ctx), key, raw, e.cfg.CacheTTL); err != nil {
		slog.Warn("enrichment cache write failed", slog.Any("error", err))
	}
}

// identifier picks the first non-empty identity field: link, key, title.
func identifier(it entity.ScoredItem) string {
	switch {
	case it.Link != "":
		return it.Link
	case it.Key != "":
		return it.Key
	default:
		return it.Title
	}
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	return append([]string(nil), tags...)
}

// truncateRunes bounds s to n runes without splitting a character.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
