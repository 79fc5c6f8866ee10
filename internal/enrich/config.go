// Package enrich implements the bounded AI enrichment pipeline: language
// detection, translation, zero-shot topic classification, abstractive
// summary, sentiment and named-entity recognition, backed by the Hugging Face
// Inference API with credential rotation and a KV result cache.
package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"intelcore/pkg/config"
)

// Default model identifiers per task. With HF_USE_ENDPOINTS=true these may be
// full endpoint URLs instead of model ids.
const (
	defaultLangModel      = "papluca/xlm-roberta-base-language-detection"
	defaultTranslateModel = "Helsinki-NLP/opus-mt-mul-en"
	defaultZeroShotModel  = "facebook/bart-large-mnli"
	defaultSummaryModel   = "facebook/bart-large-cnn"
	defaultSentimentModel = "cardiffnlp/twitter-roberta-base-sentiment-latest"
	defaultNERModel       = "dslim/bert-base-NER"
)

// Config holds the enrichment pipeline configuration, loaded from the
// environment.
type Config struct {
	// Tokens is the ordered credential pool.
	Tokens []string

	// UseEndpoints treats model identifiers as full URLs (dedicated
	// inference endpoints) instead of hub model ids.
	UseEndpoints bool

	// MaxEnrich caps how many items of a batch are enriched; the tail is
	// passed through untouched. Default 25.
	MaxEnrich int

	// CacheTTL is the TTL of cached enrichment results. Default 1h.
	CacheTTL time.Duration

	// TaskTimeout is the hard per-task timeout. Default 8s.
	TaskTimeout time.Duration

	// Per-task model identifiers.
	LangModel      string
	TranslateModel string
	ZeroShotModel  string
	SummaryModel   string
	SentimentModel string
	NERModel       string

	// Zero-shot label acceptance.
	ZeroShotMinScore  float64
	ZeroShotMaxLabels int

	// Summary length bounds forwarded to the model.
	SummaryMaxLength int
	SummaryMinLength int
}

// LoadConfig reads the enrichment configuration from the environment.
// Tunables fall back to defaults; a malformed HF_TOKENS_JSON is an error
// because silently running without credentials would disable enrichment.
func LoadConfig() (Config, error) {
	tokens, err := loadTokens()
	if err != nil {
		return Config{}, err
	}

	return Config{
		Tokens:            tokens,
		UseEndpoints:      config.GetEnvBool("HF_USE_ENDPOINTS", false),
		MaxEnrich:         config.GetEnvInt("MAX_HF_ENRICH", 25),
		CacheTTL:          time.Duration(config.GetEnvInt("ENRICH_TTL", 3600)) * time.Second,
		TaskTimeout:       config.GetEnvDuration("ENRICH_TASK_TIMEOUT", 8*time.Second),
		LangModel:         config.GetEnvString("HF_MODEL_LANG", defaultLangModel),
		TranslateModel:    config.GetEnvString("HF_MODEL_TRANSLATE", defaultTranslateModel),
		ZeroShotModel:     config.GetEnvString("HF_MODEL_ZEROSHOT", defaultZeroShotModel),
		SummaryModel:      config.GetEnvString("HF_MODEL_SUMMARY", defaultSummaryModel),
		SentimentModel:    config.GetEnvString("HF_MODEL_SENTIMENT", defaultSentimentModel),
		NERModel:          config.GetEnvString("HF_MODEL_NER", defaultNERModel),
		ZeroShotMinScore:  0.35,
		ZeroShotMaxLabels: 5,
		SummaryMaxLength:  120,
		SummaryMinLength:  40,
	}, nil
}

// loadTokens builds the ordered credential pool: HF_TOKENS_JSON when present,
// otherwise the numbered HF_TOKEN_A, HF_TOKEN_B, ... scalars in order.
func loadTokens() ([]string, error) {
	if raw := os.Getenv("HF_TOKENS_JSON"); raw != "" {
		var tokens []string
		if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
			return nil, fmt.Errorf("parse HF_TOKENS_JSON: %w", err)
		}
		return tokens, nil
	}

	var tokens []string
	for suffix := 'A'; suffix <= 'Z'; suffix++ {
		tok := os.Getenv(fmt.Sprintf("HF_TOKEN_%c", suffix))
		if tok == "" {
			break
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
