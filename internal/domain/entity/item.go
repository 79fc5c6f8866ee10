package entity

import "encoding/json"

// RawItem is a feed entry as produced by the parser, before scoring.
// Title and Link are non-empty after trimming; items missing both are dropped
// at the parse stage. RawItem is discarded once the scorer has transformed it.
type RawItem struct {
	Src         string
	Title       string
	Link        string
	Description string
	PubText     string
	Weight      float64
	Region      string
}

// ScoredItem is a RawItem with derived topic/geo labels, timestamps and the
// blended relevance score. It lives for the request and for its TTL in the
// cache.
type ScoredItem struct {
	Src         string   `json:"src"`
	Title       string   `json:"title"`
	Link        string   `json:"link"`
	Description string   `json:"description"`
	Region      string   `json:"region"`
	Tags        []string `json:"tags"`
	Geos        []string `json:"geos"`
	TS          int64    `json:"ts"`
	AgeH        float64  `json:"ageH"`
	Score       float64  `json:"score"`
	Key         string   `json:"key"`
}

// EnrichedItem is a ScoredItem augmented by the AI enrichment pipeline.
// Every enrichment field is optional: a failed task leaves its field empty
// without invalidating the item. Tags is the merged set and always contains
// the original item tags.
type EnrichedItem struct {
	ScoredItem
	Lang           string          `json:"lang,omitempty"`
	Translated     bool            `json:"translated"`
	NormalizedText string          `json:"normalizedText,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	ZSLabels       []string        `json:"zsLabels,omitempty"`
	Sentiment      json.RawMessage `json:"sentiment,omitempty"`
	Entities       []Entity        `json:"entities,omitempty"`
	Enriched       bool            `json:"enriched"`
}

// Entity is a single named-entity recognition result. Raw provider fields
// beyond word/group/score are dropped at the boundary.
type Entity struct {
	Word  string  `json:"word"`
	Group string  `json:"group,omitempty"`
	Score float64 `json:"score,omitempty"`
}
