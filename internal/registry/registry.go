// Package registry holds the declarative, immutable tables that drive the
// aggregation pipeline: the worldwide feed-source list and the topic/geo
// keyword dictionaries used by the scorer.
package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"intelcore/internal/domain/entity"
)

// MaxPerSource is the cap on parsed entries per feed. Tail entries beyond the
// cap are ignored.
const MaxPerSource = 120

// Dictionary is a single labelled keyword set. Matching is substring,
// case-insensitive; declaration order is preserved in results.
type Dictionary struct {
	Label    string   `json:"label"`
	Keywords []string `json:"keywords"`
}

// Registry exposes the immutable source table and dictionaries. A Registry is
// built once at startup and never mutated afterwards.
type Registry struct {
	sources []entity.FeedSource
}

// Load builds the registry from the built-in source table, or from the
// FEED_SOURCES_JSON environment variable when set. Malformed overrides are
// rejected rather than silently ignored: the source table is critical config.
func Load() (*Registry, error) {
	raw := os.Getenv("FEED_SOURCES_JSON")
	if raw == "" {
		return &Registry{sources: defaultSources}, nil
	}

	var sources []entity.FeedSource
	if err := json.Unmarshal([]byte(raw), &sources); err != nil {
		return nil, fmt.Errorf("parse FEED_SOURCES_JSON: %w", err)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("FEED_SOURCES_JSON must contain at least one source")
	}

	seen := make(map[string]bool, len(sources))
	for i := range sources {
		if err := sources[i].Validate(); err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		if seen[sources[i].Src] {
			return nil, fmt.Errorf("duplicate source id: %s", sources[i].Src)
		}
		seen[sources[i].Src] = true
	}

	return &Registry{sources: sources}, nil
}

// Sources returns the full source table. Callers must not mutate the result.
func (r *Registry) Sources() []entity.FeedSource {
	return r.sources
}

// Len returns the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Topics returns the topic dictionary in declaration order.
func Topics() []Dictionary {
	return topics
}

// Geos returns the geo dictionary in declaration order.
func Geos() []Dictionary {
	return geos
}

// GeoBuckets maps coarse display buckets to the geo labels they contain.
func GeoBuckets() map[string][]string {
	return geoBuckets
}

// TopicLabels returns the topic labels in declaration order. This is the label
// set handed to zero-shot classification.
func TopicLabels() []string {
	labels := make([]string, 0, len(topics))
	for _, t := range topics {
		labels = append(labels, t.Label)
	}
	return labels
}
