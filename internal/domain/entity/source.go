// Package entity defines the core domain entities for the intel aggregation
// pipeline: feed sources, the successive item refinements (raw, scored,
// enriched) and clusters, along with their validation rules.
package entity

import (
	"fmt"
	"net/url"
)

// FeedSource is a single entry of the feed registry. The table is declared at
// config load and is immutable for the process lifetime.
type FeedSource struct {
	Src    string  `json:"src"`
	URL    string  `json:"url"`
	Weight float64 `json:"weight"`
	Region string  `json:"region"`
}

// Validate checks that the source carries a stable id, a parseable URL and a
// trust weight within [0, 1].
func (s *FeedSource) Validate() error {
	if s.Src == "" {
		return &ValidationError{Field: "src", Message: "src is required"}
	}
	if s.URL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	u, err := url.Parse(s.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return &ValidationError{Field: "url", Message: fmt.Sprintf("invalid feed url: %s", s.URL)}
	}
	if s.Weight < 0 || s.Weight > 1 {
		return &ValidationError{Field: "weight", Message: fmt.Sprintf("weight must be in [0,1], got %v", s.Weight)}
	}
	return nil
}
