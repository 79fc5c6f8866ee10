// Package parser turns raw feed payloads into normalised RawItems.
// It accepts RSS 2.0, RDF-RSS 1.0 and Atom 1.0 via gofeed and applies a
// tolerant normalisation layer: entity decoding, HTML stripping, link
// fallbacks and a hard per-source entry cap.
package parser

import (
	"fmt"
	"html"
	"strings"
	"time"

	"intelcore/internal/domain/entity"
	"intelcore/internal/registry"

	"github.com/mmcdole/gofeed"
)

// Parser converts fetched feed payloads into RawItems. The zero value is not
// usable; construct with New.
type Parser struct {
	now func() time.Time
}

// New creates a Parser using the wall clock for missing publish dates.
func New() *Parser {
	return &Parser{now: time.Now}
}

// NewWithClock creates a Parser with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Parser {
	return &Parser{now: now}
}

// Parse extracts up to registry.MaxPerSource items from the payload.
// A single malformed entry is skipped; only a payload that cannot be parsed at
// all yields an error. The caller treats that as a feed error and moves on.
func (p *Parser) Parse(src entity.FeedSource, payload []byte) ([]entity.RawItem, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseString(string(payload))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", src.Src, err)
	}

	entries := feed.Items
	if len(entries) > registry.MaxPerSource {
		entries = entries[:registry.MaxPerSource]
	}

	items := make([]entity.RawItem, 0, len(entries))
	for _, it := range entries {
		if it == nil {
			continue
		}
		raw, ok := p.normalize(src, it)
		if !ok {
			continue
		}
		items = append(items, raw)
	}
	return items, nil
}

// normalize maps one gofeed item onto a RawItem, reporting false when the
// entry lacks a usable title or link.
func (p *Parser) normalize(src entity.FeedSource, it *gofeed.Item) (entity.RawItem, bool) {
	title := CleanText(it.Title)
	link := pickLink(it)
	if title == "" || link == "" {
		return entity.RawItem{}, false
	}

	return entity.RawItem{
		Src:         src.Src,
		Title:       title,
		Link:        link,
		Description: StripHTML(pickDescription(it)),
		PubText:     pickPubText(it, p.now),
		Weight:      src.Weight,
		Region:      src.Region,
	}, true
}

// pickLink resolves the item link. gofeed already prefers rel="alternate" for
// Atom; for RSS items with no <link>, a URL-shaped <guid> is accepted.
func pickLink(it *gofeed.Item) string {
	if link := strings.TrimSpace(it.Link); link != "" {
		return link
	}
	for _, l := range it.Links {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	if guid := strings.TrimSpace(it.GUID); looksLikeURL(guid) {
		return guid
	}
	return ""
}

// pickDescription prefers <description>/<summary>, falling back to full
// <content> when the feed ships nothing shorter.
func pickDescription(it *gofeed.Item) string {
	if it.Description != "" {
		return it.Description
	}
	return it.Content
}

// pickPubText returns the published timestamp in RFC3339, defaulting to the
// current time when the feed carries no parseable date.
func pickPubText(it *gofeed.Item, now func() time.Time) string {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.Format(time.RFC3339)
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.Format(time.RFC3339)
	default:
		return now().Format(time.RFC3339)
	}
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// CleanText trims an inline text value and decodes residual character entities
// (named and numeric) that survive CDATA unwrapping.
func CleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}
