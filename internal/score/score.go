// Package score turns RawItems into ScoredItems: dictionary-driven topic and
// geo labelling, an impact/confidence/urgency blend, and canonical story keys
// used downstream as cluster seeds.
package score

import (
	"math"
	"sort"
	"strings"
	"time"

	"intelcore/internal/domain/entity"
	"intelcore/internal/registry"
)

const (
	// urgencyHorizonH is the age in hours past which urgency bottoms out.
	urgencyHorizonH = 36.0

	// impactTagSaturation is the tag count at which impact saturates at 1.
	impactTagSaturation = 3.0
)

// Scorer labels and scores raw items against the topic and geo dictionaries.
type Scorer struct {
	topics []registry.Dictionary
	geos   []registry.Dictionary
	now    func() time.Time
}

// New creates a Scorer over the process dictionaries.
func New() *Scorer {
	return &Scorer{topics: registry.Topics(), geos: registry.Geos(), now: time.Now}
}

// NewWithClock creates a Scorer with an injected clock, for tests.
func NewWithClock(now func() time.Time) *Scorer {
	return &Scorer{topics: registry.Topics(), geos: registry.Geos(), now: now}
}

// Score transforms one RawItem into a ScoredItem.
func (s *Scorer) Score(raw entity.RawItem) entity.ScoredItem {
	now := s.now()
	ts := parseTS(raw.PubText, now)

	text := strings.ToLower(raw.Title + " " + raw.Description)
	tags := MatchLabels(s.topics, text)
	geoText := text + " " + strings.ToLower(raw.Region)
	geos := MatchLabels(s.geos, geoText)

	ageH := AgeHours(now, ts)

	urgency := 1 - math.Min(ageH, urgencyHorizonH)/urgencyHorizonH
	if urgency < 0 {
		urgency = 0
	}
	impact := math.Min(1, float64(len(tags))/impactTagSaturation)
	confidence := raw.Weight

	return entity.ScoredItem{
		Src:         raw.Src,
		Title:       raw.Title,
		Link:        raw.Link,
		Description: raw.Description,
		Region:      raw.Region,
		Tags:        tags,
		Geos:        geos,
		TS:          ts,
		AgeH:        Round3(ageH),
		Score:       Round3(0.5*impact + 0.3*confidence + 0.2*urgency),
		Key:         StoryKey(raw.Title),
	}
}

// ScoreAll scores a batch, then orders it by score descending with recency as
// the tie-break.
func (s *Scorer) ScoreAll(raws []entity.RawItem) []entity.ScoredItem {
	items := make([]entity.ScoredItem, 0, len(raws))
	for _, raw := range raws {
		items = append(items, s.Score(raw))
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].TS > items[j].TS
	})
	return items
}

// MatchLabels returns the labels whose keyword lists hit the haystack,
// preserving dictionary declaration order and deduplicating.
func MatchLabels(dicts []registry.Dictionary, haystack string) []string {
	var labels []string
	seen := make(map[string]bool, len(dicts))
	for _, d := range dicts {
		if seen[d.Label] {
			continue
		}
		for _, kw := range d.Keywords {
			if strings.Contains(haystack, kw) {
				labels = append(labels, d.Label)
				seen[d.Label] = true
				break
			}
		}
	}
	return labels
}

// AgeHours returns the age of ts relative to now in hours, unrounded and
// clamped at zero for future timestamps. Window filtering uses this exact
// value; the wire carries the Round3-rounded AgeH.
func AgeHours(now time.Time, ts int64) float64 {
	age := float64(now.UnixMilli()-ts) / 3_600_000
	if age < 0 {
		return 0
	}
	return age
}

// parseTS converts the parser's RFC3339 publish text to epoch milliseconds,
// falling back to the current time on malformed input.
func parseTS(pubText string, now time.Time) int64 {
	t, err := time.Parse(time.RFC3339, pubText)
	if err != nil {
		return now.UnixMilli()
	}
	return t.UnixMilli()
}

// Round3 rounds to three decimal places, matching the wire precision of all
// derived scores.
func Round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
