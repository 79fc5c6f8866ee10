package cluster

import (
	"strconv"

	"intelcore/internal/domain/entity"
)

// BuildEnriched clusters enriched items with the same two-pass algorithm as
// Build, carrying the enrichment fields through to the cluster members.
func BuildEnriched(items []entity.EnrichedItem) []entity.EnrichedCluster {
	scored := make([]entity.ScoredItem, len(items))
	byID := make(map[string]entity.EnrichedItem, len(items))
	for i, it := range items {
		scored[i] = it.ScoredItem
		byID[memberID(it.ScoredItem)] = it
	}

	base := Build(scored)
	out := make([]entity.EnrichedCluster, 0, len(base))
	for _, c := range base {
		members := make([]entity.EnrichedItem, 0, len(c.Items))
		for _, it := range c.Items {
			if e, ok := byID[memberID(it)]; ok {
				members = append(members, e)
			} else {
				members = append(members, entity.EnrichedItem{ScoredItem: it})
			}
		}
		out = append(out, entity.EnrichedCluster{
			Key:         c.Key,
			Items:       members,
			Tags:        c.Tags,
			Geos:        c.Geos,
			Sources:     c.Sources,
			FirstSeenTS: c.FirstSeenTS,
			LastSeenTS:  c.LastSeenTS,
			Score:       c.Score,
		})
	}
	return out
}

// FilterMinSourcesEnriched drops enriched clusters corroborated by fewer than
// min sources.
func FilterMinSourcesEnriched(clusters []entity.EnrichedCluster, min int) []entity.EnrichedCluster {
	if min <= 1 {
		return clusters
	}
	out := clusters[:0:0]
	for _, c := range clusters {
		if len(c.Sources) >= min {
			out = append(out, c)
		}
	}
	return out
}

// memberID identifies one item within a single clustering run. Link is the
// natural identity; src and ts disambiguate syndicated duplicates.
func memberID(it entity.ScoredItem) string {
	return it.Link + "\x00" + it.Src + "\x00" + strconv.FormatInt(it.TS, 10)
}
