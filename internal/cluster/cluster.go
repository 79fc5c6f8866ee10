// Package cluster groups scored items into story clusters with a two-pass
// algorithm: exact story-key buckets, then a greedy Jaccard merge over the
// bucket seed titles.
package cluster

import (
	"sort"

	"intelcore/internal/domain/entity"
	"intelcore/internal/score"
)

const (
	// jaccardThreshold is the minimum title-token similarity for two buckets
	// to merge. Exactly 0.6 merges.
	jaccardThreshold = 0.6

	// corroborationCap is the distinct-source count beyond which the
	// corroboration signal saturates (1 + corroborationCap sources → 1.0).
	corroborationCap = 4.0
)

// Build clusters the given items. Input order is significant: the first item
// of each bucket seeds the Jaccard comparison, and merging is greedy
// left-to-right over bucket creation order.
func Build(items []entity.ScoredItem) []entity.Cluster {
	type bucket struct {
		key    string
		items  []entity.ScoredItem
		tokens map[string]bool
		merged bool
	}

	var order []*bucket
	byKey := make(map[string]*bucket)
	for _, it := range items {
		b, ok := byKey[it.Key]
		if !ok {
			b = &bucket{key: it.Key, tokens: score.TitleTokens(it.Title)}
			byKey[it.Key] = b
			order = append(order, b)
		}
		b.items = append(b.items, it)
	}

	// Greedy merge pass. A bucket consumed by a merge is never re-examined.
	for i, left := range order {
		if left.merged {
			continue
		}
		for _, right := range order[i+1:] {
			if right.merged {
				continue
			}
			if Jaccard(left.tokens, right.tokens) >= jaccardThreshold {
				left.items = append(left.items, right.items...)
				right.merged = true
			}
		}
	}

	clusters := make([]entity.Cluster, 0, len(order))
	for _, b := range order {
		if b.merged {
			continue
		}
		clusters = append(clusters, finalize(b.key, b.items))
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		if len(clusters[i].Sources) != len(clusters[j].Sources) {
			return len(clusters[i].Sources) > len(clusters[j].Sources)
		}
		if clusters[i].Score != clusters[j].Score {
			return clusters[i].Score > clusters[j].Score
		}
		return clusters[i].LastSeenTS > clusters[j].LastSeenTS
	})
	return clusters
}

// finalize derives the cluster-level fields from its member items.
func finalize(key string, items []entity.ScoredItem) entity.Cluster {
	sort.SliceStable(items, func(i, j int) bool { return items[i].TS > items[j].TS })

	var (
		tags, geos, sources []string
		tagSeen             = map[string]bool{}
		geoSeen             = map[string]bool{}
		srcSeen             = map[string]bool{}
		first               = items[0].TS
		last                = items[0].TS
		maxScore            float64
	)
	for _, it := range items {
		for _, t := range it.Tags {
			if !tagSeen[t] {
				tagSeen[t] = true
				tags = append(tags, t)
			}
		}
		for _, g := range it.Geos {
			if !geoSeen[g] {
				geoSeen[g] = true
				geos = append(geos, g)
			}
		}
		if !srcSeen[it.Src] {
			srcSeen[it.Src] = true
			sources = append(sources, it.Src)
		}
		if it.TS < first {
			first = it.TS
		}
		if it.TS > last {
			last = it.TS
		}
		if it.Score > maxScore {
			maxScore = it.Score
		}
	}

	corroboration := (float64(len(sources)) - 1) / corroborationCap
	if corroboration > 1 {
		corroboration = 1
	}

	return entity.Cluster{
		Key:         key,
		Items:       items,
		Tags:        tags,
		Geos:        geos,
		Sources:     sources,
		FirstSeenTS: first,
		LastSeenTS:  last,
		Score:       score.Round3(0.8*maxScore + 0.2*corroboration),
	}
}

// Jaccard computes |A ∩ B| / |A ∪ B| over two token sets.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// FilterMinSources drops clusters corroborated by fewer than min sources.
func FilterMinSources(clusters []entity.Cluster, min int) []entity.Cluster {
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
