package entity

// Cluster groups corroborating items that tell the same story. Clusters are
// built per request from the current scored-item window and are not persisted
// directly; only a small cluster-memory record goes to the KV.
type Cluster struct {
	Key         string       `json:"key"`
	Items       []ScoredItem `json:"items"`
	Tags        []string     `json:"tags"`
	Geos        []string     `json:"geos"`
	Sources     []string     `json:"sources"`
	FirstSeenTS int64        `json:"firstSeenTs"`
	LastSeenTS  int64        `json:"lastSeenTs"`
	Score       float64      `json:"score"`
}

// EnrichedCluster is a Cluster built over enriched items.
type EnrichedCluster struct {
	Key         string         `json:"key"`
	Items       []EnrichedItem `json:"items"`
	Tags        []string       `json:"tags"`
	Geos        []string       `json:"geos"`
	Sources     []string       `json:"sources"`
	FirstSeenTS int64          `json:"firstSeenTs"`
	LastSeenTS  int64          `json:"lastSeenTs"`
	Score       float64        `json:"score"`
}
