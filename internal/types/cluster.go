package types

// MatchBasis identifies which signal caused records to be merged into a
// duplicate cluster.
type MatchBasis string

const (
	// MatchBasisExactURL marks clusters formed by identical normalized source URLs.
	MatchBasisExactURL MatchBasis = "exact-url"
	// MatchBasisFuzzy marks clusters merged on composite field similarity.
	MatchBasisFuzzy MatchBasis = "fuzzy-similarity"
	// MatchBasisSingleton marks records that matched nothing and stand alone.
	MatchBasisSingleton MatchBasis = "singleton"
	// MatchBasisSingletonFallback marks records that could not be normalized on
	// any similarity field and were isolated rather than merged by guesswork.
	MatchBasisSingletonFallback MatchBasis = "singleton-fallback"
)

// DuplicateCluster is a group of records judged to represent the same
// posting. Immutable after the deduplicator run that created it.
type DuplicateCluster struct {
	// CanonicalID is the member chosen to represent the cluster. Selection
	// never edits fields: it picks the best-populated existing record.
	CanonicalID string `json:"canonicalId"`
	// Members lists all record IDs folded into the cluster, canonical first,
	// remainder in lexicographic order.
	Members []string   `json:"members"`
	Basis   MatchBasis `json:"matchBasis"`
	// Score is the composite similarity that triggered a fuzzy merge; zero for
	// other bases.
	Score float64 `json:"score,omitempty"`
	// FieldSimilarities breaks the fuzzy score down per dimension for the
	// duplicate log.
	FieldSimilarities map[string]float64 `json:"fieldSimilarities,omitempty"`
}

// NearMiss is a record pair that scored inside the audit band just below the
// merge threshold. Near misses are reported, never auto-merged.
type NearMiss struct {
	RecordA string  `json:"recordA"`
	RecordB string  `json:"recordB"`
	Score   float64 `json:"score"`
}

// DedupReport aggregates one deduplicator run for auditability.
type DedupReport struct {
	InputRecords    int        `json:"inputRecords"`
	Clusters        int        `json:"clusters"`
	ExactMerged     int        `json:"exactMerged"`
	FuzzyMerged     int        `json:"fuzzyMerged"`
	Singletons      int        `json:"singletons"`
	FallbackRecords int        `json:"fallbackRecords"`
	NearMisses      []NearMiss `json:"nearMisses,omitempty"`
	DurationSeconds float64    `json:"durationSeconds"`
}
