// Package dedup clusters job records collected across extraction sessions
// into duplicate groups and picks one canonical record per group. Cluster
// assignment is deterministic for a fixed input: pairs are processed in
// lexicographic record-id order and ties in canonical selection break on
// stable keys.
package dedup

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/job-consolidator/internal/similarity"
	"github.com/jonathan/job-consolidator/internal/types"
)

// DefaultThreshold is the composite similarity at or above which a pair is
// merged during the fuzzy pass.
const DefaultThreshold = 0.80

// DefaultNearMissBand is how far below the threshold a pair may score and
// still be reported for audit.
const DefaultNearMissBand = 0.10

// Options tunes a deduplicator run.
type Options struct {
	Weights       similarity.Weights
	Threshold     float64
	NearMissBand  float64
	DateDecayDays int
}

// DefaultOptions returns the standard dedup configuration.
func DefaultOptions() Options {
	return Options{
		Weights:       similarity.DefaultWeights(),
		Threshold:     DefaultThreshold,
		NearMissBand:  DefaultNearMissBand,
		DateDecayDays: similarity.DefaultDateDecayDays,
	}
}

// Result is the immutable outcome of one deduplicator run.
type Result struct {
	Clusters []types.DuplicateCluster
	// Records holds the canonical record of each cluster, in cluster order.
	Records []types.JobRecord
	Report  types.DedupReport
}

type pairMerge struct {
	a, b      int
	score     float64
	breakdown map[string]float64
}

// Run executes the exact pass, the company-bucketed fuzzy pass, and canonical
// selection over the full record set. The clustering completes as a unit; no
// partially merged cluster set is ever returned.
func Run(records []types.JobRecord, opts Options) Result {
	start := time.Now()
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Weights == (similarity.Weights{}) {
		opts.Weights = similarity.DefaultWeights()
	}

	n := len(records)
	uf := newUnionFind(n)

	// Exact pass: identical normalized source URLs always share a cluster,
	// regardless of how the rest of the fields compare.
	urlGroups := make(map[string][]int)
	for i := range records {
		if key := canonicalURL(records[i].SourceURL); key != "" {
			urlGroups[key] = append(urlGroups[key], i)
		}
	}
	exactClustered := make([]bool, n)
	exactMerged := 0
	for _, group := range urlGroups {
		if len(group) < 2 {
			continue
		}
		for _, idx := range group[1:] {
			uf.union(group[0], idx)
		}
		for _, idx := range group {
			exactClustered[idx] = true
		}
		exactMerged += len(group) - 1
	}

	// Fuzzy pass: bucket the remaining records by canonical company. The
	// bucket index is built once, read-only afterwards.
	buckets := make(map[string][]int)
	fallback := make([]bool, n)
	for i := range records {
		if exactClustered[i] {
			continue
		}
		company, okCompany := companyKey(&records[i])
		_, okTitle := records[i].Normalized(types.FieldTitle)
		_, okCity := cityPresent(&records[i])
		if !okCompany && !okTitle && !okCity {
			// Nothing to compare on: isolate rather than merge by guesswork.
			fallback[i] = true
			continue
		}
		if okCompany {
			buckets[company] = append(buckets[company], i)
		}
	}

	var merges []pairMerge
	var nearMisses []types.NearMiss
	fuzzyMerged := 0
	for _, company := range sortedKeys(buckets) {
		bucket := buckets[company]
		sort.Slice(bucket, func(i, j int) bool {
			return records[bucket[i]].ID < records[bucket[j]].ID
		})
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				a, b := bucket[i], bucket[j]
				score, breakdown := similarity.Composite(&records[a], &records[b], opts.Weights)
				switch {
				case score >= opts.Threshold:
					if uf.find(a) != uf.find(b) {
						fuzzyMerged++
					}
					uf.union(a, b)
					merges = append(merges, pairMerge{a: a, b: b, score: score, breakdown: breakdown})
				case score >= opts.Threshold-opts.NearMissBand:
					nearMisses = append(nearMisses, types.NearMiss{
						RecordA: records[a].ID,
						RecordB: records[b].ID,
						Score:   score,
					})
				}
			}
		}
	}

	return assemble(records, uf, exactClustered, fallback, merges, nearMisses, exactMerged, fuzzyMerged, start)
}

func assemble(records []types.JobRecord, uf *unionFind, exactClustered, fallback []bool,
	merges []pairMerge, nearMisses []types.NearMiss, exactMerged, fuzzyMerged int, start time.Time) Result {

	components := make(map[int][]int)
	for i := range records {
		root := uf.find(i)
		components[root] = append(components[root], i)
	}

	// Best merging pair per component drives the reported score; the scan
	// order of merges is already deterministic.
	bestMerge := make(map[int]pairMerge)
	for _, m := range merges {
		root := uf.find(m.a)
		if prev, ok := bestMerge[root]; !ok || m.score > prev.score {
			bestMerge[root] = m
		}
	}

	clusters := make([]types.DuplicateCluster, 0, len(components))
	singletons := 0
	fallbackCount := 0
	for _, root := range sortedKeys(components) {
		members := components[root]
		canonical := selectCanonical(records, members)

		cluster := types.DuplicateCluster{
			CanonicalID: records[canonical].ID,
			Members:     orderMembers(records, members, canonical),
		}
		switch {
		case len(members) == 1 && fallback[members[0]]:
			cluster.Basis = types.MatchBasisSingletonFallback
			fallbackCount++
		case len(members) == 1:
			cluster.Basis = types.MatchBasisSingleton
			singletons++
		case exactClustered[members[0]]:
			cluster.Basis = types.MatchBasisExactURL
		default:
			cluster.Basis = types.MatchBasisFuzzy
			if m, ok := bestMerge[root]; ok {
				cluster.Score = m.score
				cluster.FieldSimilarities = m.breakdown
			}
		}
		clusters = append(clusters, cluster)
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i].CanonicalID < clusters[j].CanonicalID
	})

	deduped := make([]types.JobRecord, 0, len(clusters))
	byID := make(map[string]int, len(records))
	for i := range records {
		byID[records[i].ID] = i
	}
	for _, c := range clusters {
		deduped = append(deduped, records[byID[c.CanonicalID]])
	}

	sort.Slice(nearMisses, func(i, j int) bool {
		if nearMisses[i].RecordA != nearMisses[j].RecordA {
			return nearMisses[i].RecordA < nearMisses[j].RecordA
		}
		return nearMisses[i].RecordB < nearMisses[j].RecordB
	})

	return Result{
		Clusters: clusters,
		Records:  deduped,
		Report: types.DedupReport{
			InputRecords:    len(records),
			Clusters:        len(clusters),
			ExactMerged:     exactMerged,
			FuzzyMerged:     fuzzyMerged,
			Singletons:      singletons,
			FallbackRecords: fallbackCount,
			NearMisses:      nearMisses,
			DurationSeconds: time.Since(start).Seconds(),
		},
	}
}

// selectCanonical picks the best-populated member: most usable normalized
// fields, then highest confidence sum, then earliest session id, then
// smallest record id. Fields are never merged across members.
func selectCanonical(records []types.JobRecord, members []int) int {
	best := members[0]
	for _, idx := range members[1:] {
		if better(&records[idx], &records[best]) {
			best = idx
		}
	}
	return best
}

func better(a, b *types.JobRecord) bool {
	pa, pb := a.PopulatedFieldCount(), b.PopulatedFieldCount()
	if pa != pb {
		return pa > pb
	}
	ca, cb := a.ConfidenceSum(), b.ConfidenceSum()
	if ca != cb {
		return ca > cb
	}
	if a.SessionID != b.SessionID {
		return a.SessionID < b.SessionID
	}
	return a.ID < b.ID
}

func orderMembers(records []types.JobRecord, members []int, canonical int) []string {
	ids := make([]string, 0, len(members))
	for _, idx := range members {
		if idx != canonical {
			ids = append(ids, records[idx].ID)
		}
	}
	sort.Strings(ids)
	return append([]string{records[canonical].ID}, ids...)
}

// canonicalURL normalizes a source URL for the exact pass: scheme and host
// are case-insensitive, fragments are noise, and a trailing slash does not
// make a different posting.
func canonicalURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	return u.String()
}

func companyKey(r *types.JobRecord) (string, bool) {
	v, ok := r.Normalized(types.FieldCompany)
	if !ok || v.Text == "" {
		return "", false
	}
	return v.Text, true
}

func cityPresent(r *types.JobRecord) (string, bool) {
	v, ok := r.Normalized(types.FieldLocation)
	if !ok || v.Location == nil || v.Location.City == "" {
		return "", false
	}
	return v.Location.City, true
}

func sortedKeys[K int | string, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
