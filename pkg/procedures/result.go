package procedures

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Row is one streamed community assignment.
type Row struct {
	NodeID      int64
	CommunityID int64
	// IntermediateCommunityIDs holds the per-level ids, oldest first, when
	// intermediate communities were requested.
	IntermediateCommunityIDs []int64
}

// ScoreRow is one streamed centrality score.
type ScoreRow struct {
	NodeID int64
	Score  float64
}

// Distribution summarizes community sizes.
type Distribution struct {
	Min  int64   `json:"min"`
	Max  int64   `json:"max"`
	Mean float64 `json:"mean"`
	P50  float64 `json:"p50"`
	P75  float64 `json:"p75"`
	P90  float64 `json:"p90"`
	P95  float64 `json:"p95"`
	P99  float64 `json:"p99"`
	P999 float64 `json:"p999"`
}

// sizeDistribution computes the distribution of the given community sizes.
// It returns nil for no communities.
func sizeDistribution(sizes []int64) *Distribution {
	if len(sizes) == 0 {
		return nil
	}
	values := make([]float64, len(sizes))
	for i, s := range sizes {
		values[i] = float64(s)
	}
	slices.Sort(values)
	q := func(p float64) float64 { return stat.Quantile(p, stat.Empirical, values, nil) }
	return &Distribution{
		Min:  int64(values[0]),
		Max:  int64(values[len(values)-1]),
		Mean: stat.Mean(values, nil),
		P50:  q(0.5),
		P75:  q(0.75),
		P90:  q(0.9),
		P95:  q(0.95),
		P99:  q(0.99),
		P999: q(0.999),
	}
}

// communitySizes counts the members of every community id.
func communitySizes(ids []int64) []int64 {
	counts := make(map[int64]int64)
	for _, id := range ids {
		counts[id]++
	}
	sizes := make([]int64, 0, len(counts))
	for _, c := range counts {
		sizes = append(sizes, c)
	}
	return sizes
}

// Summary describes a finished run. Fields that do not apply to an
// algorithm stay zero.
type Summary struct {
	JobID     string `json:"jobId"`
	Algorithm string `json:"algorithm"`
	Mode      Mode   `json:"mode"`

	NodeCount         int64 `json:"nodeCount"`
	RelationshipCount int64 `json:"relationshipCount"`

	CommunityCount        int64         `json:"communityCount"`
	CommunityDistribution *Distribution `json:"communityDistribution,omitempty"`
	Modularity            float64       `json:"modularity"`
	Modularities          []float64     `json:"modularities,omitempty"`
	Levels                int           `json:"ranLevels,omitempty"`
	Iterations            int           `json:"ranIterations,omitempty"`
	DidConverge           bool          `json:"didConverge"`

	PropertiesWritten int64 `json:"nodePropertiesWritten"`

	PreProcessingTime time.Duration `json:"preProcessingTime"`
	ComputeTime       time.Duration `json:"computeTime"`
	WriteTime         time.Duration `json:"writeTime"`
}

// Result is what a procedure returns. Rows and Scores are only filled in
// Stream mode.
type Result struct {
	Summary Summary
	Rows    []Row
	Scores  []ScoreRow
}

// communityRows builds one row per node. intermediate may be nil.
func communityRows(ids []int64, intermediate func(node int64) []int64) []Row {
	rows := make([]Row, len(ids))
	for node, id := range ids {
		rows[node] = Row{NodeID: int64(node), CommunityID: id}
		if intermediate != nil {
			rows[node].IntermediateCommunityIDs = intermediate(int64(node))
		}
	}
	return rows
}

func scoreRows(scores []float64) []ScoreRow {
	rows := make([]ScoreRow, len(scores))
	for node, s := range scores {
		rows[node] = ScoreRow{NodeID: int64(node), Score: s}
	}
	return rows
}
