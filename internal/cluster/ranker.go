package cluster

import (
	"fmt"
	"sort"
)

const (
	// imbalanceOnset is the largest cluster fraction that carries no penalty.
	imbalanceOnset = 0.8
	// imbalanceWeight scales the penalty against the average rank.
	imbalanceWeight = 10.0
)

// Candidate is one named clustering result entered into a comparison.
type Candidate struct {
	Name   string
	Result *Result
}

// ComparisonRow is the scoring of one candidate.
type ComparisonRow struct {
	Method           string  `json:"method"`
	Silhouette       float64 `json:"silhouette"`
	DaviesBouldin    float64 `json:"davies_bouldin"`
	CalinskiHarabasz float64 `json:"calinski_harabasz"`
	MaxClusterPct    float64 `json:"max_cluster_pct"`
	AverageRank      float64 `json:"average_rank"`
	Penalty          float64 `json:"penalty"`
	FinalScore       float64 `json:"final_score"`
}

// Comparison lists candidates ordered from best to worst final score.
type Comparison struct {
	Rows []ComparisonRow `json:"rows"`
	Best string          `json:"best"`
}

// CandidatesFor wraps results keyed by method in the order of methods.
func CandidatesFor(methods []Method, results []*Result) []Candidate {
	out := make([]Candidate, 0, len(results))
	for i, r := range results {
		if i >= len(methods) {
			break
		}
		out = append(out, Candidate{Name: methods[i].String(), Result: r})
	}
	return out
}

// ImbalancePenalty ramps linearly from 0 at a largest cluster of 80% to 1 at 100%.
func ImbalancePenalty(maxFraction float64) float64 {
	if maxFraction <= imbalanceOnset {
		return 0
	}
	return (maxFraction - imbalanceOnset) / (1 - imbalanceOnset)
}

// RankMethods ranks candidates on silhouette (descending), Davies–Bouldin (ascending)
// and Calinski–Harabasz (descending), adds the imbalance penalty, and returns the name
// of the best candidate. Ties in the final score keep input order.
func RankMethods(cands []Candidate) (string, *Comparison, error) {
	if len(cands) == 0 {
		return "", nil, ErrNoCandidates
	}
	n := len(cands)
	sil := make([]float64, n)
	db := make([]float64, n)
	ch := make([]float64, n)
	for i, c := range cands {
		if c.Result == nil {
			return "", nil, fmt.Errorf("%w: candidate %q has no result", ErrNoCandidates, c.Name)
		}
		sil[i] = c.Result.Metrics.Silhouette
		db[i] = c.Result.Metrics.DaviesBouldin
		ch[i] = c.Result.Metrics.CalinskiHarabasz
	}
	silRank := averageRanks(sil, true)
	dbRank := averageRanks(db, false)
	chRank := averageRanks(ch, true)

	rows := make([]ComparisonRow, n)
	for i, c := range cands {
		penalty := ImbalancePenalty(c.Result.MaxClusterPct)
		avg := (silRank[i] + dbRank[i] + chRank[i]) / 3
		rows[i] = ComparisonRow{
			Method:           c.Name,
			Silhouette:       sil[i],
			DaviesBouldin:    db[i],
			CalinskiHarabasz: ch[i],
			MaxClusterPct:    c.Result.MaxClusterPct,
			AverageRank:      avg,
			Penalty:          penalty,
			FinalScore:       avg + imbalanceWeight*penalty,
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].FinalScore < rows[j].FinalScore })
	return rows[0].Method, &Comparison{Rows: rows, Best: rows[0].Method}, nil
}

// averageRanks assigns 1-based ranks; equal values share the mean of their positions.
func averageRanks(values []float64, descending bool) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if descending {
			return values[idx[a]] > values[idx[b]]
		}
		return values[idx[a]] < values[idx[b]]
	})
	ranks := make([]float64, len(values))
	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && values[idx[end]] == values[idx[start]] {
			end++
		}
		// positions start..end-1 are 1-based start+1..end
		shared := float64(start+1+end) / 2
		for p := start; p < end; p++ {
			ranks[idx[p]] = shared
		}
		start = end
	}
	return ranks
}
