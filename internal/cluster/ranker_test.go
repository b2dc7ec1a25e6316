package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(name string, sil, db, ch, maxPct float64) Candidate {
	return Candidate{Name: name, Result: &Result{
		Metrics:       Metrics{Silhouette: sil, DaviesBouldin: db, CalinskiHarabasz: ch},
		MaxClusterPct: maxPct,
	}}
}

func TestRankMethodsOrdering(t *testing.T) {
	best, cmp, err := RankMethods([]Candidate{
		candidate("kmeans", 0.4, 1.0, 100, 0.5),
		candidate("hierarchical", 0.6, 0.8, 150, 0.5),
		candidate("hierarchical_complete", 0.5, 0.9, 120, 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "hierarchical", best)
	assert.Equal(t, best, cmp.Best)
	require.Len(t, cmp.Rows, 3)
	assert.Equal(t, "hierarchical", cmp.Rows[0].Method)
	assert.Equal(t, "hierarchical_complete", cmp.Rows[1].Method)
	assert.Equal(t, "kmeans", cmp.Rows[2].Method)
	assert.Equal(t, 1.0, cmp.Rows[0].AverageRank)
	assert.Equal(t, 3.0, cmp.Rows[2].AverageRank)
	for i := 1; i < len(cmp.Rows); i++ {
		assert.LessOrEqual(t, cmp.Rows[i-1].FinalScore, cmp.Rows[i].FinalScore)
	}
}

func TestRankMethodsImbalancePenalty(t *testing.T) {
	// identical metrics give equal average ranks, so only the penalty separates them
	best, cmp, err := RankMethods([]Candidate{
		candidate("imbalanced", 0.5, 1.0, 100, 0.95),
		candidate("balanced", 0.5, 1.0, 100, 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "balanced", best)
	require.Len(t, cmp.Rows, 2)
	assert.Equal(t, 0.0, cmp.Rows[0].Penalty)
	assert.InDelta(t, 0.75, cmp.Rows[1].Penalty, 1e-12)
	assert.InDelta(t, cmp.Rows[0].AverageRank+7.5, cmp.Rows[1].FinalScore, 1e-12)
}

func TestRankMethodsTiesKeepInputOrder(t *testing.T) {
	best, cmp, err := RankMethods([]Candidate{
		candidate("first", 0.5, 1.0, 100, 0.5),
		candidate("second", 0.5, 1.0, 100, 0.5),
	})
	require.NoError(t, err)

	assert.Equal(t, "first", best)
	assert.Equal(t, 1.5, cmp.Rows[0].AverageRank)
	assert.Equal(t, 1.5, cmp.Rows[1].AverageRank)
	assert.Equal(t, "second", cmp.Rows[1].Method)
}

func TestRankMethodsSingleCandidate(t *testing.T) {
	best, cmp, err := RankMethods([]Candidate{candidate("only", 0.1, 2, 10, 0.99)})
	require.NoError(t, err)
	assert.Equal(t, "only", best)
	require.Len(t, cmp.Rows, 1)
	assert.Equal(t, 1.0, cmp.Rows[0].AverageRank)
}

func TestRankMethodsEmpty(t *testing.T) {
	_, _, err := RankMethods(nil)
	assert.ErrorIs(t, err, ErrNoCandidates)

	_, _, err = RankMethods([]Candidate{{Name: "missing"}})
	assert.ErrorIs(t, err, ErrNoCandidates)
}

func TestAverageRanks(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, averageRanks([]float64{9, 5, 5, 1}, true))
	assert.Equal(t, []float64{4, 2.5, 2.5, 1}, averageRanks([]float64{9, 5, 5, 1}, false))
}

func TestImbalancePenalty(t *testing.T) {
	assert.Equal(t, 0.0, ImbalancePenalty(0.5))
	assert.Equal(t, 0.0, ImbalancePenalty(0.8))
	assert.InDelta(t, 0.75, ImbalancePenalty(0.95), 1e-12)
	assert.InDelta(t, 1.0, ImbalancePenalty(1.0), 1e-12)
}

func TestRankMethodsOnRealRuns(t *testing.T) {
	m := twoBlobs(t)
	var cands []Candidate
	for _, method := range Methods() {
		res, err := Run(m, 2, method)
		require.NoError(t, err)
		cands = append(cands, Candidate{Name: method.String(), Result: res})
	}
	best, cmp, err := RankMethods(cands)
	require.NoError(t, err)
	assert.Equal(t, cmp.Rows[0].Method, best)
	assert.Len(t, cmp.Rows, len(Methods()))
}
