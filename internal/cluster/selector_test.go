package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectOptimalKTwoBlobs(t *testing.T) {
	m := twoBlobs(t)

	k, rep, err := SelectOptimalK(m, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, 2, k)
	assert.Equal(t, k, rep.OptimalK)
	require.Len(t, rep.Rows, 3)
	assert.Len(t, rep.InertiaReduction, 2)
	assert.Greater(t, rep.Rows[0].Silhouette, 0.5)
	assert.False(t, rep.SmallestDiscarded)
	for i, row := range rep.Rows {
		assert.Equal(t, 2+i, row.K)
	}
}

func TestSelectNormalizedScoresInUnitRange(t *testing.T) {
	m := blobs(t, 11, 30, 1.2, []float64{0, 0}, []float64{5, 0}, []float64{0, 5}, []float64{5, 5})

	k, rep, err := SelectOptimalK(m, 2, 7)
	require.NoError(t, err)

	assert.Len(t, rep.Rows, 5)
	assert.Len(t, rep.InertiaReduction, 4)
	assert.GreaterOrEqual(t, k, 2)
	assert.Less(t, k, 7)
	for _, row := range rep.Rows {
		for _, v := range []float64{row.SilhouetteNorm, row.DaviesBouldinNorm, row.CalinskiHarabaszNorm, row.Composite} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func TestSelectSingleCandidate(t *testing.T) {
	m := twoBlobs(t)

	k, rep, err := SelectOptimalK(m, 2, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, k)
	require.Len(t, rep.Rows, 1)
	assert.Empty(t, rep.InertiaReduction)
	row := rep.Rows[0]
	assert.Equal(t, 0.5, row.SilhouetteNorm)
	assert.Equal(t, 0.5, row.DaviesBouldinNorm)
	assert.Equal(t, 0.5, row.CalinskiHarabaszNorm)
	assert.Equal(t, 0.5, row.Composite)
}

func TestSelectDeterministic(t *testing.T) {
	m := blobs(t, 5, 25, 1, []float64{0, 0, 0}, []float64{4, 4, 4}, []float64{-4, 4, 0})

	k1, rep1, err := SelectOptimalK(m, 2, 6)
	require.NoError(t, err)
	k2, rep2, err := SelectOptimalK(m, 2, 6)
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.Equal(t, rep1, rep2)
}

func TestSelectInvalidRange(t *testing.T) {
	m := twoBlobs(t)
	cases := []struct {
		name       string
		kMin, kMax int
	}{
		{"k_min below two", 1, 4},
		{"empty range", 3, 3},
		{"inverted range", 5, 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := SelectOptimalK(m, tc.kMin, tc.kMax)
			assert.ErrorIs(t, err, ErrInvalidRange)
		})
	}

	tiny, err := NewMatrix(nil, [][]float64{{0}, {1}})
	require.NoError(t, err)
	_, _, err = SelectOptimalK(tiny, 3, 5)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestSelectTooFewRowsForMetrics(t *testing.T) {
	m, err := NewMatrix(nil, [][]float64{{0}, {1}, {5}, {6}, {10}})
	require.NoError(t, err)

	_, _, err = SelectOptimalK(m, 2, 5)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, minMax([]float64{2, 3, 4}))
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, minMax([]float64{7, 7, 7}))
}

func TestInertiaReduction(t *testing.T) {
	rows := []SweepRow{{Inertia: 200}, {Inertia: 100}, {Inertia: 0}, {Inertia: 0}}
	assert.Equal(t, []float64{50, 100, 0}, inertiaReduction(rows))
}

func TestPickCandidate(t *testing.T) {
	cases := []struct {
		name      string
		composite []float64
		want      int
		discarded bool
	}{
		{"smallest clearly best", []float64{1.0, 0.5, 0.2}, 2, false},
		{"smallest within five percent", []float64{1.0, 0.97, 0.2}, 3, true},
		{"restricted argmax skips k+1", []float64{1.0, 0.96, 0.99}, 4, true},
		{"gap above five percent keeps smallest", []float64{1.0, 0.94, 0.2}, 2, false},
		{"interior best", []float64{0.4, 0.9, 0.6}, 3, false},
		{"ties resolve to first", []float64{0.3, 0.8, 0.8}, 3, false},
	}
	ks := []int{2, 3, 4}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, discarded := pickCandidate(ks, tc.composite)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.discarded, discarded)
		})
	}
}
