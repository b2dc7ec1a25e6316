package dataset

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScaleKinds(t *testing.T) {
	f := mustLoad(t, "a,b,c\n1,10,5\n2,20,5\n3,30,5\n4,40,5\n")
	cases := []struct {
		kind ScalerKind
		col0 []float64
	}{
		{Standard, []float64{-3 / math.Sqrt(5), -1 / math.Sqrt(5), 1 / math.Sqrt(5), 3 / math.Sqrt(5)}},
		{MinMax, []float64{0, 1.0 / 3, 2.0 / 3, 1}},
		{Robust, []float64{-1, -1.0 / 3, 1.0 / 3, 1}},
		{NoScaling, []float64{1, 2, 3, 4}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			m, sc, err := Scale(f, nil, tc.kind)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b", "c"}, m.Columns)
			for i, want := range tc.col0 {
				assert.InDelta(t, want, m.Rows[i][0], 1e-12)
				// b is a multiple of a, so both scale identically
				if tc.kind != NoScaling {
					assert.InDelta(t, m.Rows[i][0], m.Rows[i][1], 1e-12)
				}
			}
			for i, row := range m.Rows {
				back := sc.Inverse(row)
				a, _ := f.Column("a")
				c, _ := f.Column("c")
				assert.InDelta(t, a.Num[i], back[0], 1e-9)
				assert.InDelta(t, c.Num[i], back[2], 1e-9)
			}
		})
	}
}

func TestScaleRejectsMissing(t *testing.T) {
	f := mustLoad(t, "a\n1\nNA\n3\n")
	_, _, err := Scale(f, nil, Standard)
	assert.ErrorIs(t, err, ErrTransform)
}

func TestScaleSelectedColumns(t *testing.T) {
	f := mustLoad(t, "a,b,name\n1,2,x\n3,4,y\n")
	m, _, err := Scale(f, []string{"b"}, MinMax)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, m.Columns)
	assert.Equal(t, [][]float64{{0}, {1}}, m.Rows)

	_, _, err = Scale(f, []string{"name"}, MinMax)
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, _, err = Scale(f, nil, "zscore")
	assert.ErrorIs(t, err, ErrUnknownScaler)
}
