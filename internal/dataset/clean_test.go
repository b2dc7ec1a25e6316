package dataset

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeQuality(t *testing.T) {
	f := mustLoad(t, "id,x,label\n1,2,a\n1,2,a\n2,,b\n3,4,\n")
	q := AnalyzeQuality(f)

	assert.Equal(t, 4, q.Rows)
	assert.Equal(t, 3, q.Columns)
	assert.Equal(t, 1, q.Duplicates)
	assert.Equal(t, []string{"id", "x"}, q.Numeric)
	assert.Equal(t, []string{"label"}, q.Categorical)
	assert.Equal(t, MissingCount{Column: "x", Count: 1, Pct: 25}, q.Missing[1])
	assert.Equal(t, 2, q.TotalMissing())
}

func TestCleanFillMethods(t *testing.T) {
	csv := "x\n1\nNA\n3\nNA\n10\n"
	cases := []struct {
		method FillMethod
		want   []float64
	}{
		{FillMean, []float64{1, 14.0 / 3, 3, 14.0 / 3, 10}},
		{FillMedian, []float64{1, 3, 3, 3, 10}},
		{FillZero, []float64{1, 0, 3, 0, 10}},
		{FillFFill, []float64{1, 1, 3, 3, 10}},
		{FillBFill, []float64{1, 3, 3, 10, 10}},
		{FillDrop, []float64{1, 3, 10}},
	}
	for _, tc := range cases {
		t.Run(string(tc.method), func(t *testing.T) {
			f := mustLoad(t, csv)
			out, rep, err := Clean(f, CleanOptions{Fill: tc.method})
			require.NoError(t, err)
			x, _ := out.Column("x")
			assert.InDeltaSlice(t, tc.want, x.Num, 1e-12)
			assert.Equal(t, len(tc.want), rep.RowsOut)
		})
	}
}

func TestCleanFillEdgesFallBack(t *testing.T) {
	f := mustLoad(t, "x,y\n,1\n2,2\n,3\n")
	out, _, err := Clean(f, CleanOptions{Fill: FillFFill})
	require.NoError(t, err)
	x, _ := out.Column("x")
	assert.Equal(t, []float64{2, 2, 2}, x.Num)
}

func TestCleanNoneStillFillsWithMedian(t *testing.T) {
	f := mustLoad(t, "x\n1\nNA\n5\n7\n")
	out, rep, err := Clean(f, CleanOptions{Fill: FillNone})
	require.NoError(t, err)
	x, _ := out.Column("x")
	assert.Equal(t, []float64{1, 5, 5, 7}, x.Num)
	assert.Equal(t, 1, rep.Filled)
}

func TestCleanDoesNotModifyInput(t *testing.T) {
	f := mustLoad(t, "x\n1\nNA\n1\n")
	_, _, err := Clean(f, DefaultCleanOptions())
	require.NoError(t, err)
	x, _ := f.Column("x")
	assert.Equal(t, 3, f.Len())
	assert.True(t, math.IsNaN(x.Num[1]))
}

func TestCleanDuplicatesAndOutliers(t *testing.T) {
	var b strings.Builder
	b.WriteString("x,y\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i%10, i)
	}
	b.WriteString("1000,5\n")
	b.WriteString("0,0\n")
	f := mustLoad(t, b.String())

	out, rep, err := Clean(f, CleanOptions{RemoveDuplicates: true, Fill: FillMedian, RemoveOutliers: true, OutlierThreshold: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Duplicates)
	assert.Equal(t, 1, rep.Outliers)
	assert.Equal(t, 30, out.Len())
	x, _ := out.Column("x")
	for _, v := range x.Num {
		assert.Less(t, v, 1000.0)
	}
}

func TestCleanUnknownFill(t *testing.T) {
	f := mustLoad(t, "x\n1\n")
	_, _, err := Clean(f, CleanOptions{Fill: "interpolate"})
	assert.ErrorIs(t, err, ErrUnknownFillMethod)
}
