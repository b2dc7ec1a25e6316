package cluster

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// blobs returns len(centers)*per points drawn around each center with the given spread.
func blobs(t *testing.T, seed int64, per int, spread float64, centers ...[]float64) *Matrix {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	var rows [][]float64
	for _, c := range centers {
		for i := 0; i < per; i++ {
			row := make([]float64, len(c))
			for j := range c {
				row[j] = c[j] + rng.NormFloat64()*spread
			}
			rows = append(rows, row)
		}
	}
	m, err := NewMatrix(nil, rows)
	require.NoError(t, err)
	return m
}

func twoBlobs(t *testing.T) *Matrix {
	return blobs(t, 7, 50, 0.5, []float64{0, 0}, []float64{10, 10})
}
