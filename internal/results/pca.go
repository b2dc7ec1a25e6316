package results

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"gonum.org/v1/gonum/mat"
)

// Projection is a 2-D principal component view of a feature matrix.
type Projection struct {
	Points [][2]float64 `json:"points"`
	// Explained holds the variance ratio of the two components.
	Explained [2]float64 `json:"explained"`
}

// Project2D projects the rows of m onto their first two principal components. Component
// signs are fixed so the largest loading of each score column is positive.
func Project2D(m *cluster.Matrix) (*Projection, error) {
	if m == nil || m.Len() < 2 {
		return nil, fmt.Errorf("%w: need at least 2 rows to project", cluster.ErrInvalidMatrix)
	}
	n, d := m.Len(), m.Dim()
	x := mat.NewDense(n, d, nil)
	for j := 0; j < d; j++ {
		var mean float64
		for i := 0; i < n; i++ {
			mean += m.Rows[i][j]
		}
		mean /= float64(n)
		for i := 0; i < n; i++ {
			x.Set(i, j, m.Rows[i][j]-mean)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: singular value decomposition failed", cluster.ErrDegenerateInput)
	}
	values := svd.Values(nil)
	var u mat.Dense
	svd.UTo(&u)

	var total float64
	for _, s := range values {
		total += s * s
	}
	p := &Projection{Points: make([][2]float64, n)}
	for c := 0; c < 2 && c < len(values); c++ {
		if total > 0 {
			p.Explained[c] = values[c] * values[c] / total
		}
		sign := 1.0
		var peak float64
		for i := 0; i < n; i++ {
			if v := u.At(i, c); math.Abs(v) > math.Abs(peak) {
				peak = v
			}
		}
		if peak < 0 {
			sign = -1
		}
		for i := 0; i < n; i++ {
			p.Points[i][c] = sign * u.At(i, c) * values[c]
		}
	}
	return p, nil
}
