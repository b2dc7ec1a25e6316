package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ScalerKind selects the scaling transform.
type ScalerKind string

const (
	// Standard centers on the mean and divides by the population standard deviation.
	Standard ScalerKind = "standard"
	// MinMax maps each column onto [0, 1].
	MinMax ScalerKind = "minmax"
	// Robust centers on the median and divides by the interquartile range.
	Robust ScalerKind = "robust"
	// NoScaling passes values through unchanged.
	NoScaling ScalerKind = "none"
)

// ParseScalerKind validates a scaler name.
func ParseScalerKind(s string) (ScalerKind, error) {
	k := ScalerKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Standard, MinMax, Robust, NoScaling:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScaler, s)
}

// Scaler is a fitted per-column affine transform: scaled = (x - Center) / Scale.
type Scaler struct {
	Kind    ScalerKind `json:"kind"`
	Columns []string   `json:"columns"`
	Center  []float64  `json:"center"`
	Scale   []float64  `json:"scale"`
}

// Scale fits a scaler of the given kind on the named numeric columns (all numeric columns
// when cols is empty) and returns the scaled feature matrix. Missing values fail with
// ErrTransform. A column without spread is divided by 1.
func Scale(f *Frame, cols []string, kind ScalerKind) (*cluster.Matrix, *Scaler, error) {
	if kind == "" {
		kind = Standard
	}
	if _, err := ParseScalerKind(string(kind)); err != nil {
		return nil, nil, err
	}
	cs, err := f.numeric(cols)
	if err != nil {
		return nil, nil, err
	}
	if len(cs) == 0 {
		return nil, nil, fmt.Errorf("%w: nothing to scale", ErrNoNumericColumns)
	}
	if f.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: no rows to scale", ErrEmptyData)
	}

	sc := &Scaler{
		Kind:    kind,
		Columns: make([]string, len(cs)),
		Center:  make([]float64, len(cs)),
		Scale:   make([]float64, len(cs)),
	}
	for j, c := range cs {
		if n := countNaN(c.Num); n > 0 {
			return nil, nil, fmt.Errorf("%w: column %q has %d missing value(s); clean the data first", ErrTransform, c.Name, n)
		}
		sc.Columns[j] = c.Name
		sc.Center[j], sc.Scale[j] = fitColumn(c.Num, kind)
	}

	rows := make([][]float64, f.Len())
	for i := range rows {
		row := make([]float64, len(cs))
		for j, c := range cs {
			row[j] = c.Num[i]
		}
		rows[i] = sc.Transform(row)
	}
	m, err := cluster.NewMatrix(sc.Columns, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransform, err)
	}
	return m, sc, nil
}

func fitColumn(vals []float64, kind ScalerKind) (center, scale float64) {
	center, scale = 0, 1
	switch kind {
	case Standard:
		mean, variance := stat.PopMeanVariance(vals, nil)
		center, scale = mean, math.Sqrt(variance)
	case MinMax:
		lo, hi := floats.Min(vals), floats.Max(vals)
		center, scale = lo, hi-lo
	case Robust:
		sorted := append([]float64(nil), vals...)
		sort.Float64s(sorted)
		center = quantile(sorted, 0.5)
		scale = quantile(sorted, 0.75) - quantile(sorted, 0.25)
	}
	if scale == 0 || math.IsNaN(scale) {
		scale = 1
	}
	return center, scale
}

// Transform scales one row in the fitted column order.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Center[j]) / s.Scale[j]
	}
	return out
}

// Inverse maps one scaled row back to original units.
func (s *Scaler) Inverse(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = v*s.Scale[j] + s.Center[j]
	}
	return out
}
