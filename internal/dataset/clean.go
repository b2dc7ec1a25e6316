package dataset

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// FillMethod is the strategy for missing numeric cells.
type FillMethod string

const (
	FillMean   FillMethod = "mean"
	FillMedian FillMethod = "median"
	FillZero   FillMethod = "zero"
	FillFFill  FillMethod = "ffill"
	FillBFill  FillMethod = "bfill"
	FillDrop   FillMethod = "drop"
	FillNone   FillMethod = "none"
)

// FillMethods lists the accepted fill methods.
func FillMethods() []FillMethod {
	return []FillMethod{FillMean, FillMedian, FillZero, FillFFill, FillBFill, FillDrop, FillNone}
}

// ParseFillMethod validates a fill method name.
func ParseFillMethod(s string) (FillMethod, error) {
	m := FillMethod(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range FillMethods() {
		if v == m {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFillMethod, s)
}

// CleanOptions controls Clean.
type CleanOptions struct {
	RemoveDuplicates bool
	Fill             FillMethod
	RemoveOutliers   bool
	// OutlierThreshold is the |z| at or above which a row is dropped.
	OutlierThreshold float64
}

// DefaultCleanOptions mirrors the defaults of the interactive cleaning step.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{RemoveDuplicates: true, Fill: FillMedian, RemoveOutliers: true, OutlierThreshold: 3.0}
}

// CleanReport counts what Clean changed.
type CleanReport struct {
	RowsIn            int `json:"rows_in"`
	Duplicates        int `json:"duplicates_removed"`
	Filled            int `json:"cells_filled"`
	DroppedForMissing int `json:"rows_dropped_missing"`
	Outliers          int `json:"outliers_removed"`
	RowsOut           int `json:"rows_out"`
}

// Clean drops duplicate rows, fills or drops missing numeric cells, and removes z-score
// outliers one column at a time. Any numeric cell still missing afterwards is filled with
// its column median, or 0 for an all-missing column, so the result holds no missing
// numeric values. f is not modified.
func Clean(f *Frame, opt CleanOptions) (*Frame, *CleanReport, error) {
	if opt.Fill == "" {
		opt.Fill = FillMedian
	}
	if _, err := ParseFillMethod(string(opt.Fill)); err != nil {
		return nil, nil, err
	}
	rep := &CleanReport{RowsIn: f.Len()}
	out := f.Clone()

	if opt.RemoveDuplicates {
		keep := make([]bool, out.Len())
		seen := make(map[string]bool, out.Len())
		for r := range keep {
			k := out.rowKey(r)
			if seen[k] {
				rep.Duplicates++
				continue
			}
			seen[k] = true
			keep[r] = true
		}
		out = out.filterRows(keep)
	}

	if opt.Fill != FillNone {
		for i := range out.Columns {
			c := out.Columns[i]
			if c.Num == nil || countNaN(c.Num) == 0 {
				continue
			}
			if opt.Fill == FillDrop {
				keep := make([]bool, len(c.Num))
				for r, v := range c.Num {
					keep[r] = !math.IsNaN(v)
					if !keep[r] {
						rep.DroppedForMissing++
					}
				}
				out = out.filterRows(keep)
				log.Debug().Str("column", c.Name).Msg("dropped rows with missing values")
				continue
			}
			rep.Filled += fillColumn(c.Num, opt.Fill)
		}
	}

	if opt.RemoveOutliers && opt.OutlierThreshold > 0 {
		for i := range out.Columns {
			c := out.Columns[i]
			if c.Num == nil || len(c.Num) == 0 || countNaN(c.Num) > 0 {
				continue
			}
			mean, variance := stat.PopMeanVariance(c.Num, nil)
			std := math.Sqrt(variance)
			if std == 0 {
				continue
			}
			keep := make([]bool, len(c.Num))
			dropped := 0
			for r, v := range c.Num {
				keep[r] = math.Abs((v-mean)/std) < opt.OutlierThreshold
				if !keep[r] {
					dropped++
				}
			}
			if dropped > 0 {
				rep.Outliers += dropped
				out = out.filterRows(keep)
			}
		}
	}

	for _, c := range out.Columns {
		if c.Num == nil || countNaN(c.Num) == 0 {
			continue
		}
		rep.Filled += fillColumn(c.Num, FillMedian)
	}
	rep.RowsOut = out.Len()
	log.Debug().
		Int("rows_in", rep.RowsIn).
		Int("rows_out", rep.RowsOut).
		Int("duplicates", rep.Duplicates).
		Int("outliers", rep.Outliers).
		Msg("dataset cleaned")
	return out, rep, nil
}

func countNaN(vals []float64) int {
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			n++
		}
	}
	return n
}

// fillColumn replaces NaN cells in place and returns how many it replaced. Forward and
// backward fill fall back to the opposite direction and then to 0.
func fillColumn(vals []float64, method FillMethod) int {
	missing := countNaN(vals)
	if missing == 0 {
		return 0
	}
	switch method {
	case FillMean:
		fillConst(vals, meanOrZero(present(vals)))
	case FillMedian:
		fillConst(vals, medianOrZero(present(vals)))
	case FillZero:
		fillConst(vals, 0)
	case FillFFill:
		forwardFill(vals)
		backwardFill(vals)
		fillConst(vals, 0)
	case FillBFill:
		backwardFill(vals)
		forwardFill(vals)
		fillConst(vals, 0)
	}
	return missing
}

func fillConst(vals []float64, v float64) {
	for i := range vals {
		if math.IsNaN(vals[i]) {
			vals[i] = v
		}
	}
}

func forwardFill(vals []float64) {
	for i := 1; i < len(vals); i++ {
		if math.IsNaN(vals[i]) {
			vals[i] = vals[i-1]
		}
	}
}

func backwardFill(vals []float64) {
	for i := len(vals) - 2; i >= 0; i-- {
		if math.IsNaN(vals[i]) {
			vals[i] = vals[i+1]
		}
	}
}

func meanOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	return stat.Mean(vals, nil)
}

func medianOrZero(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return quantile(sorted, 0.5)
}
