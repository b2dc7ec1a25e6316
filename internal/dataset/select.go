package dataset

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// SelectOptions controls automatic feature selection.
type SelectOptions struct {
	// MaxFeatures keeps the highest-variance columns when more survive; 0 means no limit.
	MaxFeatures int
	// CorrelationThreshold drops a column whose |r| with an earlier kept column exceeds it.
	CorrelationThreshold float64
	// MinUnique excludes columns with fewer distinct values.
	MinUnique int
	// MaxUniqueRatio excludes columns whose distinct/rows ratio exceeds it (identifier-like).
	MaxUniqueRatio float64
	// MinCV excludes columns whose coefficient of variation, in percent, is below it.
	MinCV float64
}

// DefaultSelectOptions returns the thresholds of the automatic selection step.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{
		MaxFeatures:          10,
		CorrelationThreshold: 0.9,
		MinUnique:            5,
		MaxUniqueRatio:       0.95,
		MinCV:                10,
	}
}

// Exclusion records why a column was left out.
type Exclusion struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Selection is the outcome of SelectFeatures.
type Selection struct {
	Selected []string    `json:"selected"`
	Excluded []Exclusion `json:"excluded"`
}

// SelectFeatures picks clustering features among the numeric columns of f. Columns named
// like identifiers, nearly unique, nearly constant, or with low relative variance are
// excluded; the rest are capped by variance and pruned of highly correlated pairs.
func SelectFeatures(f *Frame, opt SelectOptions) (*Selection, error) {
	cs, err := f.numeric(nil)
	if err != nil {
		return nil, err
	}
	sel := &Selection{Selected: []string{}}
	rows := f.Len()
	var kept []VarianceStat
	for _, c := range cs {
		v := varianceOf(c)
		reason := ""
		switch {
		case strings.Contains(strings.ToLower(c.Name), "id"):
			reason = "identifier name"
		case rows > 0 && float64(v.Unique)/float64(rows) > opt.MaxUniqueRatio:
			reason = "nearly unique values"
		case v.Unique < opt.MinUnique:
			reason = "too few distinct values"
		case v.Std > 0 && v.CV < opt.MinCV:
			reason = "low variance"
		}
		if reason != "" {
			sel.Excluded = append(sel.Excluded, Exclusion{Column: c.Name, Reason: reason})
			continue
		}
		kept = append(kept, v)
	}

	if opt.MaxFeatures > 0 && len(kept) > opt.MaxFeatures {
		sort.SliceStable(kept, func(i, j int) bool { return kept[i].Variance > kept[j].Variance })
		for _, v := range kept[opt.MaxFeatures:] {
			sel.Excluded = append(sel.Excluded, Exclusion{Column: v.Column, Reason: "outside top variance"})
		}
		kept = kept[:opt.MaxFeatures]
	}

	names := make([]string, len(kept))
	for i, v := range kept {
		names[i] = v.Column
	}
	if len(names) > 1 && opt.CorrelationThreshold > 0 {
		cm, err := CorrelationMatrix(f, names)
		if err != nil {
			return nil, err
		}
		drop := make(map[int]bool)
		for j := range names {
			for i := 0; i < j; i++ {
				if r := cm.Values[i][j]; !math.IsNaN(r) && math.Abs(r) > opt.CorrelationThreshold {
					drop[j] = true
					break
				}
			}
		}
		for j, n := range names {
			if drop[j] {
				sel.Excluded = append(sel.Excluded, Exclusion{Column: n, Reason: "highly correlated"})
				continue
			}
			sel.Selected = append(sel.Selected, n)
		}
	} else {
		sel.Selected = append(sel.Selected, names...)
	}
	log.Debug().Strs("selected", sel.Selected).Int("excluded", len(sel.Excluded)).Msg("features selected")
	return sel, nil
}

// FilterByVariance keeps the columns whose CV, in percent, is above minCV. A zero-mean
// column has no CV and is kept whenever it varies.
func FilterByVariance(f *Frame, cols []string, minCV float64) ([]string, error) {
	stats, err := VarianceStats(f, cols)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, v := range stats {
		if v.CV > minCV || (v.Mean == 0 && v.Std > 0) {
			out = append(out, v.Column)
		}
	}
	return out, nil
}
