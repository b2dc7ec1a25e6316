package dataset

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary is the descriptive statistics of one numeric column, ignoring missing cells.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	// MAD is the median absolute deviation from the median.
	MAD float64 `json:"mad"`
}

// Describe summarizes the named numeric columns, or all of them when cols is empty.
func Describe(f *Frame, cols []string) ([]Summary, error) {
	cs, err := f.numeric(cols)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(cs))
	for _, c := range cs {
		vals := present(c.Num)
		s := Summary{Column: c.Name, Count: len(vals)}
		if len(vals) > 0 {
			sorted := append([]float64(nil), vals...)
			sort.Float64s(sorted)
			s.Mean = stat.Mean(vals, nil)
			if len(vals) > 1 {
				s.Std = stat.StdDev(vals, nil)
			}
			s.Min, s.Max = sorted[0], sorted[len(sorted)-1]
			s.Q1 = quantile(sorted, 0.25)
			s.Q3 = quantile(sorted, 0.75)
			s.Median, s.MAD = medianMAD(sorted)
		}
		out = append(out, s)
	}
	return out, nil
}

// Shape holds the skewness and excess kurtosis of one column.
type Shape struct {
	Column         string  `json:"column"`
	Skewness       float64 `json:"skewness"`
	Kurtosis       float64 `json:"kurtosis"`
	Interpretation string  `json:"interpretation"`
}

// SkewKurtosis computes sample skewness and excess kurtosis. |skew| < 0.5 reads as symmetric.
func SkewKurtosis(f *Frame, cols []string) ([]Shape, error) {
	cs, err := f.numeric(cols)
	if err != nil {
		return nil, err
	}
	out := make([]Shape, 0, len(cs))
	for _, c := range cs {
		vals := present(c.Num)
		sh := Shape{Column: c.Name, Skewness: math.NaN(), Kurtosis: math.NaN()}
		if len(vals) > 2 {
			sh.Skewness = stat.Skew(vals, nil)
		}
		if len(vals) > 3 {
			sh.Kurtosis = stat.ExKurtosis(vals, nil)
		}
		switch {
		case math.IsNaN(sh.Skewness):
			sh.Interpretation = "undefined"
		case math.Abs(sh.Skewness) < 0.5:
			sh.Interpretation = "symmetric"
		case sh.Skewness > 0:
			sh.Interpretation = "right-skewed"
		default:
			sh.Interpretation = "left-skewed"
		}
		out = append(out, sh)
	}
	return out, nil
}

// IQRResult reports values outside [Q1 − 1.5·IQR, Q3 + 1.5·IQR].
type IQRResult struct {
	Column string    `json:"column"`
	Q1     float64   `json:"q1"`
	Q3     float64   `json:"q3"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
	Count  int       `json:"count"`
	Values []float64 `json:"values"`
}

// IQROutliers finds the outliers of one numeric column by the 1.5·IQR rule.
func IQROutliers(f *Frame, col string) (*IQRResult, error) {
	cs, err := f.numeric([]string{col})
	if err != nil {
		return nil, err
	}
	vals := present(cs[0].Num)
	res := &IQRResult{Column: cs[0].Name, Values: []float64{}}
	if len(vals) == 0 {
		return res, nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	res.Q1, res.Q3 = quantile(sorted, 0.25), quantile(sorted, 0.75)
	iqr := res.Q3 - res.Q1
	res.Lower, res.Upper = res.Q1-1.5*iqr, res.Q3+1.5*iqr
	for _, v := range vals {
		if v < res.Lower || v > res.Upper {
			res.Values = append(res.Values, v)
		}
	}
	res.Count = len(res.Values)
	return res, nil
}

// CorrMatrix holds a symmetric Pearson correlation matrix. Pairs without variance are NaN.
type CorrMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// CorrelationMatrix computes Pearson correlations over rows where both cells are present.
func CorrelationMatrix(f *Frame, cols []string) (*CorrMatrix, error) {
	cs, err := f.numeric(cols)
	if err != nil {
		return nil, err
	}
	n := len(cs)
	cm := &CorrMatrix{Columns: make([]string, n), Values: make([][]float64, n)}
	for i := range cs {
		cm.Columns[i] = cs[i].Name
		cm.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		cm.Values[i][i] = 1
		for j := i + 1; j < n; j++ {
			r := pearson(cs[i].Num, cs[j].Num)
			cm.Values[i][j], cm.Values[j][i] = r, r
		}
		if constant(present(cs[i].Num)) {
			cm.Values[i][i] = math.NaN()
		}
	}
	return cm, nil
}

func pearson(a, b []float64) float64 {
	xs := make([]float64, 0, len(a))
	ys := make([]float64, 0, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		xs = append(xs, a[i])
		ys = append(ys, b[i])
	}
	if len(xs) < 2 || constant(xs) || constant(ys) {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

func constant(vals []float64) bool {
	if len(vals) == 0 {
		return true
	}
	return floats.Min(vals) == floats.Max(vals)
}

// PairCorr is one column pair and its correlation.
type PairCorr struct {
	A string  `json:"a"`
	B string  `json:"b"`
	R float64 `json:"r"`
}

// CorrelationPairs lists upper-triangle pairs with |r| > threshold, strongest first.
func CorrelationPairs(cm *CorrMatrix, threshold float64) []PairCorr {
	var out []PairCorr
	for i := range cm.Columns {
		for j := i + 1; j < len(cm.Columns); j++ {
			r := cm.Values[i][j]
			if math.IsNaN(r) || math.Abs(r) <= threshold {
				continue
			}
			out = append(out, PairCorr{A: cm.Columns[i], B: cm.Columns[j], R: r})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return math.Abs(out[i].R) > math.Abs(out[j].R) })
	return out
}

// VarianceStat describes the spread of one column. CV is std/|mean| in percent, 0 when
// the mean is 0.
type VarianceStat struct {
	Column   string  `json:"column"`
	Mean     float64 `json:"mean"`
	Std      float64 `json:"std"`
	Variance float64 `json:"variance"`
	CV       float64 `json:"cv_pct"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Range    float64 `json:"range"`
	Unique   int     `json:"unique"`
}

// VarianceStats computes spread statistics for the named numeric columns.
func VarianceStats(f *Frame, cols []string) ([]VarianceStat, error) {
	cs, err := f.numeric(cols)
	if err != nil {
		return nil, err
	}
	out := make([]VarianceStat, 0, len(cs))
	for _, c := range cs {
		out = append(out, varianceOf(c))
	}
	return out, nil
}

func varianceOf(c *Column) VarianceStat {
	vals := present(c.Num)
	v := VarianceStat{Column: c.Name}
	if len(vals) == 0 {
		return v
	}
	v.Mean = stat.Mean(vals, nil)
	if len(vals) > 1 {
		v.Variance = stat.Variance(vals, nil)
		v.Std = math.Sqrt(v.Variance)
	}
	if v.Mean != 0 {
		v.CV = v.Std / math.Abs(v.Mean) * 100
	}
	v.Min, v.Max = floats.Min(vals), floats.Max(vals)
	v.Range = v.Max - v.Min
	uniq := make(map[float64]struct{}, len(vals))
	for _, x := range vals {
		uniq[x] = struct{}{}
	}
	v.Unique = len(uniq)
	return v
}

// medianMAD computes the median and MAD of sorted values.
func medianMAD(sorted []float64) (median, mad float64) {
	if len(sorted) == 0 {
		return 0, 0
	}
	median = quantile(sorted, 0.5)
	dev := make([]float64, len(sorted))
	for i, v := range sorted {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of sorted values.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
