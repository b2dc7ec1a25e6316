package dataset

import "math"

// MissingCount is the number of missing cells in one column.
type MissingCount struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Pct    float64 `json:"pct"`
}

// Quality summarizes a frame before cleaning.
type Quality struct {
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	Missing     []MissingCount `json:"missing"`
	Duplicates  int            `json:"duplicates"`
	Numeric     []string       `json:"numeric_columns"`
	Categorical []string       `json:"categorical_columns"`
}

// TotalMissing sums the missing cells over all columns.
func (q *Quality) TotalMissing() int {
	n := 0
	for _, m := range q.Missing {
		n += m.Count
	}
	return n
}

// AnalyzeQuality counts missing cells per column and duplicate rows.
func AnalyzeQuality(f *Frame) *Quality {
	q := &Quality{
		Rows:        f.Len(),
		Columns:     len(f.Columns),
		Numeric:     f.NumericColumns(),
		Categorical: f.CategoricalColumns(),
	}
	for _, c := range f.Columns {
		n := 0
		for r, s := range c.Text {
			if c.Num != nil {
				if math.IsNaN(c.Num[r]) {
					n++
				}
				continue
			}
			if isMissing(s) {
				n++
			}
		}
		pct := 0.0
		if q.Rows > 0 {
			pct = math.Round(float64(n)/float64(q.Rows)*10000) / 100
		}
		q.Missing = append(q.Missing, MissingCount{Column: c.Name, Count: n, Pct: pct})
	}
	seen := make(map[string]bool, q.Rows)
	for r := 0; r < q.Rows; r++ {
		k := f.rowKey(r)
		if seen[k] {
			q.Duplicates++
			continue
		}
		seen[k] = true
	}
	return q
}
