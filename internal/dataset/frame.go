package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
)

// Kind is the inferred type of a column.
type Kind string

const (
	Numeric     Kind = "numeric"
	Categorical Kind = "categorical"
)

// Column is one named column. Text always holds the raw cells; Num is set for numeric
// columns, with NaN marking a missing cell.
type Column struct {
	Name string
	Unit string
	Kind Kind
	Num  []float64
	Text []string
}

// Frame is a loaded table. All columns have the same length.
type Frame struct {
	Name    string
	Columns []*Column
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if f == nil || len(f.Columns) == 0 {
		return 0
	}
	return len(f.Columns[0].Text)
}

// Column looks a column up by name, ignoring case and surrounding space.
func (f *Frame) Column(name string) (*Column, bool) {
	want := strings.ToLower(strings.TrimSpace(name))
	for _, c := range f.Columns {
		if strings.ToLower(c.Name) == want {
			return c, true
		}
	}
	return nil, false
}

// NumericColumns returns the names of numeric columns in frame order.
func (f *Frame) NumericColumns() []string {
	var out []string
	for _, c := range f.Columns {
		if c.Kind == Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// CategoricalColumns returns the names of non-numeric columns in frame order.
func (f *Frame) CategoricalColumns() []string {
	var out []string
	for _, c := range f.Columns {
		if c.Kind != Numeric {
			out = append(out, c.Name)
		}
	}
	return out
}

// numeric resolves names to numeric columns. An empty list selects every numeric column.
func (f *Frame) numeric(names []string) ([]*Column, error) {
	if len(names) == 0 {
		names = f.NumericColumns()
	}
	out := make([]*Column, 0, len(names))
	for _, n := range names {
		c, ok := f.Column(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, n)
		}
		if c.Kind != Numeric {
			return nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, n)
		}
		out = append(out, c)
	}
	return out, nil
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	out := &Frame{Name: f.Name, Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		cc := &Column{Name: c.Name, Unit: c.Unit, Kind: c.Kind}
		cc.Text = append([]string(nil), c.Text...)
		if c.Num != nil {
			cc.Num = append([]float64(nil), c.Num...)
		}
		out.Columns[i] = cc
	}
	return out
}

// filterRows returns a copy of f holding only the rows where keep is true.
func (f *Frame) filterRows(keep []bool) *Frame {
	out := &Frame{Name: f.Name, Columns: make([]*Column, len(f.Columns))}
	for i, c := range f.Columns {
		cc := &Column{Name: c.Name, Unit: c.Unit, Kind: c.Kind}
		for r, ok := range keep {
			if !ok {
				continue
			}
			cc.Text = append(cc.Text, c.Text[r])
			if c.Num != nil {
				cc.Num = append(cc.Num, c.Num[r])
			}
		}
		if cc.Text == nil {
			cc.Text = []string{}
			if c.Num != nil {
				cc.Num = []float64{}
			}
		}
		out.Columns[i] = cc
	}
	return out
}

// present returns the non-missing values of a numeric column.
func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// rowKey identifies a row by its raw cells, for duplicate detection.
func (f *Frame) rowKey(r int) string {
	var b strings.Builder
	for i, c := range f.Columns {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		if c.Num != nil && !math.IsNaN(c.Num[r]) {
			fmt.Fprintf(&b, "%v", c.Num[r])
			continue
		}
		b.WriteString(c.Text[r])
	}
	return b.String()
}

// FromRows builds an all-numeric frame from named columns and rows, e.g. a JSON payload.
// NaN cells count as missing.
func FromRows(name string, columns []string, rows [][]float64) (*Frame, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrEmptyData)
	}
	if len(columns) == 0 {
		columns = make([]string, len(rows[0]))
		for j := range columns {
			columns[j] = fmt.Sprintf("x%d", j+1)
		}
	}
	f := &Frame{Name: name, Columns: make([]*Column, len(columns))}
	for j, c := range columns {
		f.Columns[j] = &Column{Name: c, Kind: Numeric, Num: make([]float64, len(rows)), Text: make([]string, len(rows))}
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", cluster.ErrInvalidMatrix, i, len(r), len(columns))
		}
		for j, v := range r {
			f.Columns[j].Num[i] = v
			if !math.IsNaN(v) {
				f.Columns[j].Text[i] = fmt.Sprintf("%v", v)
			}
		}
	}
	return f, nil
}
