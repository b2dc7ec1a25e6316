package cluster

import (
	"fmt"
	"math"
)

// Matrix is a read-only feature matrix: Rows[i][j] is the value of column j for row i.
type Matrix struct {
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// NewMatrix validates rows against columns and returns a Matrix.
// Column names may be nil, in which case positional names are generated.
func NewMatrix(columns []string, rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidMatrix)
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidMatrix)
	}
	if columns == nil {
		columns = make([]string, dim)
		for j := range columns {
			columns[j] = fmt.Sprintf("x%d", j+1)
		}
	}
	if len(columns) != dim {
		return nil, fmt.Errorf("%w: %d column names for %d values per row", ErrInvalidMatrix, len(columns), dim)
	}
	for i, r := range rows {
		if len(r) != dim {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrInvalidMatrix, i, len(r), dim)
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: non-finite value at row %d column %q", ErrInvalidMatrix, i, columns[j])
			}
		}
	}
	return &Matrix{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows.
func (m *Matrix) Len() int { return len(m.Rows) }

// Dim returns the number of columns.
func (m *Matrix) Dim() int {
	if len(m.Rows) == 0 {
		return len(m.Columns)
	}
	return len(m.Rows[0])
}
