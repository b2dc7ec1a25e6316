package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
)

// WriteLabelledCSV writes every column of f followed by a cluster column.
func WriteLabelledCSV(w io.Writer, f *dataset.Frame, labels []int) error {
	if f.Len() != len(labels) {
		return fmt.Errorf("%w: %d labels for %d rows", cluster.ErrShapeMismatch, len(labels), f.Len())
	}
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(f.Columns)+1)
	for _, c := range f.Columns {
		header = append(header, c.Name)
	}
	if err := cw.Write(append(header, "cluster")); err != nil {
		return err
	}
	rec := make([]string, len(header)+1)
	for r := range labels {
		for j, c := range f.Columns {
			rec[j] = cell(c, r)
		}
		rec[len(header)] = strconv.Itoa(labels[r])
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProfileCSV writes one row per cluster with its size and feature means.
func WriteProfileCSV(w io.Writer, p *Profile) error {
	cw := csv.NewWriter(w)
	header := []string{"cluster", "size", "pct"}
	for _, f := range p.Features {
		header = append(header, f+"_mean")
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, c := range p.Clusters {
		rec := []string{strconv.Itoa(c.ID), strconv.Itoa(c.Size), formatFloat(c.Pct)}
		for _, m := range c.Means {
			rec = append(rec, formatFloat(m))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(c *dataset.Column, r int) string {
	if c.Num != nil && !math.IsNaN(c.Num[r]) {
		return formatFloat(c.Num[r])
	}
	return c.Text[r]
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
