// Package results turns clustering output into artefacts a user can read: per-cluster
// profiles in original units, a 2-D projection, and labelled exports.
package results

import (
	"fmt"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// ClusterProfile describes one cluster. Means follow the order of Profile.Features.
type ClusterProfile struct {
	ID    int       `json:"id"`
	Size  int       `json:"size"`
	Pct   float64   `json:"pct"`
	Means []float64 `json:"means"`
}

// Profile summarizes a clustering run against the original feature values.
type Profile struct {
	Method     string           `json:"method"`
	K          int              `json:"k"`
	Silhouette float64          `json:"silhouette"`
	Quality    string           `json:"quality"`
	Features   []string         `json:"features"`
	Clusters   []ClusterProfile `json:"clusters"`
}

// SilhouetteQuality grades a silhouette score.
func SilhouetteQuality(s float64) string {
	switch {
	case s > 0.7:
		return "excellent"
	case s > 0.5:
		return "good"
	case s > 0.25:
		return "fair"
	default:
		return "weak"
	}
}

// BuildProfile computes cluster sizes and feature means from f, which must hold the rows
// the result was computed on.
func BuildProfile(f *dataset.Frame, features []string, res *cluster.Result) (*Profile, error) {
	if res == nil {
		return nil, fmt.Errorf("%w: no result", cluster.ErrInvalidMatrix)
	}
	if f.Len() != len(res.Labels) {
		return nil, fmt.Errorf("%w: %d labels for %d rows", cluster.ErrShapeMismatch, len(res.Labels), f.Len())
	}
	cols := make([]*dataset.Column, 0, len(features))
	for _, name := range features {
		c, ok := f.Column(name)
		if !ok || c.Kind != dataset.Numeric {
			return nil, fmt.Errorf("%w: %q", dataset.ErrUnknownColumn, name)
		}
		cols = append(cols, c)
	}

	k := 0
	for _, l := range res.Labels {
		if l+1 > k {
			k = l + 1
		}
	}
	members := make([][]int, k)
	for i, l := range res.Labels {
		members[l] = append(members[l], i)
	}
	p := &Profile{
		Method:     res.Method.String(),
		K:          res.NClusters,
		Silhouette: res.Metrics.Silhouette,
		Quality:    SilhouetteQuality(res.Metrics.Silhouette),
		Features:   append([]string(nil), features...),
	}
	n := float64(len(res.Labels))
	vals := make([]float64, 0, len(res.Labels))
	for id, rows := range members {
		cp := ClusterProfile{ID: id, Size: len(rows), Pct: float64(len(rows)) / n * 100, Means: make([]float64, len(cols))}
		for j, c := range cols {
			vals = vals[:0]
			for _, r := range rows {
				vals = append(vals, c.Num[r])
			}
			if len(vals) > 0 {
				cp.Means[j] = stat.Mean(vals, nil)
			}
		}
		p.Clusters = append(p.Clusters, cp)
	}
	return p, nil
}
