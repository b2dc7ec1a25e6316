// Package report renders analysis and clustering results as compact Markdown.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/KaramelBytes/clusterflow-cli/internal/results"
)

// Exploration bundles the exploratory statistics of a frame.
type Exploration struct {
	Name      string
	Summaries []dataset.Summary
	Shapes    []dataset.Shape
	Outliers  []dataset.IQRResult
	Pairs     []dataset.PairCorr
	Variance  []dataset.VarianceStat
	Threshold float64
}

// Explore computes descriptive statistics, shape, IQR outliers, correlation pairs above
// corrThreshold, and variance for the named numeric columns (all when cols is empty).
func Explore(f *dataset.Frame, cols []string, corrThreshold float64) (*Exploration, error) {
	e := &Exploration{Name: f.Name, Threshold: corrThreshold}
	var err error
	if e.Summaries, err = dataset.Describe(f, cols); err != nil {
		return nil, err
	}
	if e.Shapes, err = dataset.SkewKurtosis(f, cols); err != nil {
		return nil, err
	}
	for _, s := range e.Summaries {
		o, err := dataset.IQROutliers(f, s.Column)
		if err != nil {
			return nil, err
		}
		e.Outliers = append(e.Outliers, *o)
	}
	cm, err := dataset.CorrelationMatrix(f, cols)
	if err != nil {
		return nil, err
	}
	e.Pairs = dataset.CorrelationPairs(cm, corrThreshold)
	if e.Variance, err = dataset.VarianceStats(f, cols); err != nil {
		return nil, err
	}
	return e, nil
}

// Quality renders the data quality section, plus the cleaning outcome when clean is set.
func Quality(name string, q *dataset.Quality, clean *dataset.CleanReport) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		fmt.Fprintf(&b, "File: %s\n", name)
	}
	fmt.Fprintf(&b, "Rows: %d\n", q.Rows)
	fmt.Fprintf(&b, "Columns: %d (numeric %d, categorical %d)\n", q.Columns, len(q.Numeric), len(q.Categorical))
	fmt.Fprintf(&b, "Duplicate rows: %d\n", q.Duplicates)
	fmt.Fprintf(&b, "Missing cells: %d\n", q.TotalMissing())

	var missing []dataset.MissingCount
	for _, m := range q.Missing {
		if m.Count > 0 {
			missing = append(missing, m)
		}
	}
	if len(missing) > 0 {
		b.WriteString("\n[MISSING VALUES]\n")
		for _, m := range missing {
			fmt.Fprintf(&b, "- %s: %d (%.2f%%)\n", safeName(m.Column), m.Count, m.Pct)
		}
	}
	if clean != nil {
		b.WriteString("\n[CLEANING]\n")
		fmt.Fprintf(&b, "- rows in: %d\n", clean.RowsIn)
		fmt.Fprintf(&b, "- duplicates removed: %d\n", clean.Duplicates)
		fmt.Fprintf(&b, "- cells filled: %d\n", clean.Filled)
		if clean.DroppedForMissing > 0 {
			fmt.Fprintf(&b, "- rows dropped for missing values: %d\n", clean.DroppedForMissing)
		}
		fmt.Fprintf(&b, "- outliers removed: %d\n", clean.Outliers)
		fmt.Fprintf(&b, "- rows out: %d\n", clean.RowsOut)
	}
	return b.String()
}

// Explored renders the exploratory statistics.
func Explored(e *Exploration) string {
	var b strings.Builder
	b.WriteString("[DESCRIPTIVE STATISTICS]\n")
	b.WriteString("| column | count | mean | std | min | q1 | median | q3 | max |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, s := range e.Summaries {
		fmt.Fprintf(&b, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
			safeName(s.Column), s.Count, s.Mean, s.Std, s.Min, s.Q1, s.Median, s.Q3, s.Max)
	}
	if len(e.Shapes) > 0 {
		b.WriteString("\n[DISTRIBUTION SHAPE]\n")
		for _, s := range e.Shapes {
			fmt.Fprintf(&b, "- %s: skew %s, kurtosis %s (%s)\n", safeName(s.Column), num(s.Skewness), num(s.Kurtosis), s.Interpretation)
		}
	}
	if len(e.Outliers) > 0 {
		b.WriteString("\n[IQR OUTLIERS]\n")
		for _, o := range e.Outliers {
			fmt.Fprintf(&b, "- %s: %d outside [%.4g, %.4g]\n", safeName(o.Column), o.Count, o.Lower, o.Upper)
		}
	}
	b.WriteString("\n[CORRELATIONS]\n")
	if len(e.Pairs) == 0 {
		fmt.Fprintf(&b, "No pairs with |r| > %.2f\n", e.Threshold)
	}
	for _, p := range e.Pairs {
		fmt.Fprintf(&b, "- %s ~ %s: r=%.3f\n", safeName(p.A), safeName(p.B), p.R)
	}
	if len(e.Variance) > 0 {
		b.WriteString("\n[VARIANCE]\n")
		for _, v := range e.Variance {
			fmt.Fprintf(&b, "- %s: var %.4g, CV %.2f%%, range %.4g\n", safeName(v.Column), v.Variance, v.CV, v.Range)
		}
	}
	return b.String()
}

// Selection renders the automatic feature selection.
func Selection(sel *dataset.Selection) string {
	var b strings.Builder
	b.WriteString("[FEATURE SELECTION]\n")
	fmt.Fprintf(&b, "Selected: %s\n", strings.Join(sel.Selected, ", "))
	for _, e := range sel.Excluded {
		fmt.Fprintf(&b, "- %s: %s\n", safeName(e.Column), e.Reason)
	}
	return b.String()
}

// Sweep renders a k sweep table with the chosen k.
func Sweep(rep *cluster.SweepReport) string {
	var b strings.Builder
	b.WriteString("[K SWEEP]\n")
	b.WriteString("| k | silhouette | davies-bouldin | calinski-harabasz | inertia | composite | inertia drop |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- |\n")
	for i, r := range rep.Rows {
		drop := "-"
		if i > 0 && i-1 < len(rep.InertiaReduction) {
			drop = fmt.Sprintf("%.1f%%", rep.InertiaReduction[i-1])
		}
		marker := ""
		if r.K == rep.OptimalK {
			marker = " ✓"
		}
		fmt.Fprintf(&b, "| %d%s | %.4f | %.4f | %.2f | %.4g | %.4f | %s |\n",
			r.K, marker, r.Silhouette, r.DaviesBouldin, r.CalinskiHarabasz, r.Inertia, r.Composite, drop)
	}
	fmt.Fprintf(&b, "\nOptimal k: %d\n", rep.OptimalK)
	if rep.SmallestDiscarded && len(rep.Rows) > 0 {
		fmt.Fprintf(&b, "Note: k=%d scored within 5%% of k=%d and was passed over for the finer split.\n", rep.Rows[0].K, rep.Rows[0].K+1)
	}
	return b.String()
}

// Result renders one clustering run.
func Result(res *cluster.Result) string {
	var b strings.Builder
	b.WriteString("[CLUSTERING RESULT]\n")
	fmt.Fprintf(&b, "Method: %s\n", res.Method)
	fmt.Fprintf(&b, "Clusters: %d\n", res.NClusters)
	fmt.Fprintf(&b, "Silhouette: %.4f (%s)\n", res.Metrics.Silhouette, results.SilhouetteQuality(res.Metrics.Silhouette))
	fmt.Fprintf(&b, "Davies-Bouldin: %.4f\n", res.Metrics.DaviesBouldin)
	fmt.Fprintf(&b, "Calinski-Harabasz: %.2f\n", res.Metrics.CalinskiHarabasz)
	if res.Metrics.Inertia != nil {
		fmt.Fprintf(&b, "Inertia: %.4g\n", *res.Metrics.Inertia)
	}
	fmt.Fprintf(&b, "Largest cluster: %.1f%%\n", res.MaxClusterPct*100)
	b.WriteString("\n[DISTRIBUTION]\n")
	for id, frac := range res.Metrics.Distribution {
		fmt.Fprintf(&b, "- cluster %d: %.1f%%\n", id, frac*100)
	}
	return b.String()
}

// Comparison renders a method ranking, best first.
func Comparison(c *cluster.Comparison) string {
	var b strings.Builder
	b.WriteString("[METHOD COMPARISON]\n")
	b.WriteString("| method | silhouette | davies-bouldin | calinski-harabasz | largest cluster | avg rank | penalty | score |\n")
	b.WriteString("| --- | --- | --- | --- | --- | --- | --- | --- |\n")
	for _, r := range c.Rows {
		fmt.Fprintf(&b, "| %s | %.4f | %.4f | %.2f | %.1f%% | %.2f | %.2f | %.2f |\n",
			r.Method, r.Silhouette, r.DaviesBouldin, r.CalinskiHarabasz, r.MaxClusterPct*100, r.AverageRank, r.Penalty, r.FinalScore)
	}
	fmt.Fprintf(&b, "\nBest method: %s\n", c.Best)
	return b.String()
}

// Profile renders cluster profiles and, when proj is set, the projection summary.
func Profile(p *results.Profile, proj *results.Projection) string {
	var b strings.Builder
	b.WriteString("[CLUSTER PROFILES]\n")
	fmt.Fprintf(&b, "Separation: %s (silhouette %.3f)\n\n", p.Quality, p.Silhouette)
	b.WriteString("| cluster | size | share |")
	for _, f := range p.Features {
		fmt.Fprintf(&b, " %s |", safeName(f))
	}
	b.WriteString("\n| --- | --- | --- |")
	for range p.Features {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")
	for _, c := range p.Clusters {
		fmt.Fprintf(&b, "| %d | %d | %.1f%% |", c.ID, c.Size, c.Pct)
		for _, m := range c.Means {
			fmt.Fprintf(&b, " %.4g |", m)
		}
		b.WriteString("\n")
	}
	if proj != nil {
		b.WriteString("\n[PCA PROJECTION]\n")
		fmt.Fprintf(&b, "PC1 %.1f%%, PC2 %.1f%%, total %.1f%%\n",
			proj.Explained[0]*100, proj.Explained[1]*100, (proj.Explained[0]+proj.Explained[1])*100)
	}
	return b.String()
}

func num(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", v)
}

func safeName(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "|", "/"))
	if s == "" {
		return "(unnamed)"
	}
	return s
}
