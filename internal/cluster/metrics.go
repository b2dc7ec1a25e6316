package cluster

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// closeToZero mirrors the absolute tolerance used when deciding that all scatters or all
// centroid separations vanish.
const closeToZero = 1e-8

// Metrics holds the quality scores of one label assignment.
type Metrics struct {
	// Silhouette is in [-1, 1]; higher is better.
	Silhouette float64 `json:"silhouette"`
	// DaviesBouldin is >= 0; lower is better.
	DaviesBouldin float64 `json:"davies_bouldin"`
	// CalinskiHarabasz is >= 0; higher is better.
	CalinskiHarabasz float64 `json:"calinski_harabasz"`
	// Inertia is set only for centroid-based methods.
	Inertia *float64 `json:"inertia,omitempty"`
	// Distribution[c] is the fraction of rows assigned to cluster c.
	Distribution []float64 `json:"distribution"`
	Clusters     int       `json:"clusters"`
}

// MaxFraction returns the largest single-cluster fraction.
func (m *Metrics) MaxFraction() float64 {
	if len(m.Distribution) == 0 {
		return 0
	}
	return floats.Max(m.Distribution)
}

// ComputeMetrics scores labels against the rows of m. Inertia is reported only when
// centroidBased is true. Labels are mapped to dense ids in ascending label order, so a
// contiguous assignment [0,k) keeps its ids in the distribution.
func ComputeMetrics(m *Matrix, labels []int, centroidBased bool) (*Metrics, error) {
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidMatrix)
	}
	n := m.Len()
	if len(labels) != n {
		return nil, fmt.Errorf("%w: %d labels for %d rows", ErrShapeMismatch, len(labels), n)
	}
	ids, k := denseLabels(labels)
	if k < 2 {
		return nil, fmt.Errorf("%w: %d distinct label(s)", ErrInsufficientClusters, k)
	}
	if n < 2*k {
		return nil, fmt.Errorf("%w: %d rows for %d clusters (need at least %d)", ErrDegenerateInput, n, k, 2*k)
	}

	counts := make([]int, k)
	for _, c := range ids {
		counts[c]++
	}
	centroids := clusterMeans(m.Rows, ids, k)

	intra := withinSS(m.Rows, ids, centroids)
	out := &Metrics{
		Silhouette:       silhouette(m.Rows, ids, counts),
		DaviesBouldin:    daviesBouldin(m.Rows, ids, counts, centroids),
		CalinskiHarabasz: calinskiHarabasz(m.Rows, counts, centroids, intra),
		Distribution:     make([]float64, k),
		Clusters:         k,
	}
	for c, cnt := range counts {
		out.Distribution[c] = float64(cnt) / float64(n)
	}
	if centroidBased {
		in := intra
		out.Inertia = &in
	}
	return out, nil
}

// denseLabels maps arbitrary label values to ids 0..k-1 in ascending label order.
func denseLabels(labels []int) ([]int, int) {
	seen := make(map[int]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	distinct := make([]int, 0, len(seen))
	for l := range seen {
		distinct = append(distinct, l)
	}
	sort.Ints(distinct)
	index := make(map[int]int, len(distinct))
	for i, l := range distinct {
		index[l] = i
	}
	ids := make([]int, len(labels))
	for i, l := range labels {
		ids[i] = index[l]
	}
	return ids, len(distinct)
}

// clusterMeans returns the mean row of each cluster. Empty clusters keep a zero centroid.
func clusterMeans(rows [][]float64, ids []int, k int) [][]float64 {
	dim := len(rows[0])
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]float64, k)
	for i, r := range rows {
		floats.Add(sums[ids[i]], r)
		counts[ids[i]]++
	}
	for c := range sums {
		if counts[c] > 0 {
			floats.Scale(1/counts[c], sums[c])
		}
	}
	return sums
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func withinSS(rows [][]float64, ids []int, centroids [][]float64) float64 {
	var s float64
	for i, r := range rows {
		s += sqDist(r, centroids[ids[i]])
	}
	return s
}

// silhouette averages (b-a)/max(a,b) over all rows; rows alone in their cluster score 0.
func silhouette(rows [][]float64, ids []int, counts []int) float64 {
	n, k := len(rows), len(counts)
	// sums[i*k+c] accumulates distances from row i to the rows of cluster c
	sums := make([]float64, n*k)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(rows[i], rows[j], 2)
			sums[i*k+ids[j]] += d
			sums[j*k+ids[i]] += d
		}
	}
	var total float64
	for i := 0; i < n; i++ {
		own := ids[i]
		if counts[own] < 2 {
			continue
		}
		a := sums[i*k+own] / float64(counts[own]-1)
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if v := sums[i*k+c] / float64(counts[c]); v < b {
				b = v
			}
		}
		if den := math.Max(a, b); den > 0 && !math.IsInf(b, 1) {
			total += (b - a) / den
		}
	}
	return total / float64(n)
}

func daviesBouldin(rows [][]float64, ids []int, counts []int, centroids [][]float64) float64 {
	k := len(counts)
	scatter := make([]float64, k)
	for i, r := range rows {
		scatter[ids[i]] += floats.Distance(r, centroids[ids[i]], 2)
	}
	allFlat := true
	for c := range scatter {
		if counts[c] > 0 {
			scatter[c] /= float64(counts[c])
		}
		if math.Abs(scatter[c]) > closeToZero {
			allFlat = false
		}
	}
	sep := make([][]float64, k)
	allTouching := true
	for a := range sep {
		sep[a] = make([]float64, k)
		for b := range sep[a] {
			if a == b {
				continue
			}
			sep[a][b] = floats.Distance(centroids[a], centroids[b], 2)
			if sep[a][b] > closeToZero {
				allTouching = false
			}
		}
	}
	if allFlat || allTouching {
		return 0
	}
	var total float64
	for a := 0; a < k; a++ {
		worst := 0.0
		for b := 0; b < k; b++ {
			if a == b || sep[a][b] == 0 {
				continue
			}
			if r := (scatter[a] + scatter[b]) / sep[a][b]; r > worst {
				worst = r
			}
		}
		total += worst
	}
	return total / float64(k)
}

func calinskiHarabasz(rows [][]float64, counts []int, centroids [][]float64, intra float64) float64 {
	n, k := len(rows), len(counts)
	if intra == 0 {
		return 1
	}
	mean := make([]float64, len(rows[0]))
	for _, r := range rows {
		floats.Add(mean, r)
	}
	floats.Scale(1/float64(n), mean)
	var extra float64
	for c, cnt := range counts {
		extra += float64(cnt) * sqDist(centroids[c], mean)
	}
	return extra * float64(n-k) / (intra * float64(k-1))
}
