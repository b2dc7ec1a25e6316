package cluster

import (
	"math"
	"math/rand"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultSeed is the fixed seed used for centroid initialization.
const DefaultSeed int64 = 42

// KMeansOptions controls the k-means search.
type KMeansOptions struct {
	// Seed initializes the random source; equal seeds give equal labels.
	Seed int64 `json:"seed"`
	// Restarts is the number of independent initializations; the lowest inertia wins.
	Restarts int `json:"restarts"`
	// MaxIter bounds the Lloyd iterations of one restart.
	MaxIter int `json:"max_iter"`
	// Tolerance stops a restart once the squared centroid shift falls below
	// Tolerance times the mean feature variance.
	Tolerance float64 `json:"tolerance"`
}

// SweepKMeans returns the options used for each candidate of a k sweep.
func SweepKMeans() KMeansOptions {
	return KMeansOptions{Seed: DefaultSeed, Restarts: 10, MaxIter: 300, Tolerance: 1e-4}
}

// FinalKMeans returns the options used for a final clustering run. It restarts more
// often than the sweep since its labels are the ones reported.
func FinalKMeans() KMeansOptions {
	return KMeansOptions{Seed: DefaultSeed, Restarts: 20, MaxIter: 500, Tolerance: 1e-4}
}

func (o KMeansOptions) normalized() KMeansOptions {
	if o.Restarts < 1 {
		o.Restarts = 1
	}
	if o.MaxIter < 1 {
		o.MaxIter = 1
	}
	if o.Tolerance < 0 {
		o.Tolerance = 0
	}
	return o
}

type kmeansFit struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
}

// fitKMeans runs opt.Restarts seeded k-means passes over rows and keeps the one with the
// lowest inertia. Callers guarantee 1 <= k <= len(rows).
func fitKMeans(rows [][]float64, k int, opt KMeansOptions) *kmeansFit {
	opt = opt.normalized()
	rng := rand.New(rand.NewSource(opt.Seed))
	threshold := opt.Tolerance * meanFeatureVariance(rows)

	var best *kmeansFit
	for r := 0; r < opt.Restarts; r++ {
		fit := lloyd(rows, seedPlusPlus(rows, k, rng), opt.MaxIter, threshold)
		log.Debug().
			Int("k", k).
			Int("restart", r).
			Int("iterations", fit.iterations).
			Float64("inertia", fit.inertia).
			Msg("k-means restart")
		if best == nil || fit.inertia < best.inertia {
			best = fit
		}
	}
	best.labels, best.centroids = compactFit(best.labels, best.centroids)
	return best
}

func meanFeatureVariance(rows [][]float64) float64 {
	dim := len(rows[0])
	col := make([]float64, len(rows))
	var total float64
	for j := 0; j < dim; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		_, v := stat.PopMeanVariance(col, nil)
		total += v
	}
	return total / float64(dim)
}

// seedPlusPlus picks k initial centroids with D² sampling.
func seedPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	centroids := make([][]float64, 0, k)
	first := rows[rng.Intn(n)]
	centroids = append(centroids, append([]float64(nil), first...))

	closest := make([]float64, n)
	for i, r := range rows {
		closest[i] = sqDist(r, first)
	}
	for len(centroids) < k {
		total := floats.Sum(closest)
		next := rng.Intn(n)
		if total > 0 {
			target := rng.Float64() * total
			var acc float64
			for i, d := range closest {
				acc += d
				if acc >= target && d > 0 {
					next = i
					break
				}
			}
		}
		c := append([]float64(nil), rows[next]...)
		centroids = append(centroids, c)
		for i, r := range rows {
			if d := sqDist(r, c); d < closest[i] {
				closest[i] = d
			}
		}
	}
	return centroids
}

func nearest(row []float64, centroids [][]float64) (int, float64) {
	best, bestD := 0, math.Inf(1)
	for c, ctr := range centroids {
		if d := sqDist(row, ctr); d < bestD {
			best, bestD = c, d
		}
	}
	return best, bestD
}

// lloyd refines centroids until labels settle, the shift drops below threshold, or
// maxIter is reached.
func lloyd(rows [][]float64, centroids [][]float64, maxIter int, threshold float64) *kmeansFit {
	n, k := len(rows), len(centroids)
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	dist := make([]float64, n)
	iter := 0
	for iter < maxIter {
		iter++
		changed := false
		for i, r := range rows {
			c, d := nearest(r, centroids)
			if c != labels[i] {
				labels[i] = c
				changed = true
			}
			dist[i] = d
		}
		if !changed {
			break
		}
		fillEmptyClusters(labels, dist, k)
		next := clusterMeans(rows, labels, k)
		var shift float64
		for c := range next {
			shift += sqDist(next[c], centroids[c])
		}
		centroids = next
		if shift <= threshold {
			// one final assignment against the settled centroids
			for i, r := range rows {
				labels[i], dist[i] = nearest(r, centroids)
			}
			break
		}
	}
	centroids = clusterMeans(rows, labels, k)
	return &kmeansFit{
		labels:     labels,
		centroids:  centroids,
		inertia:    withinSS(rows, labels, centroids),
		iterations: iter,
	}
}

// fillEmptyClusters moves the rows farthest from their centroid into empty clusters.
// Rows that are the last member of their cluster are never moved.
func fillEmptyClusters(labels []int, dist []float64, k int) {
	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			continue
		}
		far, farD := -1, -1.0
		for i, l := range labels {
			if counts[l] > 1 && dist[i] > farD {
				far, farD = i, dist[i]
			}
		}
		if far < 0 {
			return
		}
		counts[labels[far]]--
		labels[far] = c
		dist[far] = 0
		counts[c]++
	}
}

// compactFit drops empty clusters so that labels stay contiguous.
func compactFit(labels []int, centroids [][]float64) ([]int, [][]float64) {
	used := make([]bool, len(centroids))
	for _, l := range labels {
		used[l] = true
	}
	remap := make([]int, len(centroids))
	kept := centroids[:0:0]
	for c, ok := range used {
		if ok {
			remap[c] = len(kept)
			kept = append(kept, centroids[c])
		}
	}
	if len(kept) == len(centroids) {
		return labels, centroids
	}
	out := make([]int, len(labels))
	for i, l := range labels {
		out[i] = remap[l]
	}
	return out, kept
}
