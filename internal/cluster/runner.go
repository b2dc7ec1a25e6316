package cluster

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of one clustering run.
type Result struct {
	Method        Method      `json:"method"`
	NClusters     int         `json:"n_clusters"`
	Labels        []int       `json:"labels"`
	Metrics       Metrics     `json:"metrics"`
	MaxClusterPct float64     `json:"max_cluster_pct"`
	Centroids     [][]float64 `json:"centroids"`
}

// Runner executes single clustering runs.
type Runner struct {
	KMeans KMeansOptions
}

// NewRunner returns a Runner configured for final runs.
func NewRunner() *Runner {
	return &Runner{KMeans: FinalKMeans()}
}

// Run clusters m into k clusters with the given method.
func Run(m *Matrix, k int, method Method) (*Result, error) {
	return NewRunner().Run(m, k, method)
}

// RunNamed is Run for callers holding a method name. Unknown names fall back to k-means.
func RunNamed(m *Matrix, k int, name string) (*Result, error) {
	return NewRunner().RunNamed(m, k, name)
}

// RunNamed resolves name with ParseMethod and runs it; unrecognized names run k-means.
func (r *Runner) RunNamed(m *Matrix, k int, name string) (*Result, error) {
	method, ok := ParseMethod(name)
	if !ok {
		log.Warn().Str("method", name).Msg("unknown clustering method, falling back to kmeans")
	}
	return r.Run(m, k, method)
}

// Run clusters m into k clusters. k must lie in [2, rows].
func (r *Runner) Run(m *Matrix, k int, method Method) (*Result, error) {
	if m == nil || m.Len() == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrInvalidMatrix)
	}
	if k < 2 || k > m.Len() {
		return nil, fmt.Errorf("%w: %d (must be between 2 and %d)", ErrInvalidClusterCount, k, m.Len())
	}

	var labels []int
	var centroids [][]float64
	switch method {
	case Ward, CompleteLinkage, AverageLinkage:
		labels = agglomerate(m.Rows, k, method)
	default:
		method = KMeans
		fit := fitKMeans(m.Rows, k, r.KMeans)
		labels, centroids = fit.labels, fit.centroids
	}

	metrics, err := ComputeMetrics(m, labels, method.CentroidBased())
	if err != nil {
		return nil, fmt.Errorf("%s with k=%d: %w", method, k, err)
	}
	if centroids == nil {
		ids, kk := denseLabels(labels)
		centroids = clusterMeans(m.Rows, ids, kk)
	}
	log.Debug().
		Str("method", method.String()).
		Int("k", k).
		Float64("silhouette", metrics.Silhouette).
		Float64("davies_bouldin", metrics.DaviesBouldin).
		Float64("calinski_harabasz", metrics.CalinskiHarabasz).
		Msg("clustering run complete")
	return &Result{
		Method:        method,
		NClusters:     k,
		Labels:        labels,
		Metrics:       *metrics,
		MaxClusterPct: metrics.MaxFraction(),
		Centroids:     centroids,
	}, nil
}
