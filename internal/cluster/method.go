package cluster

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Method selects the clustering algorithm for a run.
type Method int

const (
	// KMeans partitions rows around k centroids (Lloyd iterations, k-means++ seeding).
	KMeans Method = iota
	// Ward merges the pair of clusters with the smallest increase in within-cluster variance.
	Ward
	// CompleteLinkage merges by the maximum pairwise distance between clusters.
	CompleteLinkage
	// AverageLinkage merges by the mean pairwise distance between clusters.
	AverageLinkage
)

var methodNames = map[Method]string{
	KMeans:          "kmeans",
	Ward:            "hierarchical",
	CompleteLinkage: "hierarchical_complete",
	AverageLinkage:  "hierarchical_average",
}

// Methods lists every supported method in declaration order.
func Methods() []Method {
	return []Method{KMeans, Ward, CompleteLinkage, AverageLinkage}
}

// String returns the wire name of the method.
func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// CentroidBased reports whether the method represents clusters by centroids, which
// is what makes inertia meaningful for it.
func (m Method) CentroidBased() bool { return m == KMeans }

// ParseMethod resolves a wire name to a Method. Matching ignores case and surrounding space.
func ParseMethod(name string) (Method, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	for m, s := range methodNames {
		if s == n {
			return m, true
		}
	}
	// short aliases accepted by the CLI
	switch n {
	case "ward":
		return Ward, true
	case "complete":
		return CompleteLinkage, true
	case "average":
		return AverageLinkage, true
	}
	return KMeans, false
}

// MarshalJSON encodes the method as its wire name.
func (m Method) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON decodes a wire name; unknown names are rejected.
func (m *Method) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, ok := ParseMethod(s)
	if !ok {
		return fmt.Errorf("unknown clustering method %q", s)
	}
	*m = v
	return nil
}
