package cluster

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
)

// merge records one agglomeration step. Clusters are identified by the lowest row index
// they contain, so a and b name the rows whose clusters were joined.
type merge struct {
	a, b   int
	height float64
}

// agglomerate clusters rows bottom-up with the linkage of method and cuts the tree at k
// clusters. It runs the nearest-neighbour chain over a dense distance matrix, which is
// valid for Ward, complete and average linkage: O(n²) time and memory.
func agglomerate(rows [][]float64, k int, method Method) []int {
	n := len(rows)
	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := sqDist(rows[i], rows[j])
			if method != Ward {
				v = math.Sqrt(v)
			}
			d[i*n+j] = v
			d[j*n+i] = v
		}
	}
	size := make([]float64, n)
	active := make([]bool, n)
	for i := range size {
		size[i] = 1
		active[i] = true
	}

	merges := make([]merge, 0, n-1)
	chain := make([]int, 0, n)
	for remaining := n; remaining > 1; {
		if len(chain) == 0 {
			for i, ok := range active {
				if ok {
					chain = append(chain, i)
					break
				}
			}
		}
		a := chain[len(chain)-1]
		prev := -1
		best, bestD := -1, math.Inf(1)
		if len(chain) > 1 {
			prev = chain[len(chain)-2]
			best, bestD = prev, d[a*n+prev]
		}
		for x := 0; x < n; x++ {
			if !active[x] || x == a {
				continue
			}
			if v := d[a*n+x]; v < bestD {
				best, bestD = x, v
			}
		}
		if best != prev {
			chain = append(chain, best)
			continue
		}

		chain = chain[:len(chain)-2]
		lo, hi := a, best
		if hi < lo {
			lo, hi = hi, lo
		}
		merges = append(merges, merge{a: lo, b: hi, height: bestD})
		for x := 0; x < n; x++ {
			if !active[x] || x == lo || x == hi {
				continue
			}
			v := lanceWilliams(method, d[lo*n+x], d[hi*n+x], bestD, size[lo], size[hi], size[x])
			d[lo*n+x] = v
			d[x*n+lo] = v
		}
		size[lo] += size[hi]
		active[hi] = false
		remaining--
	}
	log.Debug().Str("method", method.String()).Int("rows", n).Int("merges", len(merges)).Msg("agglomeration complete")
	return cutTree(merges, n, k)
}

// lanceWilliams returns the distance from cluster x to the union of clusters i and j.
func lanceWilliams(method Method, dix, djx, dij, ni, nj, nx float64) float64 {
	switch method {
	case CompleteLinkage:
		return math.Max(dix, djx)
	case AverageLinkage:
		return (ni*dix + nj*djx) / (ni + nj)
	default:
		// Ward on squared Euclidean distances
		return ((ni+nx)*dix + (nj+nx)*djx - nx*dij) / (ni + nj + nx)
	}
}

// cutTree applies the n-k lowest merges and numbers the resulting clusters by the first
// row that belongs to each.
func cutTree(merges []merge, n, k int) []int {
	sort.SliceStable(merges, func(i, j int) bool { return merges[i].height < merges[j].height })
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	find := func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	for _, m := range merges[:n-k] {
		ra, rb := find(m.a), find(m.b)
		if ra != rb {
			parent[rb] = ra
		}
	}
	labels := make([]int, n)
	ids := make(map[int]int)
	for i := range labels {
		root := find(i)
		id, ok := ids[root]
		if !ok {
			id = len(ids)
			ids[root] = id
		}
		labels[i] = id
	}
	return labels
}
