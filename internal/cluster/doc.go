// Package cluster implements the clustering decision engine: quality metrics for a
// label assignment, the k sweep that picks a cluster count, single clustering runs for
// k-means and agglomerative linkages, and the ranking of runs against each other.
//
// Every function here is a pure function of its arguments. Inputs are never mutated and
// no package state is kept, so callers may invoke them concurrently on disjoint data.
package cluster
