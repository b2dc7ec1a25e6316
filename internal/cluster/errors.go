package cluster

import "errors"

var (
	// ErrInvalidRange indicates malformed sweep bounds or too few rows for the minimum k.
	ErrInvalidRange = errors.New("invalid cluster range")
	// ErrInvalidClusterCount indicates a requested cluster count outside [2, rows].
	ErrInvalidClusterCount = errors.New("invalid cluster count")
	// ErrInsufficientClusters indicates fewer than 2 distinct labels.
	ErrInsufficientClusters = errors.New("insufficient clusters")
	// ErrDegenerateInput indicates too few rows relative to the number of clusters.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrShapeMismatch indicates labels and matrix rows of different lengths.
	ErrShapeMismatch = errors.New("labels do not match matrix rows")
	// ErrInvalidMatrix indicates a ragged, empty or non-finite feature matrix.
	ErrInvalidMatrix = errors.New("invalid feature matrix")
	// ErrNoCandidates indicates an empty method comparison.
	ErrNoCandidates = errors.New("no clustering results to compare")
)
