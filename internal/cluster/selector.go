package cluster

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

// closeCallPct is the relative composite gap, in percent, below which the smallest
// candidate loses to the next one.
const closeCallPct = 5.0

// SweepRow holds the scores of one candidate cluster count.
type SweepRow struct {
	K                    int     `json:"k"`
	Silhouette           float64 `json:"silhouette"`
	DaviesBouldin        float64 `json:"davies_bouldin"`
	CalinskiHarabasz     float64 `json:"calinski_harabasz"`
	Inertia              float64 `json:"inertia"`
	SilhouetteNorm       float64 `json:"silhouette_norm"`
	DaviesBouldinNorm    float64 `json:"davies_bouldin_norm"`
	CalinskiHarabaszNorm float64 `json:"calinski_harabasz_norm"`
	Composite            float64 `json:"composite"`
}

// SweepReport is the outcome of a k sweep.
type SweepReport struct {
	Rows []SweepRow `json:"rows"`
	// InertiaReduction[i] is the percent drop in inertia from Rows[i] to Rows[i+1].
	InertiaReduction []float64 `json:"inertia_reduction"`
	OptimalK         int       `json:"optimal_k"`
	// SmallestDiscarded is set when the smallest candidate won but was too close to the next.
	SmallestDiscarded bool `json:"smallest_discarded"`
}

// Selector sweeps candidate cluster counts with k-means.
type Selector struct {
	KMeans KMeansOptions
}

// NewSelector returns a Selector configured for exploratory sweeps.
func NewSelector() *Selector {
	return &Selector{KMeans: SweepKMeans()}
}

// SelectOptimalK sweeps k in [kMin, kMax) with the default sweep options.
func SelectOptimalK(m *Matrix, kMin, kMax int) (int, *SweepReport, error) {
	return NewSelector().Select(m, kMin, kMax)
}

// Select clusters m for every k in [kMin, kMax), scores each candidate, and returns the
// chosen k along with the full report.
func (s *Selector) Select(m *Matrix, kMin, kMax int) (int, *SweepReport, error) {
	if m == nil || m.Len() == 0 {
		return 0, nil, fmt.Errorf("%w: empty matrix", ErrInvalidMatrix)
	}
	switch {
	case kMin < 2:
		return 0, nil, fmt.Errorf("%w: k_min %d is below 2", ErrInvalidRange, kMin)
	case kMax <= kMin:
		return 0, nil, fmt.Errorf("%w: k_max %d must exceed k_min %d", ErrInvalidRange, kMax, kMin)
	case m.Len() < kMin:
		return 0, nil, fmt.Errorf("%w: %d rows for k_min %d", ErrInvalidRange, m.Len(), kMin)
	}

	count := kMax - kMin
	rows := make([]SweepRow, 0, count)
	for k := kMin; k < kMax; k++ {
		if k > m.Len() {
			return 0, nil, fmt.Errorf("%w: %d rows for k=%d", ErrDegenerateInput, m.Len(), k)
		}
		fit := fitKMeans(m.Rows, k, s.KMeans)
		metrics, err := ComputeMetrics(m, fit.labels, true)
		if err != nil {
			return 0, nil, fmt.Errorf("sweep k=%d: %w", k, err)
		}
		rows = append(rows, SweepRow{
			K:                k,
			Silhouette:       metrics.Silhouette,
			DaviesBouldin:    metrics.DaviesBouldin,
			CalinskiHarabasz: metrics.CalinskiHarabasz,
			Inertia:          *metrics.Inertia,
		})
	}

	sil := make([]float64, count)
	db := make([]float64, count)
	ch := make([]float64, count)
	for i, r := range rows {
		sil[i], db[i], ch[i] = r.Silhouette, r.DaviesBouldin, r.CalinskiHarabasz
	}
	sil, db, ch = minMax(sil), minMax(db), minMax(ch)
	ks := make([]int, count)
	composite := make([]float64, count)
	for i := range rows {
		rows[i].SilhouetteNorm = sil[i]
		rows[i].DaviesBouldinNorm = 1 - db[i]
		rows[i].CalinskiHarabaszNorm = ch[i]
		rows[i].Composite = (rows[i].SilhouetteNorm + rows[i].DaviesBouldinNorm + rows[i].CalinskiHarabaszNorm) / 3
		ks[i] = rows[i].K
		composite[i] = rows[i].Composite
	}

	rep := &SweepReport{Rows: rows, InertiaReduction: inertiaReduction(rows)}
	rep.OptimalK, rep.SmallestDiscarded = pickCandidate(ks, composite)
	log.Debug().
		Int("k_min", kMin).
		Int("k_max", kMax).
		Int("optimal_k", rep.OptimalK).
		Bool("smallest_discarded", rep.SmallestDiscarded).
		Msg("k sweep complete")
	return rep.OptimalK, rep, nil
}

// minMax scales values onto [0,1]. A constant series maps to 0.5 everywhere.
func minMax(values []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(values))
	span := hi - lo
	for i, v := range values {
		if span == 0 {
			out[i] = 0.5
			continue
		}
		out[i] = (v - lo) / span
	}
	return out
}

func inertiaReduction(rows []SweepRow) []float64 {
	if len(rows) < 2 {
		return []float64{}
	}
	out := make([]float64, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		prev := rows[i-1].Inertia
		if prev == 0 {
			continue
		}
		out[i-1] = (prev - rows[i].Inertia) / prev * 100
	}
	return out
}

// pickCandidate returns the k with the highest composite score, first one on ties. When
// that is the smallest candidate and the next k scores within closeCallPct of it, the
// choice is restricted to the larger candidates.
func pickCandidate(ks []int, composite []float64) (int, bool) {
	best := argmax(composite, 0)
	if best != 0 || len(ks) < 2 || ks[1] != ks[0]+1 {
		return ks[best], false
	}
	top := composite[0]
	if top <= 0 {
		return ks[best], false
	}
	if math.Abs(top-composite[1])/top*100 < closeCallPct {
		return ks[argmax(composite, 1)], true
	}
	return ks[best], false
}

func argmax(values []float64, from int) int {
	best := from
	for i := from + 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}
