// Package pipeline chains the analysis stages over an explicit, caller-owned State.
package pipeline

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/KaramelBytes/clusterflow-cli/internal/results"
	"github.com/rs/zerolog/log"
)

// ErrStageNotReady indicates a stage called before the artefact it needs exists.
var ErrStageNotReady = errors.New("pipeline stage not ready")

// State holds the artefacts produced by each stage. Later stages read earlier
// artefacts; re-running a stage clears everything downstream of it.
type State struct {
	Raw        *dataset.Frame
	Quality    *dataset.Quality
	Clean      *dataset.Frame
	CleanInfo  *dataset.CleanReport
	Selection  *dataset.Selection
	Features   []string
	Scaled     *cluster.Matrix
	Scaler     *dataset.Scaler
	Sweep      *cluster.SweepReport
	Result     *cluster.Result
	Comparison *cluster.Comparison
	Results    []*cluster.Result
}

// New returns an empty State.
func New() *State { return &State{} }

// LoadFile reads a CSV file as the raw frame.
func (s *State) LoadFile(path string, opt dataset.LoadOptions) error {
	f, err := dataset.LoadFile(path, opt)
	if err != nil {
		return err
	}
	s.setRaw(f)
	return nil
}

// Load reads CSV from r as the raw frame.
func (s *State) Load(r io.Reader, name string, opt dataset.LoadOptions) error {
	f, err := dataset.Load(r, name, opt)
	if err != nil {
		return err
	}
	s.setRaw(f)
	return nil
}

func (s *State) setRaw(f *dataset.Frame) {
	*s = State{Raw: f, Quality: dataset.AnalyzeQuality(f)}
}

// CleanData cleans the raw frame.
func (s *State) CleanData(opt dataset.CleanOptions) error {
	if s.Raw == nil {
		return fmt.Errorf("%w: load data before cleaning", ErrStageNotReady)
	}
	f, info, err := dataset.Clean(s.Raw, opt)
	if err != nil {
		return err
	}
	if f.Len() == 0 {
		return fmt.Errorf("%w: cleaning removed every row", dataset.ErrEmptyData)
	}
	s.resetFrom(stageClean)
	s.Clean, s.CleanInfo = f, info
	return nil
}

// SelectFeatures picks the clustering features automatically.
func (s *State) SelectFeatures(opt dataset.SelectOptions) error {
	if s.Clean == nil {
		return fmt.Errorf("%w: clean data before selecting features", ErrStageNotReady)
	}
	sel, err := dataset.SelectFeatures(s.Clean, opt)
	if err != nil {
		return err
	}
	if len(sel.Selected) == 0 {
		return fmt.Errorf("%w: automatic selection kept no features", dataset.ErrNoNumericColumns)
	}
	s.resetFrom(stageFeatures)
	s.Selection, s.Features = sel, sel.Selected
	return nil
}

// UseFeatures sets the clustering features explicitly. An empty list uses every numeric
// column of the cleaned frame.
func (s *State) UseFeatures(cols []string) error {
	if s.Clean == nil {
		return fmt.Errorf("%w: clean data before selecting features", ErrStageNotReady)
	}
	if len(cols) == 0 {
		cols = s.Clean.NumericColumns()
	}
	if _, err := dataset.VarianceStats(s.Clean, cols); err != nil {
		return err
	}
	s.resetFrom(stageFeatures)
	s.Features = append([]string(nil), cols...)
	return nil
}

// ScaleData scales the selected features into the feature matrix.
func (s *State) ScaleData(kind dataset.ScalerKind) error {
	if s.Clean == nil || len(s.Features) == 0 {
		return fmt.Errorf("%w: select features before scaling", ErrStageNotReady)
	}
	m, sc, err := dataset.Scale(s.Clean, s.Features, kind)
	if err != nil {
		return err
	}
	s.resetFrom(stageScale)
	s.Scaled, s.Scaler = m, sc
	return nil
}

// SweepK runs the k sweep on the scaled matrix.
func (s *State) SweepK(sel *cluster.Selector, kMin, kMax int) (int, error) {
	if s.Scaled == nil {
		return 0, fmt.Errorf("%w: scale data before sweeping k", ErrStageNotReady)
	}
	k, rep, err := sel.Select(s.Scaled, kMin, kMax)
	if err != nil {
		return 0, err
	}
	s.Sweep = rep
	return k, nil
}

// Cluster runs one method on the scaled matrix.
func (s *State) Cluster(r *cluster.Runner, k int, method cluster.Method) error {
	if s.Scaled == nil {
		return fmt.Errorf("%w: scale data before clustering", ErrStageNotReady)
	}
	res, err := r.Run(s.Scaled, k, method)
	if err != nil {
		return err
	}
	s.Result = res
	s.Comparison, s.Results = nil, nil
	return nil
}

// Compare runs every method at k, ranks them, and keeps the best as the current result.
func (s *State) Compare(r *cluster.Runner, k int, methods []cluster.Method) error {
	if s.Scaled == nil {
		return fmt.Errorf("%w: scale data before comparing methods", ErrStageNotReady)
	}
	if len(methods) == 0 {
		methods = cluster.Methods()
	}
	runs := make([]*cluster.Result, 0, len(methods))
	for _, m := range methods {
		res, err := r.Run(s.Scaled, k, m)
		if err != nil {
			return fmt.Errorf("%s: %w", m, err)
		}
		runs = append(runs, res)
	}
	best, cmp, err := cluster.RankMethods(cluster.CandidatesFor(methods, runs))
	if err != nil {
		return err
	}
	for _, res := range runs {
		if res.Method.String() == best {
			s.Result = res
			break
		}
	}
	s.Results, s.Comparison = runs, cmp
	log.Debug().Str("best", best).Int("k", k).Msg("methods compared")
	return nil
}

// Profile describes the current result in original units.
func (s *State) Profile() (*results.Profile, error) {
	if s.Result == nil || s.Clean == nil {
		return nil, fmt.Errorf("%w: cluster before profiling", ErrStageNotReady)
	}
	return results.BuildProfile(s.Clean, s.Features, s.Result)
}

// Projection projects the scaled matrix onto two principal components.
func (s *State) Projection() (*results.Projection, error) {
	if s.Scaled == nil {
		return nil, fmt.Errorf("%w: scale data before projecting", ErrStageNotReady)
	}
	return results.Project2D(s.Scaled)
}

type stage int

const (
	stageClean stage = iota
	stageFeatures
	stageScale
)

// resetFrom clears the artefacts produced at or after from.
func (s *State) resetFrom(from stage) {
	if from <= stageClean {
		s.Clean, s.CleanInfo = nil, nil
	}
	if from <= stageFeatures {
		s.Selection, s.Features = nil, nil
	}
	s.Scaled, s.Scaler = nil, nil
	s.Sweep, s.Result, s.Comparison, s.Results = nil, nil, nil, nil
}
