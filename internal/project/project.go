package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/utils"
	"github.com/google/uuid"
)

const runsDirName = "runs"

// Project represents a clusterflow project persisted on disk.
type Project struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Runs        map[string]*Run `json:"runs"`
	Settings    *Settings       `json:"settings"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// Settings overrides global clustering defaults for one project. Zero values inherit.
type Settings struct {
	KMin   int    `json:"k_min,omitempty"`
	KMax   int    `json:"k_max,omitempty"`
	Scaler string `json:"scaler,omitempty"`
	Method string `json:"method,omitempty"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Runs:        make(map[string]*Run),
		Settings:    &Settings{},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, utils.ProjectFileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Runs == nil {
		p.Runs = make(map[string]*Run)
	}
	if p.Settings == nil {
		p.Settings = &Settings{}
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// RunsDir returns the directory holding run reports and exports.
func (p *Project) RunsDir() string { return filepath.Join(p.rootDir, runsDirName) }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, utils.ProjectFileName), data)
}

// NewRun builds a run record from a clustering result.
func NewRun(dataset string, features []string, res *cluster.Result) *Run {
	return &Run{
		ID:               uuid.NewString(),
		Dataset:          dataset,
		Method:           res.Method.String(),
		K:                res.NClusters,
		Features:         append([]string(nil), features...),
		Rows:             len(res.Labels),
		Silhouette:       res.Metrics.Silhouette,
		DaviesBouldin:    res.Metrics.DaviesBouldin,
		CalinskiHarabasz: res.Metrics.CalinskiHarabasz,
		MaxClusterPct:    res.MaxClusterPct,
		CreatedAt:        time.Now(),
	}
}

// AddRun stores the Markdown report and, when writeLabels is set, the labelled CSV under
// runs/, then registers the run. Call Save() to persist the metadata.
func (p *Project) AddRun(r *Run, report string, writeLabels func(io.Writer) error) error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if err := utils.EnsureDir(p.RunsDir()); err != nil {
		return fmt.Errorf("ensure runs dir: %w", err)
	}
	if report != "" {
		name := r.ID + ".md"
		if err := utils.SafeWriteFile(filepath.Join(p.RunsDir(), name), []byte(report)); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		r.ReportFile = filepath.Join(runsDirName, name)
	}
	if writeLabels != nil {
		name := r.ID + ".csv"
		if err := utils.SafeWriteWith(filepath.Join(p.RunsDir(), name), writeLabels); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
		r.LabelsFile = filepath.Join(runsDirName, name)
	}
	if p.Runs == nil {
		p.Runs = make(map[string]*Run)
	}
	p.Runs[r.ID] = r
	p.UpdatedAt = time.Now()
	return nil
}

// SortedRuns returns runs oldest first; equal timestamps order by id.
func (p *Project) SortedRuns() []*Run {
	out := make([]*Run, 0, len(p.Runs))
	for _, r := range p.Runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// BestRun returns the run with the highest silhouette, or nil when there are none.
func (p *Project) BestRun() *Run {
	var best *Run
	for _, r := range p.SortedRuns() {
		if best == nil || r.Silhouette > best.Silhouette {
			best = r
		}
	}
	return best
}
