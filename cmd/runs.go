package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	cfgpkg "github.com/KaramelBytes/clusterflow-cli/internal/config"
	"github.com/KaramelBytes/clusterflow-cli/internal/pipeline"
	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/KaramelBytes/clusterflow-cli/internal/results"
	"github.com/KaramelBytes/clusterflow-cli/internal/utils"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// outputFlags control where a clustering command writes its results.
type outputFlags struct {
	project string
	output  string
	labels  string
	json    bool
}

func (o *outputFlags) register(cmd *cobra.Command, saveRuns bool) {
	f := cmd.Flags()
	f.StringVarP(&o.output, "output", "o", "", "optional path to write the report (Markdown, or JSON with --json)")
	f.BoolVar(&o.json, "json", false, "emit JSON instead of Markdown")
	if saveRuns {
		f.StringVarP(&o.project, "project", "p", "", "project to save the run into (its settings override config)")
		f.StringVar(&o.labels, "labels", "", "optional path to write the cleaned rows with a cluster column (CSV)")
	}
}

// openProject loads the named project, or returns nil when name is empty.
func openProject(name string) (*project.Project, error) {
	if name == "" {
		return nil, nil
	}
	return loadProjectByName(name)
}

// sweepRange resolves the k range from flags and configuration. An upper bound taken
// from configuration is capped at rows/2+1 so small datasets still sweep.
func sweepRange(cmd *cobra.Command, c *cfgpkg.Global, kMin, kMax, rows int) (int, int) {
	if !cmd.Flags().Changed("k-min") {
		kMin = c.KMin
	}
	if !cmd.Flags().Changed("k-max") {
		kMax = c.KMax
		if limit := rows/2 + 1; kMax > limit && limit > kMin {
			kMax = limit
		}
	}
	return kMin, kMax
}

// chooseK returns k when set, otherwise sweeps for it.
func chooseK(cmd *cobra.Command, st *pipeline.State, c *cfgpkg.Global, k, kMin, kMax int) (int, error) {
	if k > 0 {
		return k, nil
	}
	kMin, kMax = sweepRange(cmd, c, kMin, kMax, st.Scaled.Len())
	return st.SweepK(&cluster.Selector{KMeans: c.SweepOptions()}, kMin, kMax)
}

// profileSection renders the cluster profile of the current result. A failed projection
// only drops the PCA lines.
func profileSection(st *pipeline.State) (string, *results.Profile, error) {
	prof, err := st.Profile()
	if err != nil {
		return "", nil, err
	}
	proj, err := st.Projection()
	if err != nil {
		log.Warn().Err(err).Msg("pca projection skipped")
		proj = nil
	}
	return report.Profile(prof, proj), prof, nil
}

// runSummary is the JSON form of a command's results.
type runSummary struct {
	Dataset    string               `json:"dataset"`
	Features   []string             `json:"features"`
	Scaler     string               `json:"scaler"`
	Rows       int                  `json:"rows"`
	Sweep      *cluster.SweepReport `json:"sweep,omitempty"`
	Result     *cluster.Result      `json:"result,omitempty"`
	Comparison *cluster.Comparison  `json:"comparison,omitempty"`
	Profile    *results.Profile     `json:"profile,omitempty"`
	RunID      string               `json:"run_id,omitempty"`
}

func summarize(st *pipeline.State, dataPath string, prof *results.Profile) *runSummary {
	s := &runSummary{
		Dataset:    dataPath,
		Features:   st.Features,
		Sweep:      st.Sweep,
		Result:     st.Result,
		Comparison: st.Comparison,
		Profile:    prof,
	}
	if st.Scaler != nil {
		s.Scaler = string(st.Scaler.Kind)
	}
	if st.Clean != nil {
		s.Rows = st.Clean.Len()
	}
	return s
}

// emit writes md (or its JSON summary) to --output or stdout, exports labels, and saves the
// run into the project when one is set.
func emit(cmd *cobra.Command, o *outputFlags, p *project.Project, st *pipeline.State, dataPath, md string, prof *results.Profile) error {
	out := cmd.OutOrStdout()
	sum := summarize(st, dataPath, prof)

	if o.labels != "" && st.Result != nil {
		if err := utils.SafeWriteWith(o.labels, labelWriter(st)); err != nil {
			return fmt.Errorf("write labels: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote labels to %s\n", o.labels)
	}
	if p != nil && st.Result != nil {
		abs, err := filepath.Abs(dataPath)
		if err != nil {
			abs = dataPath
		}
		run := project.NewRun(abs, st.Features, st.Result)
		if err := p.AddRun(run, md, labelWriter(st)); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		sum.RunID = run.ID
		fmt.Fprintf(out, "✓ Saved run %s to project '%s'\n", run.ID, p.Name)
	}

	body := []byte(md)
	if o.json {
		b, err := utils.PrettyJSON(sum)
		if err != nil {
			return err
		}
		body = b
	}
	if o.output != "" {
		if err := utils.SafeWriteFile(o.output, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "✓ Wrote report to %s\n", o.output)
		return nil
	}
	if p == nil || o.json {
		fmt.Fprintln(out, string(body))
	}
	return nil
}

func labelWriter(st *pipeline.State) func(io.Writer) error {
	return func(w io.Writer) error {
		return results.WriteLabelledCSV(w, st.Clean, st.Result.Labels)
	}
}
