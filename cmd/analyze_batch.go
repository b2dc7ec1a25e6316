package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/spf13/cobra"
)

// maxProjectSummaries caps the dataset summaries one project accumulates.
const maxProjectSummaries = 50

var (
	abProject string
	abCorrThr float64
	abQuiet   bool
	abPrep    prepFlags
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV files with progress and optional project attachment",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		var p *project.Project
		if abProject != "" {
			pp, err := loadProjectByName(abProject)
			if err != nil {
				return err
			}
			p = pp
			existing, _ := filepath.Glob(filepath.Join(p.RootDir(), summariesDirName, "*.summary.md"))
			if len(existing)+len(files) > maxProjectSummaries {
				return fmt.Errorf("project would hold %d dataset summaries (limit: %d); remove old summaries or create a new project",
					len(existing)+len(files), maxProjectSummaries)
			}
		}

		out := cmd.OutOrStdout()
		c := currentConfig()
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			md, err := analyzeFile(path, c, &abPrep, abCorrThr)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if p == nil {
				if !abQuiet {
					fmt.Fprintln(out, md)
				}
				continue
			}
			outFile, err := attachSummary(p, path, md)
			if err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Added analysis to project '%s' as %s\n", p.Name, filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves glob patterns and literal paths into a sorted, de-duplicated list.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abProject, "project", "p", "", "project name to attach summaries")
	analyzeBatchCmd.Flags().Float64Var(&abCorrThr, "corr-threshold", 0, "|r| above which column pairs are reported (default from config)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abPrep.register(analyzeBatchCmd, false)
}
