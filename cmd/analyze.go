package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/KaramelBytes/clusterflow-cli/internal/config"
	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/KaramelBytes/clusterflow-cli/internal/utils"
	"github.com/spf13/cobra"
)

const summariesDirName = "summaries"

var (
	anaProject    string
	anaOutputPath string
	anaCorrThr    float64
	anaPrep       prepFlags
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Report data quality and exploratory statistics for a CSV/TSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		md, err := analyzeFile(path, currentConfig(), &anaPrep, anaCorrThr)
		if err != nil {
			return err
		}

		// Decide where to write: --output path, or attach to project, or stdout
		out := cmd.OutOrStdout()
		written := false
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote analysis to %s\n", anaOutputPath)
			written = true
		}
		if anaProject != "" {
			p, err := loadProjectByName(anaProject)
			if err != nil {
				return err
			}
			outFile, err := attachSummary(p, path, md)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Added analysis to project '%s' as %s\n", p.Name, filepath.Base(outFile))
			written = true
		}
		if !written {
			fmt.Fprintln(out, md)
		}
		return nil
	},
}

// analyzeFile loads and cleans path and renders its quality and exploratory report.
func analyzeFile(path string, c *cfgpkg.Global, prep *prepFlags, corrThr float64) (string, error) {
	st, err := prep.loadAndClean(path, c)
	if err != nil {
		return "", err
	}
	if corrThr <= 0 {
		corrThr = c.CorrelationThreshold
	}
	exp, err := report.Explore(st.Clean, st.Clean.NumericColumns(), corrThr)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(report.Quality(st.Raw.Name, st.Quality, st.CleanInfo))
	b.WriteString("\n")
	b.WriteString(report.Explored(exp))
	return b.String(), nil
}

// attachSummary writes md under the project's summaries folder. An existing summary for the
// same base name is kept and the new one gets a __N suffix.
func attachSummary(p *project.Project, path, md string) (string, error) {
	outDir := filepath.Join(p.RootDir(), summariesDirName)
	if err := utils.EnsureDir(outDir); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	outFile := filepath.Join(outDir, safe+".summary.md")
	if _, statErr := os.Stat(outFile); statErr == nil {
		for idx := 2; ; idx++ {
			cand := filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", safe, idx))
			if _, err := os.Stat(cand); os.IsNotExist(err) {
				outFile = cand
				break
			}
		}
	}
	if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
		return "", fmt.Errorf("write project summary: %w", err)
	}
	return outFile, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaProject, "project", "p", "", "project name to attach the summary to")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis (Markdown)")
	analyzeCmd.Flags().Float64Var(&anaCorrThr, "corr-threshold", 0, "|r| above which column pairs are reported (default from config)")
	anaPrep.register(analyzeCmd, false)
}
