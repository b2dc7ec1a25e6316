package cmd

import (
	"fmt"
	"strconv"

	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	pmProject string
	pmClear   bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project settings",
}

var projectSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set or clear a project default (k_min, k_max, scaler, method)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		key, val := args[0], ""
		if len(args) == 2 {
			val = args[1]
		}
		if !pmClear && val == "" {
			return fmt.Errorf("value is required unless --clear is set")
		}
		if err := setProjectValue(p.Settings, key, val, pmClear); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		if pmClear {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %s for %s\n", key, pmProject)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s for %s: %s\n", key, pmProject, val)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's settings and best run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "name: %s\n", p.Name)
		if p.Description != "" {
			fmt.Fprintf(out, "description: %s\n", p.Description)
		}
		fmt.Fprintf(out, "k_min: %s\n", orInherit(p.Settings.KMin))
		fmt.Fprintf(out, "k_max: %s\n", orInherit(p.Settings.KMax))
		fmt.Fprintf(out, "scaler: %s\n", orInheritString(p.Settings.Scaler))
		fmt.Fprintf(out, "method: %s\n", orInheritString(p.Settings.Method))
		fmt.Fprintf(out, "runs: %d\n", len(p.Runs))
		if best := p.BestRun(); best != nil {
			fmt.Fprintf(out, "best run: %s (%s, k=%d, silhouette %.4f)\n", best.ID, best.Method, best.K, best.Silhouette)
		}
		return nil
	},
}

func setProjectValue(s *project.Settings, key, val string, clear bool) error {
	switch key {
	case "k_min", "k_max":
		n := 0
		if !clear {
			i, err := strconv.Atoi(val)
			if err != nil || i < 2 {
				return fmt.Errorf("invalid int for %s: %v", key, val)
			}
			n = i
		}
		if key == "k_min" {
			s.KMin = n
		} else {
			s.KMax = n
		}
		if s.KMin > 0 && s.KMax > 0 && s.KMax <= s.KMin {
			return fmt.Errorf("k_max (%d) must exceed k_min (%d)", s.KMax, s.KMin)
		}
	case "scaler":
		if clear {
			s.Scaler = ""
			return nil
		}
		k, err := parseScaler(val)
		if err != nil {
			return err
		}
		s.Scaler = string(k)
	case "method":
		if clear {
			s.Method = ""
			return nil
		}
		m, err := parseMethodStrict(val)
		if err != nil {
			return err
		}
		s.Method = m.String()
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func orInherit(n int) string {
	if n == 0 {
		return "(config)"
	}
	return strconv.Itoa(n)
}

func orInheritString(s string) string {
	if s == "" {
		return "(config)"
	}
	return s
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetCmd)
	projectCmd.AddCommand(projectShowCmd)

	projectCmd.PersistentFlags().StringVarP(&pmProject, "project", "p", "", "project name")
	projectSetCmd.Flags().BoolVar(&pmClear, "clear", false, "clear the project's override")
}
