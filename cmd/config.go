package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/clusterflow-cli/internal/config"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ClusterFlow configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "k_min: %d\n", c.KMin)
		fmt.Fprintf(out, "k_max: %d\n", c.KMax)
		fmt.Fprintf(out, "seed: %d\n", c.Seed)
		fmt.Fprintf(out, "sweep_restarts: %d\n", c.SweepRestarts)
		fmt.Fprintf(out, "sweep_max_iter: %d\n", c.SweepMaxIter)
		fmt.Fprintf(out, "final_restarts: %d\n", c.FinalRestarts)
		fmt.Fprintf(out, "final_max_iter: %d\n", c.FinalMaxIter)
		fmt.Fprintf(out, "fill_method: %s\n", c.FillMethod)
		fmt.Fprintf(out, "remove_duplicates: %t\n", c.RemoveDuplicates)
		fmt.Fprintf(out, "remove_outliers: %t\n", c.RemoveOutliers)
		fmt.Fprintf(out, "outlier_threshold: %.3f\n", c.OutlierThreshold)
		fmt.Fprintf(out, "scaler: %s\n", c.Scaler)
		fmt.Fprintf(out, "correlation_threshold: %.3f\n", c.CorrelationThreshold)
		fmt.Fprintf(out, "variance_threshold: %.3f\n", c.VarianceThreshold)
		fmt.Fprintf(out, "max_features: %d\n", c.MaxFeatures)
		fmt.Fprintf(out, "projects_dir: %s\n", c.ProjectsDir)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "listen_addr: %s\n", c.ListenAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := setConfigValue(c, key, val); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	atoi := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	atof := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "k_min":
		c.KMin, err = atoi(2)
	case "k_max":
		c.KMax, err = atoi(3)
	case "seed":
		c.Seed, err = strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid int for seed: %w", err)
		}
	case "sweep_restarts":
		c.SweepRestarts, err = atoi(1)
	case "sweep_max_iter":
		c.SweepMaxIter, err = atoi(1)
	case "final_restarts":
		c.FinalRestarts, err = atoi(1)
	case "final_max_iter":
		c.FinalMaxIter, err = atoi(1)
	case "fill_method":
		var m dataset.FillMethod
		m, err = dataset.ParseFillMethod(val)
		c.FillMethod = string(m)
	case "remove_duplicates", "remove_outliers":
		b, perr := strconv.ParseBool(val)
		if perr != nil {
			return fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		if key == "remove_duplicates" {
			c.RemoveDuplicates = b
		} else {
			c.RemoveOutliers = b
		}
	case "outlier_threshold":
		c.OutlierThreshold, err = atof()
	case "scaler":
		var k dataset.ScalerKind
		k, err = dataset.ParseScalerKind(val)
		c.Scaler = string(k)
	case "correlation_threshold":
		c.CorrelationThreshold, err = atof()
	case "variance_threshold":
		c.VarianceThreshold, err = atof()
	case "max_features":
		c.MaxFeatures, err = atoi(1)
	case "projects_dir":
		c.ProjectsDir = val
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	case "listen_addr":
		c.ListenAddr = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
