package cmd

import (
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	swKMin    int
	swKMax    int
	swProject string
	swPrep    prepFlags
	swOut     outputFlags
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Score candidate cluster counts with k-means and pick k",
	Long: `Sweep runs k-means for every k in [k-min, k-max), scores each candidate by silhouette,
Davies-Bouldin and Calinski-Harabasz, and picks the k with the best normalized composite.
When the smallest k wins by less than 5% it is passed over for the next candidate.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		p, err := openProject(swProject)
		if err != nil {
			return err
		}
		c := withProject(currentConfig(), p)
		st, err := swPrep.prepare(path, c)
		if err != nil {
			return err
		}
		if _, err := chooseK(cmd, st, c, 0, swKMin, swKMax); err != nil {
			return err
		}
		return emit(cmd, &swOut, nil, st, path, report.Sweep(st.Sweep), nil)
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().IntVar(&swKMin, "k-min", 2, "smallest k to try (default from config)")
	sweepCmd.Flags().IntVar(&swKMax, "k-max", 11, "exclusive upper bound on k (default from config)")
	sweepCmd.Flags().StringVarP(&swProject, "project", "p", "", "project whose settings override config")
	swPrep.register(sweepCmd, true)
	swOut.register(sweepCmd, false)
}
