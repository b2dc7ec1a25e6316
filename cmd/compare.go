package cmd

import (
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	cmpK       int
	cmpKMin    int
	cmpKMax    int
	cmpMethods []string
	cmpPrep    prepFlags
	cmpOut     outputFlags
)

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Run several methods at the same k and rank them",
	Long: `Compare clusters the dataset with each method at one k, ranks the runs by their average
rank over silhouette, Davies-Bouldin and Calinski-Harabasz, penalizes runs whose largest
cluster holds more than 80% of the rows, and keeps the best as the result.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		methods, err := parseMethods(cmpMethods)
		if err != nil {
			return err
		}
		p, err := openProject(cmpOut.project)
		if err != nil {
			return err
		}
		c := withProject(currentConfig(), p)
		st, err := cmpPrep.prepare(path, c)
		if err != nil {
			return err
		}
		k, err := chooseK(cmd, st, c, cmpK, cmpKMin, cmpKMax)
		if err != nil {
			return err
		}
		if err := st.Compare(&cluster.Runner{KMeans: c.FinalOptions()}, k, methods); err != nil {
			return err
		}

		var b strings.Builder
		if st.Sweep != nil {
			b.WriteString(report.Sweep(st.Sweep))
			b.WriteString("\n")
		}
		b.WriteString(report.Comparison(st.Comparison))
		b.WriteString("\n")
		b.WriteString(report.Result(st.Result))
		b.WriteString("\n")
		profile, prof, err := profileSection(st)
		if err != nil {
			return err
		}
		b.WriteString(profile)
		return emit(cmd, &cmpOut, p, st, path, b.String(), prof)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)
	compareCmd.Flags().IntVarP(&cmpK, "clusters", "k", 0, "number of clusters (0 = pick by sweep)")
	compareCmd.Flags().IntVar(&cmpKMin, "k-min", 2, "smallest k to sweep when -k is not set (default from config)")
	compareCmd.Flags().IntVar(&cmpKMax, "k-max", 11, "exclusive upper bound of the sweep (default from config)")
	compareCmd.Flags().StringSliceVar(&cmpMethods, "methods", nil, "methods to compare (default: kmeans,ward,complete,average)")
	cmpPrep.register(compareCmd, true)
	cmpOut.register(compareCmd, true)
}
