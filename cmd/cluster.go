package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	clK      int
	clKMin   int
	clKMax   int
	clMethod string
	clPrep   prepFlags
	clOut    outputFlags
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Cluster a dataset with one method",
	Long: `Cluster runs a single method (kmeans, ward, complete or average) at k clusters. Without
-k the cluster count comes from a k sweep first. Unknown method names run k-means.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		p, err := openProject(clOut.project)
		if err != nil {
			return err
		}
		c := withProject(currentConfig(), p)
		st, err := clPrep.prepare(path, c)
		if err != nil {
			return err
		}
		k, err := chooseK(cmd, st, c, clK, clKMin, clKMax)
		if err != nil {
			return err
		}

		name := clMethod
		if !cmd.Flags().Changed("method") && p != nil && p.Settings.Method != "" {
			name = p.Settings.Method
		}
		method, ok := cluster.ParseMethod(name)
		if !ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: unknown method %q, using %s\n", name, method)
		}
		if err := st.Cluster(&cluster.Runner{KMeans: c.FinalOptions()}, k, method); err != nil {
			return err
		}

		var b strings.Builder
		if st.Sweep != nil {
			b.WriteString(report.Sweep(st.Sweep))
			b.WriteString("\n")
		}
		b.WriteString(report.Result(st.Result))
		b.WriteString("\n")
		profile, prof, err := profileSection(st)
		if err != nil {
			return err
		}
		b.WriteString(profile)
		return emit(cmd, &clOut, p, st, path, b.String(), prof)
	},
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.Flags().IntVarP(&clK, "clusters", "k", 0, "number of clusters (0 = pick by sweep)")
	clusterCmd.Flags().IntVar(&clKMin, "k-min", 2, "smallest k to sweep when -k is not set (default from config)")
	clusterCmd.Flags().IntVar(&clKMax, "k-max", 11, "exclusive upper bound of the sweep (default from config)")
	clusterCmd.Flags().StringVarP(&clMethod, "method", "m", "kmeans", "method: kmeans|ward|complete|average")
	clPrep.register(clusterCmd, true)
	clOut.register(clusterCmd, true)
}
