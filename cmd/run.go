package cmd

import (
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	runKMin    int
	runKMax    int
	runMethods []string
	runExplore bool
	runPrep    prepFlags
	runOut     outputFlags
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Run the full pipeline: clean, pick k, compare methods, profile clusters",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		methods, err := parseMethods(runMethods)
		if err != nil {
			return err
		}
		p, err := openProject(runOut.project)
		if err != nil {
			return err
		}
		c := withProject(currentConfig(), p)
		st, err := runPrep.prepare(path, c)
		if err != nil {
			return err
		}

		var b strings.Builder
		b.WriteString(report.Quality(st.Raw.Name, st.Quality, st.CleanInfo))
		b.WriteString("\n")
		if runExplore {
			exp, err := report.Explore(st.Clean, st.Features, c.CorrelationThreshold)
			if err != nil {
				return err
			}
			b.WriteString(report.Explored(exp))
			b.WriteString("\n")
		}
		if st.Selection != nil {
			b.WriteString(report.Selection(st.Selection))
			b.WriteString("\n")
		}

		k, err := chooseK(cmd, st, c, 0, runKMin, runKMax)
		if err != nil {
			return err
		}
		b.WriteString(report.Sweep(st.Sweep))
		b.WriteString("\n")
		if err := st.Compare(&cluster.Runner{KMeans: c.FinalOptions()}, k, methods); err != nil {
			return err
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
		return emit(cmd, &runOut, p, st, path, b.String(), prof)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runKMin, "k-min", 2, "smallest k to sweep (default from config)")
	runCmd.Flags().IntVar(&runKMax, "k-max", 11, "exclusive upper bound of the sweep (default from config)")
	runCmd.Flags().StringSliceVar(&runMethods, "methods", nil, "methods to compare (default: kmeans,ward,complete,average)")
	runCmd.Flags().BoolVar(&runExplore, "explore", false, "include exploratory statistics of the features")
	runPrep.register(runCmd, true)
	runOut.register(runCmd, true)
}
