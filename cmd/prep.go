package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	cfgpkg "github.com/KaramelBytes/clusterflow-cli/internal/config"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/KaramelBytes/clusterflow-cli/internal/pipeline"
	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// prepFlags are the loading and preprocessing flags shared by the dataset commands.
type prepFlags struct {
	delimiter      string
	decimal        string
	thousands      string
	maxRows        int
	sheetName      string
	sheetIndex     int
	fill           string
	outlierThr     float64
	noOutliers     bool
	keepDuplicates bool

	// feature and scaling flags, registered only by commands that cluster
	columns    []string
	autoSelect bool
	scaler     string
}

func (p *prepFlags) register(cmd *cobra.Command, clustering bool) {
	f := cmd.Flags()
	f.StringVar(&p.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default from file extension)")
	f.StringVar(&p.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	f.StringVar(&p.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	f.IntVar(&p.maxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	f.StringVar(&p.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	f.IntVar(&p.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	f.StringVar(&p.fill, "fill", "", "missing values: mean|median|zero|ffill|bfill|drop|none (default from config)")
	f.Float64Var(&p.outlierThr, "outlier-threshold", 0, "|z| at or above which rows are removed (default from config)")
	f.BoolVar(&p.noOutliers, "no-outliers", false, "keep z-score outliers")
	f.BoolVar(&p.keepDuplicates, "keep-duplicates", false, "keep duplicate rows")
	if clustering {
		f.StringSliceVar(&p.columns, "columns", nil, "numeric columns to cluster on (default: all numeric columns)")
		f.BoolVar(&p.autoSelect, "auto-select", false, "select features by variance and correlation")
		f.StringVar(&p.scaler, "scaler", "", "scaler: standard|minmax|robust|none (default from config)")
	}
}

func (p *prepFlags) loadOptions() (dataset.LoadOptions, error) {
	opt := dataset.LoadOptions{MaxRows: p.maxRows, Sheet: p.sheetName, SheetIndex: p.sheetIndex}
	switch p.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", p.delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(p.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", p.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(p.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", p.thousands)
	}
	return opt, nil
}

func (p *prepFlags) cleanOptions(c *cfgpkg.Global) (dataset.CleanOptions, error) {
	opt := c.CleanOptions()
	fill := string(opt.Fill)
	if p.fill != "" {
		fill = p.fill
	}
	m, err := dataset.ParseFillMethod(fill)
	if err != nil {
		return opt, err
	}
	opt.Fill = m
	if p.outlierThr > 0 {
		opt.OutlierThreshold = p.outlierThr
	}
	if p.noOutliers {
		opt.RemoveOutliers = false
	}
	if p.keepDuplicates {
		opt.RemoveDuplicates = false
	}
	return opt, nil
}

// loadAndClean reads path and runs the cleaning stage.
func (p *prepFlags) loadAndClean(path string, c *cfgpkg.Global) (*pipeline.State, error) {
	lopt, err := p.loadOptions()
	if err != nil {
		return nil, err
	}
	copt, err := p.cleanOptions(c)
	if err != nil {
		return nil, err
	}
	st := pipeline.New()
	if err := st.LoadFile(path, lopt); err != nil {
		return nil, err
	}
	if err := st.CleanData(copt); err != nil {
		return nil, err
	}
	log.Debug().Str("file", path).Int("rows_in", st.CleanInfo.RowsIn).Int("rows_out", st.CleanInfo.RowsOut).Msg("dataset cleaned")
	return st, nil
}

// prepare loads, cleans, picks features, and scales path into a State ready to cluster.
func (p *prepFlags) prepare(path string, c *cfgpkg.Global) (*pipeline.State, error) {
	if p.autoSelect && len(p.columns) > 0 {
		return nil, errors.New("use either --columns or --auto-select, not both")
	}
	kind, err := parseScaler(firstNonEmpty(p.scaler, c.Scaler))
	if err != nil {
		return nil, err
	}
	st, err := p.loadAndClean(path, c)
	if err != nil {
		return nil, err
	}
	switch {
	case p.autoSelect:
		err = st.SelectFeatures(c.SelectOptions())
	case len(p.columns) > 0:
		err = st.UseFeatures(p.columns)
	default:
		err = useVaryingColumns(st, c.VarianceThreshold)
	}
	if err != nil {
		return nil, err
	}
	if err := st.ScaleData(kind); err != nil {
		return nil, err
	}
	log.Debug().Strs("features", st.Features).Str("scaler", string(kind)).Msg("features scaled")
	return st, nil
}

// useVaryingColumns clusters on every numeric column whose CV exceeds minCV percent.
func useVaryingColumns(st *pipeline.State, minCV float64) error {
	cols := st.Clean.NumericColumns()
	kept, err := dataset.FilterByVariance(st.Clean, cols, minCV)
	if err != nil {
		return err
	}
	if len(kept) == 0 {
		return fmt.Errorf("%w: every numeric column is below %.1f%% variation", dataset.ErrNoNumericColumns, minCV)
	}
	if len(kept) < len(cols) {
		log.Info().Int("dropped", len(cols)-len(kept)).Msg("near-constant columns left out")
	}
	return st.UseFeatures(kept)
}

// withProject overlays the project's settings on the global configuration.
func withProject(c *cfgpkg.Global, p *project.Project) *cfgpkg.Global {
	out := *c
	if p == nil || p.Settings == nil {
		return &out
	}
	if p.Settings.KMin > 0 {
		out.KMin = p.Settings.KMin
	}
	if p.Settings.KMax > 0 {
		out.KMax = p.Settings.KMax
	}
	if p.Settings.Scaler != "" {
		out.Scaler = p.Settings.Scaler
	}
	return &out
}

func parseScaler(name string) (dataset.ScalerKind, error) {
	return dataset.ParseScalerKind(name)
}

// parseMethodStrict rejects unknown method names; the cluster command falls back instead.
func parseMethodStrict(name string) (cluster.Method, error) {
	m, ok := cluster.ParseMethod(name)
	if !ok {
		return m, fmt.Errorf("unknown method %q (use kmeans|ward|complete|average)", name)
	}
	return m, nil
}

func parseMethods(names []string) ([]cluster.Method, error) {
	out := make([]cluster.Method, 0, len(names))
	for _, n := range names {
		m, err := parseMethodStrict(n)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
