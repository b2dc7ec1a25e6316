package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/dataset"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. CLUSTERFLOW_K_MAX.
const EnvPrefix = "CLUSTERFLOW"

const dirName = ".clusterflow"

// Global configuration structure.
type Global struct {
	// Sweep range: candidates are KMin..KMax-1.
	KMin int `mapstructure:"k_min" yaml:"k_min"`
	KMax int `mapstructure:"k_max" yaml:"k_max"`

	// k-means settings
	Seed          int64 `mapstructure:"seed" yaml:"seed"`
	SweepRestarts int   `mapstructure:"sweep_restarts" yaml:"sweep_restarts"`
	SweepMaxIter  int   `mapstructure:"sweep_max_iter" yaml:"sweep_max_iter"`
	FinalRestarts int   `mapstructure:"final_restarts" yaml:"final_restarts"`
	FinalMaxIter  int   `mapstructure:"final_max_iter" yaml:"final_max_iter"`

	// Preprocessing
	FillMethod           string  `mapstructure:"fill_method" yaml:"fill_method"`
	OutlierThreshold     float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`
	RemoveOutliers       bool    `mapstructure:"remove_outliers" yaml:"remove_outliers"`
	RemoveDuplicates     bool    `mapstructure:"remove_duplicates" yaml:"remove_duplicates"`
	Scaler               string  `mapstructure:"scaler" yaml:"scaler"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" yaml:"correlation_threshold"`
	VarianceThreshold    float64 `mapstructure:"variance_threshold" yaml:"variance_threshold"`
	MaxFeatures          int     `mapstructure:"max_features" yaml:"max_features"`

	ProjectsDir string `mapstructure:"projects_dir" yaml:"projects_dir"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`
	ListenAddr  string `mapstructure:"listen_addr" yaml:"listen_addr"`
}

// SweepOptions returns the k-means options for sweeps.
func (c *Global) SweepOptions() cluster.KMeansOptions {
	o := cluster.SweepKMeans()
	o.Seed = c.Seed
	if c.SweepRestarts > 0 {
		o.Restarts = c.SweepRestarts
	}
	if c.SweepMaxIter > 0 {
		o.MaxIter = c.SweepMaxIter
	}
	return o
}

// FinalOptions returns the k-means options for final runs.
func (c *Global) FinalOptions() cluster.KMeansOptions {
	o := cluster.FinalKMeans()
	o.Seed = c.Seed
	if c.FinalRestarts > 0 {
		o.Restarts = c.FinalRestarts
	}
	if c.FinalMaxIter > 0 {
		o.MaxIter = c.FinalMaxIter
	}
	return o
}

// CleanOptions returns the cleaning settings.
func (c *Global) CleanOptions() dataset.CleanOptions {
	return dataset.CleanOptions{
		RemoveDuplicates: c.RemoveDuplicates,
		Fill:             dataset.FillMethod(c.FillMethod),
		RemoveOutliers:   c.RemoveOutliers,
		OutlierThreshold: c.OutlierThreshold,
	}
}

// SelectOptions returns the automatic feature selection settings.
func (c *Global) SelectOptions() dataset.SelectOptions {
	o := dataset.DefaultSelectOptions()
	o.MaxFeatures = c.MaxFeatures
	o.CorrelationThreshold = c.CorrelationThreshold
	return o
}

// Dir returns ~/.clusterflow.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.clusterflow/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("k_min", 2)
	v.SetDefault("k_max", 11)
	v.SetDefault("seed", cluster.DefaultSeed)
	v.SetDefault("sweep_restarts", 10)
	v.SetDefault("sweep_max_iter", 300)
	v.SetDefault("final_restarts", 20)
	v.SetDefault("final_max_iter", 500)
	v.SetDefault("fill_method", string(dataset.FillMedian))
	v.SetDefault("outlier_threshold", 3.0)
	v.SetDefault("remove_outliers", true)
	v.SetDefault("remove_duplicates", true)
	v.SetDefault("scaler", string(dataset.Standard))
	v.SetDefault("correlation_threshold", 0.90)
	v.SetDefault("variance_threshold", 1.0)
	v.SetDefault("max_features", 10)
	v.SetDefault("projects_dir", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("listen_addr", "127.0.0.1:8080")
}

// Defaults returns the built-in configuration without reading files or the environment.
func Defaults() *Global {
	v := viper.New()
	SetDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		_ = os.MkdirAll(dir, 0o755)
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.ProjectsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		c.ProjectsDir = filepath.Join(dir, "projects")
	}
	return &c, nil
}

// Validate checks values that later stages would reject.
func (c *Global) Validate() error {
	if c.KMin < 2 || c.KMax <= c.KMin {
		return fmt.Errorf("%w: k_min=%d k_max=%d", cluster.ErrInvalidRange, c.KMin, c.KMax)
	}
	if _, err := dataset.ParseFillMethod(c.FillMethod); err != nil {
		return err
	}
	if _, err := dataset.ParseScalerKind(c.Scaler); err != nil {
		return err
	}
	return nil
}
