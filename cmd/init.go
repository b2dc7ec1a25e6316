package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	cfgpkg "github.com/KaramelBytes/clusterflow-cli/internal/config"
	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/KaramelBytes/clusterflow-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDescription string
	initKMin        int
	initKMax        int
	initScaler      string
	initMethod      string
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a new ClusterFlow project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		root, err := defaultProjectsDir()
		if err != nil {
			return err
		}
		projDir := filepath.Join(root, name)
		// Refuse to overwrite an existing project.
		if info, err := os.Stat(projDir); err == nil && info.IsDir() {
			projectFile := filepath.Join(projDir, utils.ProjectFileName)
			if _, err := os.Stat(projectFile); err == nil {
				return fmt.Errorf("project already exists at %s", projDir)
			}
			entries, err := os.ReadDir(projDir)
			if err != nil {
				return fmt.Errorf("inspect project directory: %w", err)
			}
			if len(entries) > 0 {
				return fmt.Errorf("directory %s already exists and is not empty; refusing to initialize project", projDir)
			}
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat project directory: %w", err)
		}

		p := project.NewProject(name, initDescription, projDir)
		p.Settings.KMin, p.Settings.KMax = initKMin, initKMax
		if initScaler != "" {
			if _, err := parseScaler(initScaler); err != nil {
				return err
			}
			p.Settings.Scaler = initScaler
		}
		if initMethod != "" {
			m, err := parseMethodStrict(initMethod)
			if err != nil {
				return err
			}
			p.Settings.Method = m.String()
		}
		if err := utils.EnsureDir(projDir); err != nil {
			return err
		}
		if err := p.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Project initialized: %s\n", projDir)
		return nil
	},
}

func defaultProjectsDir() (string, error) {
	if c := currentConfig(); c.ProjectsDir != "" {
		dir := c.ProjectsDir
		if strings.HasPrefix(dir, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home dir: %w", err)
			}
			dir = strings.TrimPrefix(dir, "~")
			dir = strings.TrimPrefix(dir, string(os.PathSeparator))
			dir = strings.TrimPrefix(dir, "/")
			dir = filepath.Join(home, dir)
		}
		dir = filepath.Clean(dir)
		if err := utils.EnsureDir(dir); err != nil {
			return "", err
		}
		return dir, nil
	}
	base, err := cfgpkg.Dir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, "projects")
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveProjectDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("project name is required")
	}
	root, err := defaultProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

func loadProjectByName(name string) (*project.Project, error) {
	dir, err := resolveProjectDirByName(name)
	if err != nil {
		return nil, err
	}
	return project.LoadProject(dir)
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "project description")
	initCmd.Flags().IntVar(&initKMin, "k-min", 0, "project default for the smallest k to sweep (0 = global config)")
	initCmd.Flags().IntVar(&initKMax, "k-max", 0, "project default for the exclusive upper k bound (0 = global config)")
	initCmd.Flags().StringVar(&initScaler, "scaler", "", "project default scaler: standard|minmax|robust|none")
	initCmd.Flags().StringVar(&initMethod, "method", "", "project default method: kmeans|ward|complete|average")
}
