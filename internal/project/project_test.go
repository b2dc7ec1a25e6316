package project_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/clusterflow-cli/internal/cluster"
	"github.com/KaramelBytes/clusterflow-cli/internal/project"
)

func sampleResult(t *testing.T) *cluster.Result {
	t.Helper()
	m, err := cluster.NewMatrix([]string{"x"}, [][]float64{{0}, {0.1}, {0.2}, {5}, {5.1}, {5.2}})
	if err != nil {
		t.Fatal(err)
	}
	res, err := cluster.Run(m, 2, cluster.KMeans)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestAddRunPersistsReportAndLabels(t *testing.T) {
	tdir := t.TempDir()
	root := filepath.Join(tdir, "proj")
	proj := project.NewProject("test", "demo", root)

	run := project.NewRun("data.csv", []string{"x"}, sampleResult(t))
	err := proj.AddRun(run, "[CLUSTERING RESULT]\n", func(w io.Writer) error {
		_, err := io.WriteString(w, "x,cluster\n0,0\n")
		return err
	})
	if err != nil {
		t.Fatalf("add run: %v", err)
	}
	if err := proj.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := project.LoadProject(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(loaded.Runs))
	}
	got := loaded.Runs[run.ID]
	if got == nil || got.Method != "kmeans" || got.K != 2 || got.Rows != 6 {
		t.Fatalf("unexpected run: %+v", got)
	}
	report, err := os.ReadFile(filepath.Join(root, got.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(report), "[CLUSTERING RESULT]") {
		t.Fatalf("report content missing")
	}
	if _, err := os.Stat(filepath.Join(root, got.LabelsFile)); err != nil {
		t.Fatalf("labels file missing: %v", err)
	}
	if loaded.BestRun().ID != run.ID {
		t.Fatalf("best run mismatch")
	}
}

func TestLoadProjectMissing(t *testing.T) {
	if _, err := project.LoadProject(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing project.json")
	}
}
