package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/clusterflow-cli/internal/project"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of c and its subcommands to its default so that
// values and Changed state do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns what it printed.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCLI is execCmd that fails the test on error.
func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolateHome points HOME at a temp dir so config and projects stay per-test.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

// writeBlobs writes 60 rows in two tight, well separated groups plus a text column.
func writeBlobs(t *testing.T, dir, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("x,y,segment\n")
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&b, "%.1f,%.1f,a\n", float64(i%5)*0.1, float64(i/5)*0.1)
		fmt.Fprintf(&b, "%.1f,%.1f,b\n", 10+float64(i%5)*0.1, 10+float64(i/5)*0.1)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func loadProject(t *testing.T, name string) *project.Project {
	t.Helper()
	p, err := loadProjectByName(name)
	if err != nil {
		t.Fatalf("load project: %v", err)
	}
	return p
}

func TestCLI_Init_Run_ListRuns(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")
	labels := filepath.Join(home, "labels.csv")

	runCLI(t, "init", "itest", "-d", "integration test")
	out := runCLI(t, "run", data, "-p", "itest", "--labels", labels)
	if !strings.Contains(out, "✓ Saved run") {
		t.Fatalf("expected saved run message, got: %s", out)
	}

	p := loadProject(t, "itest")
	if len(p.Runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(p.Runs))
	}
	r := p.BestRun()
	if r.K != 2 {
		t.Fatalf("k = %d, want 2", r.K)
	}
	if r.Rows != 60 {
		t.Fatalf("rows = %d, want 60", r.Rows)
	}
	if r.Silhouette < 0.9 {
		t.Fatalf("silhouette = %f, want well separated", r.Silhouette)
	}
	if !filepath.IsAbs(r.Dataset) {
		t.Fatalf("dataset path should be absolute: %s", r.Dataset)
	}

	body, err := os.ReadFile(filepath.Join(p.RootDir(), r.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, section := range []string{"[DATASET SUMMARY]", "[K SWEEP]", "[METHOD COMPARISON]", "[CLUSTERING RESULT]", "[CLUSTER PROFILES]"} {
		if !strings.Contains(string(body), section) {
			t.Fatalf("report missing %s:\n%s", section, body)
		}
	}
	if _, err := os.Stat(filepath.Join(p.RootDir(), r.LabelsFile)); err != nil {
		t.Fatalf("missing project labels: %v", err)
	}

	lb, err := os.ReadFile(labels)
	if err != nil {
		t.Fatalf("read labels: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(lb)), "\n")
	if len(lines) != 61 || lines[0] != "x,y,segment,cluster" {
		t.Fatalf("labels csv: %d lines, header %q", len(lines), lines[0])
	}

	out = runCLI(t, "list", "--runs", "-p", "itest")
	if !strings.Contains(out, r.ID) || !strings.Contains(out, "✓") {
		t.Fatalf("list --runs output: %s", out)
	}
	out = runCLI(t, "list", "--projects")
	if !strings.Contains(out, "- itest") {
		t.Fatalf("list --projects output: %s", out)
	}
}

func TestCLI_InitRefusesExisting(t *testing.T) {
	isolateHome(t)
	runCLI(t, "init", "dup")
	if _, err := execCmd(t, "init", "dup"); err == nil {
		t.Fatalf("expected error re-initializing a project")
	}
}

func TestCLI_ClusterUnknownMethodFallsBack(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")

	out := runCLI(t, "cluster", data, "-k", "2", "-m", "bogus", "--json")
	if !strings.Contains(out, "⚠ Warning: unknown method") {
		t.Fatalf("expected fallback warning, got: %s", out)
	}
	start := strings.Index(out, "{")
	if start < 0 {
		t.Fatalf("no json in output: %s", out)
	}
	var sum runSummary
	if err := json.Unmarshal([]byte(out[start:]), &sum); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if sum.Result == nil || sum.Result.Method.String() != "kmeans" {
		t.Fatalf("result = %+v, want kmeans", sum.Result)
	}
	if sum.Result.NClusters != 2 || sum.Sweep != nil {
		t.Fatalf("explicit k should skip the sweep: %+v", sum)
	}
	if sum.Profile == nil || len(sum.Profile.Clusters) != 2 {
		t.Fatalf("profile = %+v", sum.Profile)
	}
}

func TestCLI_CompareRejectsUnknownMethod(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")
	if _, err := execCmd(t, "compare", data, "-k", "2", "--methods", "kmeans,bogus"); err == nil {
		t.Fatalf("expected error for unknown method in compare")
	}
	out := runCLI(t, "compare", data, "-k", "2", "--methods", "kmeans,ward")
	if !strings.Contains(out, "| kmeans |") || !strings.Contains(out, "| hierarchical |") {
		t.Fatalf("comparison table missing methods: %s", out)
	}
	if strings.Contains(out, "hierarchical_average") {
		t.Fatalf("only the requested methods should run: %s", out)
	}
}

func TestCLI_SweepJSON(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")
	out := runCLI(t, "sweep", data, "--k-max", "5", "--json")

	var sum runSummary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if sum.Sweep == nil || len(sum.Sweep.Rows) != 3 {
		t.Fatalf("sweep = %+v, want k=2..4", sum.Sweep)
	}
	if sum.Sweep.OptimalK != 2 {
		t.Fatalf("optimal k = %d, want 2", sum.Sweep.OptimalK)
	}
	if sum.Scaler != "standard" || len(sum.Features) != 2 {
		t.Fatalf("features %v scaler %q", sum.Features, sum.Scaler)
	}

	if _, err := execCmd(t, "sweep", data, "--k-min", "4", "--k-max", "3"); err == nil {
		t.Fatalf("expected error for empty k range")
	}
}

func TestCLI_AnalyzeWritesReport(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")
	outPath := filepath.Join(home, "analysis.md")

	out := runCLI(t, "analyze", data, "-o", outPath)
	if !strings.Contains(out, "✓ Wrote analysis") {
		t.Fatalf("unexpected output: %s", out)
	}
	body, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read analysis: %v", err)
	}
	for _, section := range []string{"[DATASET SUMMARY]", "[DESCRIPTIVE STATISTICS]", "[CORRELATIONS]"} {
		if !strings.Contains(string(body), section) {
			t.Fatalf("analysis missing %s", section)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolateHome(t)
	runCLI(t, "config", "set", "k_max", "8")
	out := runCLI(t, "config", "show")
	if !strings.Contains(out, "k_max: 8") {
		t.Fatalf("config show: %s", out)
	}
	if _, err := execCmd(t, "config", "set", "k_min", "9"); err == nil {
		t.Fatalf("expected k_min above k_max to be rejected")
	}
	if _, err := execCmd(t, "config", "set", "scaler", "log"); err == nil {
		t.Fatalf("expected unknown scaler to be rejected")
	}
	if _, err := execCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestCLI_ProjectSettingsOverride(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")

	runCLI(t, "init", "tuned", "--k-max", "4")
	runCLI(t, "project", "set", "-p", "tuned", "method", "ward")
	out := runCLI(t, "project", "show", "-p", "tuned")
	if !strings.Contains(out, "method: hierarchical") || !strings.Contains(out, "k_max: 4") {
		t.Fatalf("project show: %s", out)
	}

	runCLI(t, "cluster", data, "-p", "tuned")
	p := loadProject(t, "tuned")
	r := p.BestRun()
	if r == nil || r.Method != "hierarchical" {
		t.Fatalf("run = %+v, want hierarchical", r)
	}
	body, err := os.ReadFile(filepath.Join(p.RootDir(), r.ReportFile))
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if strings.Contains(string(body), "| 4 |") {
		t.Fatalf("sweep should stop below the project's k_max:\n%s", body)
	}

	runCLI(t, "project", "set", "-p", "tuned", "method", "--clear")
	if p := loadProject(t, "tuned"); p.Settings.Method != "" {
		t.Fatalf("method not cleared: %q", p.Settings.Method)
	}
	if _, err := execCmd(t, "project", "set", "-p", "tuned", "scaler", "log"); err == nil {
		t.Fatalf("expected unknown scaler to be rejected")
	}
}

func TestCLI_AutoSelectAndColumnsConflict(t *testing.T) {
	home := isolateHome(t)
	data := writeBlobs(t, home, "blobs.csv")
	if _, err := execCmd(t, "cluster", data, "-k", "2", "--auto-select", "--columns", "x"); err == nil {
		t.Fatalf("expected --columns and --auto-select to conflict")
	}
	if _, err := execCmd(t, "cluster", data, "-k", "2", "--columns", "nope"); err == nil {
		t.Fatalf("expected unknown column to fail")
	}
	out := runCLI(t, "cluster", data, "-k", "2", "--columns", "x", "--scaler", "minmax", "--json")
	var sum runSummary
	if err := json.Unmarshal([]byte(out), &sum); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(sum.Features) != 1 || sum.Features[0] != "x" || sum.Scaler != "minmax" {
		t.Fatalf("features %v scaler %q", sum.Features, sum.Scaler)
	}
}
