package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/surfloom-cli/internal/errs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const readinessCSV = `Base,Latitude,Longitude,Mission Complexity,Maintenance Burden,Readiness Score
Hill,41.12,-111.97,2,3,88
Nellis,36.24,-115.03,5,4,74
Eglin,30.48,-86.53,7,8,60
Travis,38.26,-121.93,3,6,79
Dover,39.13,-75.47,9,2,66
Langley,37.08,-76.36,6,7,63
Minot,,,4,5,
`

// resetFlags returns every flag to its default so values do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns its stdout.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	datasets.Purge()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir and writes the sample data file into it.
func isolate(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "USAF_3D_Data.csv")
	if err := os.WriteFile(data, []byte(readinessCSV), 0o644); err != nil {
		t.Fatalf("write data: %v", err)
	}
	return home, data
}

func TestCLI_FitAndQuartiles(t *testing.T) {
	_, data := isolate(t)

	out := runCmd(t, "fit", data)
	if !strings.Contains(out, "Readiness Score = ") || !strings.Contains(out, "R²") {
		t.Fatalf("unexpected fit output:\n%s", out)
	}
	if !strings.Contains(out, "⚠ skipped 1/7 rows") {
		t.Fatalf("expected skipped-row warning:\n%s", out)
	}

	out = runCmd(t, "fit", data, "--json")
	var res fitResult
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("fit --json: %v\n%s", err, out)
	}
	if res.N != 6 || res.Skipped != 1 || res.A >= 0 {
		t.Fatalf("unexpected fit result: %+v", res)
	}

	out = runCmd(t, "quartiles", data, "--assign")
	for _, want := range []string{"q1=", "Q1 #d73027", "- Hill: 88 → Q4", "- Eglin: 60 → Q1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("quartiles output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_FitMissingColumn(t *testing.T) {
	_, data := isolate(t)
	_, err := execCmd(t, "fit", data, "--z", "Readiness")
	if !errors.Is(err, errs.ErrMissingColumn) {
		t.Fatalf("expected missing column error, got %v", err)
	}
}

func TestCLI_RenderWritesChartAndSummary(t *testing.T) {
	home, data := isolate(t)

	svg := filepath.Join(home, "out", "surface.svg")
	out := runCmd(t, "render", data, "-o", svg, "--summary", "--colorscale", "Spectral")
	if !strings.Contains(out, "✓ Chart written") {
		t.Fatalf("unexpected render output:\n%s", out)
	}
	b, err := os.ReadFile(svg)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !strings.Contains(string(b), "<svg") {
		t.Fatalf("chart is not SVG")
	}
	md, err := os.ReadFile(filepath.Join(home, "out", "surface.md"))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	if !strings.Contains(string(md), "[FIT SUMMARY]") || !strings.Contains(string(md), "[QUARTILE BANDS]") {
		t.Fatalf("summary missing sections:\n%s", md)
	}

	mapBase := filepath.Join(home, "out", "map")
	out = runCmd(t, "render", data, "-k", "quartile", "--format", "png", "-o", mapBase)
	if !strings.Contains(out, "[QUARTILE BANDS]") {
		t.Fatalf("expected printed summary:\n%s", out)
	}
	if _, err := os.Stat(mapBase + ".png"); err != nil {
		t.Fatalf("missing map: %v", err)
	}

	if _, err := execCmd(t, "render", data, "--resolution", "1", "-o", svg); !errors.Is(err, errs.ErrInvalidResolution) {
		t.Fatalf("expected invalid resolution, got %v", err)
	}
	if _, err := execCmd(t, "render", data, "-o", svg, "--format", "png"); err == nil {
		t.Fatalf("expected extension/format mismatch error")
	}
}

func TestCLI_DashboardInitAddListBuild(t *testing.T) {
	home, data := isolate(t)

	runCmd(t, "init", "readiness", "--desc", "fleet readiness")
	if _, err := execCmd(t, "init", "readiness"); err == nil {
		t.Fatalf("expected error re-initializing dashboard")
	}
	runCmd(t, "add", "-d", "readiness", data)
	runCmd(t, "add", "-d", "readiness", "-k", "quartile", "--title", "Readiness map", data)
	if _, err := execCmd(t, "add", "-d", "readiness", "--x", "Nope", data); !errors.Is(err, errs.ErrMissingColumn) {
		t.Fatalf("expected missing column on add, got %v", err)
	}

	out := runCmd(t, "list")
	if !strings.Contains(out, "- readiness (2 views)") {
		t.Fatalf("unexpected list output:\n%s", out)
	}
	out = runCmd(t, "list", "-d", "readiness")
	if !strings.Contains(out, "Readiness map [quartile]") || !strings.Contains(out, "USAF_3D_Data surface [surface]") {
		t.Fatalf("unexpected view list:\n%s", out)
	}

	out = runCmd(t, "build", "-d", "readiness", "--format", "svg")
	if !strings.Contains(out, "[1/2] Rendering") || !strings.Contains(out, "[2/2] Rendering") {
		t.Fatalf("missing progress lines:\n%s", out)
	}
	charts := filepath.Join(home, ".surfloom", "dashboards", "readiness", "charts")
	index, err := os.ReadFile(filepath.Join(charts, "index.md"))
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	body := string(index)
	for _, want := range []string{"# readiness", "## Readiness map", "Data: loaded from disk", "Data: served from dataset cache"} {
		if !strings.Contains(body, want) {
			t.Fatalf("index missing %q:\n%s", want, body)
		}
	}
	matches, _ := filepath.Glob(filepath.Join(charts, "*.svg"))
	if len(matches) != 2 {
		t.Fatalf("expected 2 charts, got %v", matches)
	}

	out = runCmd(t, "list", "-d", "readiness")
	first := strings.SplitN(strings.TrimPrefix(strings.SplitN(out, "\n", 2)[0], "- "), ":", 2)[0]
	out = runCmd(t, "remove", "-d", "readiness", first)
	if !strings.Contains(out, "✓ View removed: USAF_3D_Data surface") {
		t.Fatalf("unexpected remove output:\n%s", out)
	}
	out = runCmd(t, "list")
	if !strings.Contains(out, "- readiness (1 views)") {
		t.Fatalf("unexpected list after remove:\n%s", out)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	isolate(t)
	runCmd(t, "config", "set", "grid_resolution", "12")
	runCmd(t, "config", "set", "colorscale", "heat")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "grid_resolution: 12") || !strings.Contains(out, "colorscale: heat") {
		t.Fatalf("unexpected config:\n%s", out)
	}
	if _, err := execCmd(t, "config", "set", "colorscale", "Viridis"); err == nil {
		t.Fatalf("expected unknown colorscale error")
	}
	if _, err := execCmd(t, "config", "set", "api_key", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestChartPath(t *testing.T) {
	cfg = nil
	p, err := chartPath("/data/USAF_3D_Data.csv", "quartile", "", "svg")
	if err != nil || p != filepath.Join(".", "USAF_3D_Data-quartile.svg") {
		t.Fatalf("default path = %q, %v", p, err)
	}
	p, err = chartPath("x.csv", "surface", "charts/out", "")
	if err != nil || p != "charts/out.png" {
		t.Fatalf("extensionless path = %q, %v", p, err)
	}
	p, err = chartPath("x.csv", "surface", "charts/out.pdf", "")
	if err != nil || p != "charts/out.pdf" {
		t.Fatalf("pdf path = %q, %v", p, err)
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]struct{}{}
	got := []string{uniqueName(used, "a"), uniqueName(used, "a"), uniqueName(used, "b"), uniqueName(used, "a")}
	want := []string{"a", "a__2", "b", "a__3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("uniqueName = %v, want %v", got, want)
		}
	}
}
