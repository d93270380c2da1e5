package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/leasemap/internal/analysis"
)

// runCmd executes the root command with args and returns stdout.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// execCmd resets sticky flag and config state, then runs args.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// isolate points HOME at a temp dir so no user config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestCLI_SampleRender(t *testing.T) {
	home := isolate(t)
	input := filepath.Join(home, "leases.csv")
	outDir := filepath.Join(home, "maps")

	runCmd(t, "sample", "--rows", "120", "--seed", "7", "-o", input)
	out := runCmd(t, "render", input, "--output-dir", outDir, "-q")

	for _, name := range []string{"leases_map.html", "buildings_map.html"} {
		b, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		page := string(b)
		if !strings.Contains(page, "L.markerClusterGroup") {
			t.Fatalf("%s missing marker cluster", name)
		}
		if !strings.Contains(page, `id="map_`) {
			t.Fatalf("%s missing map element", name)
		}
		if !strings.Contains(out, "✓ Wrote "+filepath.Join(outDir, name)) {
			t.Fatalf("expected confirmation for %s, got:\n%s", name, out)
		}
	}
	if !strings.Contains(out, "120 leases") {
		t.Fatalf("expected lease count in output, got:\n%s", out)
	}
}

func TestCLI_InspectAndExport(t *testing.T) {
	home := isolate(t)
	input := filepath.Join(home, "leases.csv")
	export := filepath.Join(home, "augmented.csv")
	runCmd(t, "sample", "--rows", "40", "-o", input)

	out := runCmd(t, "inspect", input, "--export", export)
	for _, want := range []string{"[COLUMN RESOLUTION]", "crime_rate", "transit_score", "[DEFAULT FILTERS]", "Showing"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	b, err := os.ReadFile(export)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	header := strings.SplitN(string(b), "\n", 2)[0]
	for _, col := range []string{analysis.SafetyColumn, analysis.AccessibilityColumn, analysis.SquareFootageColumn} {
		if !strings.Contains(header, col) {
			t.Fatalf("export header missing %s: %s", col, header)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolate(t)
	cfgPath := filepath.Join(home, "leasemap.yaml")

	runCmd(t, "config", "set", "map_zoom", "14", "--config", cfgPath)
	out := runCmd(t, "config", "show", "--config", cfgPath)
	if !strings.Contains(out, "map_zoom: 14\n") {
		t.Fatalf("expected persisted zoom, got:\n%s", out)
	}
	if _, err := execCmd(t, "config", "set", "map_zoom", "99", "--config", cfgPath); err == nil {
		t.Fatalf("expected invalid zoom to fail")
	}
}

func TestCLI_RenderErrors(t *testing.T) {
	home := isolate(t)

	outDir := filepath.Join(home, "maps")
	if _, err := execCmd(t, "render", filepath.Join(home, "missing.csv"), "-q", "--output-dir", outDir); err == nil {
		t.Fatalf("expected missing input to fail")
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Fatalf("output dir should not be created when loading fails: %v", err)
	}

	noSF := filepath.Join(home, "nosf.csv")
	data := "company,latitude,longitude,crime_rate\nAcme,40.75,-73.98,10\n"
	if err := os.WriteFile(noSF, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := execCmd(t, "render", noSF, "-q", "--output-dir", home)
	if !errors.Is(err, analysis.ErrNoSquareFootage) {
		t.Fatalf("expected ErrNoSquareFootage, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(home, "leases_map.html")); !os.IsNotExist(statErr) {
		t.Fatalf("no page should be written on failure")
	}
}
