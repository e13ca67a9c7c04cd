package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/lut"
)

// isolate points the XDG directories at fresh temp dirs.
func isolate(t *testing.T) (cacheHome string) {
	t.Helper()
	cacheHome = t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return cacheHome
}

// execute runs the root command with args and returns what it wrote to its
// output stream.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func TestBuildCommandWritesTable(t *testing.T) {
	cacheHome := isolate(t)
	out := filepath.Join(t.TempDir(), "table.npy")

	if _, err := execute(t, "build", "--test-mode", "-n", "4", "--d44", "0.04", "-o", out); err != nil {
		t.Fatalf("build: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	table, err := lut.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := lut.Shape{NumV: 4, NumR: 1, N: 7}
	if table.Shape() != want {
		t.Errorf("shape = %v, want %v", table.Shape(), want)
	}

	if n := countFiles(t, filepath.Join(cacheHome, appName)); n != 1 {
		t.Errorf("cache holds %d entries, want 1", n)
	}
}

func TestBuildCommandNoCache(t *testing.T) {
	cacheHome := isolate(t)

	if _, err := execute(t, "build", "--test-mode", "-n", "2", "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if n := countFiles(t, cacheHome); n != 0 {
		t.Errorf("--no-cache wrote %d cache entries", n)
	}
}

func TestBuildCommandRejectsBadInput(t *testing.T) {
	isolate(t)

	tests := [][]string{
		{"build", "--d44", "-1"},
		{"build", "-n", "-3"},
		{"build", "-o", "table.csv"},
		{"build", "extra"},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestEvaluateCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "evaluate", "--x", "1,0,0.5", "--r", "2,0,0", "--v", "0,0,1", "--d44", "0.1")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}

	params := kernel.DefaultParams()
	params.D44 = 0.1
	value := kernel.NewEvaluator(params).K2(r3.Vec{X: 1, Z: 0.5}, r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Z: 1})
	want := fmt.Sprintf("%.17g\n", value)
	if out != want {
		t.Errorf("evaluate printed %q, want %q", out, want)
	}
}

func TestEvaluateCommandRejectsBadVectors(t *testing.T) {
	isolate(t)

	if _, err := execute(t, "evaluate", "--r", "0,0,0"); err == nil {
		t.Error("zero orientation should fail")
	}
	if _, err := execute(t, "evaluate", "--x", "1,2"); err == nil {
		t.Error("two-component position should fail")
	}
}

func TestEnhanceCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "odf.npy")
	out := filepath.Join(dir, "enhanced.npy")

	f, err := enhancement.NewField(3, 3, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	f.Set(1, 1, 1, 0, 2)
	if err := enhancement.WriteField(in, f); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "enhance", in, "-o", out, "-n", "2", "--normalize"); err != nil {
		t.Fatalf("enhance: %v", err)
	}

	got, err := enhancement.ReadField(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got.Nx != 3 || got.Ny != 3 || got.Nz != 3 || got.NOrient != 2 {
		t.Errorf("output shape = %dx%dx%dx%d, want 3x3x3x2", got.Nx, got.Ny, got.Nz, got.NOrient)
	}
	if m := got.Max(); m < 1.999999 || m > 2.000001 {
		t.Errorf("normalized max = %g, want 2", m)
	}
}

func TestEnhanceCommandOrientationMismatch(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	in := filepath.Join(dir, "odf.npy")

	f, _ := enhancement.NewField(2, 2, 2, 3)
	if err := enhancement.WriteField(in, f); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "enhance", in, "-o", filepath.Join(dir, "out.npy"), "-n", "2"); err == nil {
		t.Error("field with 3 orientations against a 2-orientation table should fail")
	}
}

func TestPlotCommand(t *testing.T) {
	isolate(t)
	base := filepath.Join(t.TempDir(), "slice")

	if _, err := execute(t, "plot", "--test-mode", "-n", "2", "-o", base+".png", "--format", "png,svg", "--axis", "X"); err != nil {
		t.Fatalf("plot: %v", err)
	}

	png, err := os.ReadFile(base + ".png")
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Error("png output is not a PNG")
	}
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("svg output is not an SVG")
	}
}

func TestPlotCommandBadSlice(t *testing.T) {
	isolate(t)
	out := filepath.Join(t.TempDir(), "slice.png")

	if _, err := execute(t, "plot", "--test-mode", "-n", "2", "-o", out, "--v", "5"); err == nil {
		t.Error("out-of-range v should fail")
	}
	if _, err := execute(t, "plot", "--test-mode", "-n", "2", "-o", out, "--axis", "w"); err == nil {
		t.Error("unknown axis should fail")
	}
}

func TestCachePathCommand(t *testing.T) {
	cacheHome := isolate(t)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(cacheHome, appName) + "\n"; out != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	cacheHome := isolate(t)

	if _, err := execute(t, "build", "--test-mode", "-n", "2"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if n := countFiles(t, cacheHome); n == 0 {
		t.Fatal("build should populate the cache")
	}
	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if n := countFiles(t, cacheHome); n != 0 {
		t.Errorf("cache holds %d entries after clear", n)
	}
}

func TestConfigFileDrivesCache(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	cacheRoot := filepath.Join(dir, "tables")
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("[kernel]\norientations = 2\ntest_mode = true\n\n[cache]\ndir = %q\n", cacheRoot)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", cfgPath, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}
	if n := countFiles(t, cacheRoot); n != 1 {
		t.Errorf("configured cache dir holds %d entries, want 1", n)
	}

	out, err := execute(t, "--config", cfgPath, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if out != cacheRoot+"\n" {
		t.Errorf("cache path = %q, want %q", out, cacheRoot)
	}
}

func TestMissingExplicitConfigFails(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "cache", "path"); err == nil {
		t.Error("missing --config file should fail")
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "png" {
		t.Errorf("parseFormats(\"\") = %v, want [png]", got)
	}
	if got := parseFormats("svg,pdf"); len(got) != 2 || got[1] != "pdf" {
		t.Errorf("parseFormats(\"svg,pdf\") = %v", got)
	}
}
