package pipeline

import (
	"bytes"
	"context"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/matzehuels/sekernel/pkg/cache"
	"github.com/matzehuels/sekernel/pkg/enhancement"
	"github.com/matzehuels/sekernel/pkg/kernel"
	"github.com/matzehuels/sekernel/pkg/render"
	"github.com/matzehuels/sekernel/pkg/sphere"
)

var testParams = kernel.Params{D33: 1.0, D44: 0.04, T: 1.0}

func testOptions() Options {
	return Options{
		Params:   testParams,
		Vertices: []r3.Vec{{Z: 1}, {X: 1}},
		TestMode: true,
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"PNG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsValidateForKernel(t *testing.T) {
	opts := Options{Params: kernel.Params{D33: 1, D44: -1, T: 1}}
	if err := opts.ValidateForKernel(); err == nil {
		t.Error("Negative D44 should fail")
	}

	opts = Options{Params: testParams, Orientations: -5}
	if err := opts.ValidateForKernel(); err == nil {
		t.Error("Negative orientation count should fail")
	}

	opts = Options{Params: testParams, Workers: -1}
	if err := opts.ValidateForKernel(); err == nil {
		t.Error("Negative workers should fail")
	}

	opts = Options{Params: testParams}
	if err := opts.ValidateForKernel(); err != nil {
		t.Errorf("Valid options should pass: %v", err)
	}
	if opts.Logger == nil {
		t.Error("Logger default should be set")
	}
}

func TestOptionsSource(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want sphere.Kind
	}{
		{"default", Options{}, sphere.KindDefault},
		{"count", Options{Orientations: 12}, sphere.KindCount},
		{"set", Options{Vertices: []r3.Vec{{Z: 1}}}, sphere.KindSet},
		{"set wins over count", Options{Orientations: 12, Vertices: []r3.Vec{{Z: 1}}}, sphere.KindSet},
	}
	for _, tt := range tests {
		if got := tt.opts.Source().Kind(); got != tt.want {
			t.Errorf("%s: Source().Kind() = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()

	if opts.Axis != DefaultAxis {
		t.Errorf("Axis should be %s, got %s", DefaultAxis, opts.Axis)
	}
	if opts.ShouldRender() {
		t.Error("No formats means no rendering")
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := testOptions()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	originalAxis := opts.Axis

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.Axis != originalAxis {
		t.Error("Axis changed on second call")
	}
}

func TestOptionsValidateForRenderBadAxis(t *testing.T) {
	opts := Options{Axis: "w"}
	if err := opts.ValidateForRender(); err == nil {
		t.Error("Invalid axis should fail")
	}
}

func TestExecuteKernelOnly(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	defer runner.Close()

	result, err := runner.Execute(context.Background(), testOptions())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.RunID == "" {
		t.Error("RunID should be set")
	}
	if result.Stats.Orientations != 2 {
		t.Errorf("Orientations = %d, want 2", result.Stats.Orientations)
	}
	if result.Stats.Extent != 7 {
		t.Errorf("Extent = %d, want 7", result.Stats.Extent)
	}
	if result.Stats.Cells != 2*1*343 {
		t.Errorf("Cells = %d, want %d", result.Stats.Cells, 2*343)
	}
	if result.Enhanced != nil || len(result.Artifacts) != 0 {
		t.Error("Optional stages should not run")
	}
}

func TestExecuteCachesKernel(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	ctx := context.Background()

	first, err := runner.Execute(ctx, testOptions())
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.KernelHit {
		t.Error("First run should miss the cache")
	}

	second, err := runner.Execute(ctx, testOptions())
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.KernelHit {
		t.Error("Second run should hit the cache")
	}
	if first.CacheInfo.Key != second.CacheInfo.Key {
		t.Error("Cache keys should match")
	}
	if first.RunID == second.RunID {
		t.Error("Run IDs should be unique")
	}

	opts := testOptions()
	opts.Refresh = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.KernelHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecuteEnhanceAndRender(t *testing.T) {
	runner := NewRunner(nil, nil, nil)

	f, err := enhancement.NewField(3, 3, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	f.Set(1, 1, 1, 0, 1)

	opts := testOptions()
	opts.Field = &f
	opts.Normalize = true
	opts.Formats = []string{render.FormatPNG, render.FormatSVG}

	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Enhanced == nil {
		t.Fatal("Enhanced field should be set")
	}
	if got := result.Enhanced.Max(); got < 0.999999 || got > 1.000001 {
		t.Errorf("Normalized max = %g, want 1", got)
	}
	if !bytes.HasPrefix(result.Artifacts[render.FormatPNG], []byte("\x89PNG")) {
		t.Error("PNG artifact should be a PNG")
	}
	if len(result.Artifacts[render.FormatSVG]) == 0 {
		t.Error("SVG artifact should not be empty")
	}
}

func TestExecuteInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	opts := testOptions()
	opts.Formats = []string{"gif"}
	if _, err := runner.Execute(context.Background(), opts); err == nil {
		t.Error("Invalid format should fail")
	}
}
