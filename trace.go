package shotvec

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Tracer converts a PNG raster into SVG markup. Tracing itself is
// delegated to an external vectorizer; the pipeline only moves bytes.
type Tracer interface {
	Trace(ctx context.Context, png []byte) ([]byte, error)
}

// TracerFunc adapts a function to the Tracer interface.
type TracerFunc func(ctx context.Context, png []byte) ([]byte, error)

func (f TracerFunc) Trace(ctx context.Context, png []byte) ([]byte, error) {
	return f(ctx, png)
}

// TracePreset bundles the vectorizer options worth exposing.
type TracePreset struct {
	Mode            string `yaml:"mode"`
	CornerThreshold int    `yaml:"corner_threshold"`
	FilterSpeckle   int    `yaml:"filter_speckle"`
}

// The two presets the pipeline has always used. Polygon keeps path data
// small and collision-friendly; spline traces smoother outlines.
var (
	Polygon = TracePreset{Mode: "polygon", FilterSpeckle: 3}
	Spline  = TracePreset{Mode: "spline", CornerThreshold: 75, FilterSpeckle: 3}
)

// VTracer drives the vtracer binary. Input and output go through a
// per-call temporary directory since the tool only speaks files.
type VTracer struct {
	// Path to the binary. Default: "vtracer" on PATH.
	Path   string
	Preset TracePreset
}

func (v *VTracer) binary() string {
	if v.Path != "" {
		return v.Path
	}
	return "vtracer"
}

func (v *VTracer) preset() TracePreset {
	if v.Preset.Mode == "" {
		return Polygon
	}
	return v.Preset
}

// Trace runs the vectorizer over the PNG bytes and returns the raw SVG
// it produced.
func (v *VTracer) Trace(ctx context.Context, png []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "shotvec-trace")
	if err != nil {
		return nil, errors.Wrap(err, "trace: temp dir")
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "out.svg")
	if err := os.WriteFile(in, png, 0644); err != nil {
		return nil, errors.Wrap(err, "trace: write input")
	}

	preset := v.preset()
	args := []string{
		"--input", in,
		"--output", out,
		"--colormode", "binary",
		"--mode", preset.Mode,
		"--filter_speckle", strconv.Itoa(preset.FilterSpeckle),
	}
	if preset.CornerThreshold > 0 {
		args = append(args, "--corner_threshold", strconv.Itoa(preset.CornerThreshold))
	}

	cmd := exec.CommandContext(ctx, v.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrapf(err, "trace: vtracer failed: %s", bytes.TrimSpace(stderr.Bytes()))
	}

	svg, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.Wrap(err, "trace: read output")
	}
	return svg, nil
}
