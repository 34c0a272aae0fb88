package shotvec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// fakeDevice writes a synthetic screenshot per Screencap call and
// records key events.
type fakeDevice struct {
	t        *testing.T
	shots    int
	keyCodes []int
}

func (d *fakeDevice) Screencap(ctx context.Context, dir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.shots++
	path := filepath.Join(dir, fmt.Sprintf("screenshot_%02d.png", d.shots))
	writeTestPNG(d.t, path, 10, 12)
	return path, nil
}

func (d *fakeDevice) KeyEvent(ctx context.Context, code int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.keyCodes = append(d.keyCodes, code)
	return nil
}

func TestCaptureLoop(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	dev := &fakeDevice{t: t}

	p := &Processor{
		CropTop:    1,
		CropBottom: 1,
		Tracer: TracerFunc(func(ctx context.Context, raw []byte) ([]byte, error) {
			return []byte(tracedSVG), nil
		}),
	}

	cfg := CaptureConfig{
		Dir:      dir,
		MaxPages: 3,
		nextWait: func() time.Duration { return 0 },
	}
	if err := p.Capture(context.Background(), dev, cfg); err != nil {
		t.Fatal(err)
	}

	if dev.shots != 3 {
		t.Fatalf("screenshots = %d, want 3", dev.shots)
	}
	// The final page needs no page turn.
	if len(dev.keyCodes) != 2 {
		t.Fatalf("key events = %d, want 2", len(dev.keyCodes))
	}
	for _, code := range dev.keyCodes {
		if code != 25 {
			t.Fatalf("unexpected key code %d", code)
		}
	}

	svgs, err := ListFiles(SVGDirFor(dir), ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if len(svgs) != 3 {
		t.Fatalf("traced SVGs = %d, want 3", len(svgs))
	}
}

func TestCaptureStopsOnCancel(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	dev := &fakeDevice{t: t}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Processor{
		Tracer: TracerFunc(func(tctx context.Context, raw []byte) ([]byte, error) {
			// Simulate the operator interrupting mid-run.
			cancel()
			return []byte(tracedSVG), nil
		}),
	}

	cfg := CaptureConfig{
		Dir:      dir,
		nextWait: func() time.Duration { return time.Hour },
	}
	done := make(chan error, 1)
	go func() { done <- p.Capture(ctx, dev, cfg) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("capture loop did not stop on cancellation")
	}
	if dev.shots != 1 {
		t.Fatalf("screenshots = %d, want 1", dev.shots)
	}
}

func TestCaptureContinuesPastBadPage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	dev := &fakeDevice{t: t}

	calls := 0
	p := &Processor{
		Tracer: TracerFunc(func(ctx context.Context, raw []byte) ([]byte, error) {
			calls++
			if calls == 1 {
				return []byte("<svg><broken"), nil
			}
			return []byte(tracedSVG), nil
		}),
	}

	cfg := CaptureConfig{
		Dir:      dir,
		MaxPages: 2,
		nextWait: func() time.Duration { return 0 },
	}
	if err := p.Capture(context.Background(), dev, cfg); err != nil {
		t.Fatal(err)
	}
	if dev.shots != 2 {
		t.Fatalf("screenshots = %d, want 2: a failed page must not stop the loop", dev.shots)
	}

	svgs, err := ListFiles(SVGDirFor(dir), ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if len(svgs) != 1 {
		t.Fatalf("traced SVGs = %d, want 1", len(svgs))
	}
}

func TestCaptureCreatesDirectories(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "shots")
	dev := &fakeDevice{t: t}

	p := &Processor{
		Tracer: TracerFunc(func(ctx context.Context, raw []byte) ([]byte, error) {
			return []byte(tracedSVG), nil
		}),
	}
	cfg := CaptureConfig{Dir: dir, MaxPages: 1, nextWait: func() time.Duration { return 0 }}
	if err := p.Capture(context.Background(), dev, cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(SVGDirFor(dir)); err != nil {
		t.Fatal(err)
	}
}
