package shotvec

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/shotvec/shotvec/adb"
)

// Device is the part of the adb surface the capture loop needs.
// *adb.Client and *adb.Session both satisfy it.
type Device interface {
	Screencap(ctx context.Context, dir string) (string, error)
	KeyEvent(ctx context.Context, code int) error
}

// CaptureConfig configures the screenshot loop.
type CaptureConfig struct {
	// Dir receives the raw screenshots; traced SVGs go to Dir + "-svg".
	Dir string

	// PDFOut, when set, assembles every traced page into a PDF at this
	// path on shutdown.
	PDFOut string

	// KeyCode is the page-turn key. Default: volume down.
	KeyCode int

	// MaxPages stops the loop after this many screenshots; 0 means run
	// until the context is cancelled.
	MaxPages int

	// RemoveSVG deletes the SVG directory after the PDF is written.
	RemoveSVG bool

	// nextWait returns the pause between page turns. Tests override it;
	// the default draws from a normal distribution around 6s, clamped
	// to [2s, 10s], so page flips don't look machine-timed.
	nextWait func() time.Duration
}

func defaultWait() time.Duration {
	t := rand.NormFloat64()*2 + 6
	if t < 2 {
		t = 2
	}
	if t > 10 {
		t = 10
	}
	return time.Duration(t * float64(time.Second))
}

// Capture runs the screenshot loop: capture a page, trace it, turn the
// page, wait, repeat. Cancelling the context ends the loop cleanly and
// still writes the PDF for the pages captured so far. A page that fails
// to trace is reported and skipped; the loop keeps going.
func (p *Processor) Capture(ctx context.Context, dev Device, cfg CaptureConfig) error {
	p.defaults()
	if cfg.Dir == "" {
		cfg.Dir = "screenshots"
	}
	if cfg.KeyCode == 0 {
		cfg.KeyCode = adb.KeyVolumeDown
	}
	if cfg.nextWait == nil {
		cfg.nextWait = defaultWait
	}

	svgDir := SVGDirFor(cfg.Dir)
	for _, dir := range []string{cfg.Dir, svgDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "could not create the directory %s", dir)
		}
	}

	var asm *Assembler
	defer func() {
		if asm != nil {
			asm.Close()
		}
	}()

	pages := 0
	for {
		pngFile, err := dev.Screencap(ctx, cfg.Dir)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}

		if pages == 0 {
			w, h, err := DetectPageSize(pngFile)
			if err != nil {
				return err
			}
			pageH := h - p.CropTop - p.CropBottom
			p.Logger.Info("page size detected", "width", w, "height", pageH)
			if cfg.PDFOut != "" {
				asm, err = NewAssembler(w, pageH, p.Logger)
				if err != nil {
					return err
				}
			}
		}

		svgFile := filepath.Join(svgDir, svgName(pngFile))
		if _, err := p.ProcessFile(ctx, pngFile, svgFile); err != nil {
			if ctx.Err() != nil {
				break
			}
			p.Logger.Error("page failed", "path", pngFile, "err", err)
		} else if asm != nil {
			if err := asm.AddSVGFile(svgFile); err != nil {
				p.Logger.Error("page not added to PDF", "path", svgFile, "err", err)
			}
		}
		pages++

		if cfg.MaxPages > 0 && pages >= cfg.MaxPages {
			break
		}
		if err := dev.KeyEvent(ctx, cfg.KeyCode); err != nil {
			if ctx.Err() != nil {
				break
			}
			return err
		}

		wait := cfg.nextWait()
		p.Logger.Info("waiting before next page", "duration", wait)
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
		if ctx.Err() != nil {
			break
		}
	}

	if asm != nil && asm.PageCount() > 0 {
		if err := asm.WriteFile(cfg.PDFOut); err != nil {
			return err
		}
		asm = nil
		if cfg.RemoveSVG {
			if err := os.RemoveAll(svgDir); err != nil {
				return errors.Wrapf(err, "could not remove the directory %s", svgDir)
			}
		}
	}
	return nil
}

func svgName(pngFile string) string {
	base := filepath.Base(pngFile)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".svg"
}
