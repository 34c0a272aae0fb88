package shotvec

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/pkg/errors"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Assembler builds a page-per-image PDF at a fixed page size. Pages are
// staged as temporary rasters and imported in one shot by WriteFile, so
// an aborted run never leaves a half-written PDF.
type Assembler struct {
	pageW, pageH int
	tmpDir       string
	pages        []string
	logger       *slog.Logger
}

// NewAssembler creates an assembler producing pages of the given pixel
// size. Call Close to discard staged pages if WriteFile is never
// reached.
func NewAssembler(pageW, pageH int, logger *slog.Logger) (*Assembler, error) {
	if pageW <= 0 || pageH <= 0 {
		return nil, errors.Errorf("pdf: invalid page size %dx%d", pageW, pageH)
	}
	if logger == nil {
		logger = slog.Default()
	}
	dir, err := os.MkdirTemp("", "shotvec-pdf")
	if err != nil {
		return nil, errors.Wrap(err, "pdf: temp dir")
	}
	return &Assembler{pageW: pageW, pageH: pageH, tmpDir: dir, logger: logger}, nil
}

// AddImage stages an image as the next page.
func (a *Assembler) AddImage(img image.Image) error {
	path := filepath.Join(a.tmpDir, fmt.Sprintf("page_%04d.png", len(a.pages)))
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "pdf: stage page")
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return errors.Wrap(err, "pdf: encode page")
	}
	a.pages = append(a.pages, path)
	return nil
}

// AddImageFile stages an image file as the next page without re-encoding.
func (a *Assembler) AddImageFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(err, "pdf: page %s", path)
	}
	a.pages = append(a.pages, path)
	return nil
}

// AddSVGFile rasterizes an SVG at the page size and stages it.
func (a *Assembler) AddSVGFile(path string) error {
	img, err := RasterizeSVG(path, a.pageW, a.pageH)
	if err != nil {
		return err
	}
	return a.AddImage(img)
}

// PageCount returns the number of staged pages.
func (a *Assembler) PageCount() int { return len(a.pages) }

// WriteFile imports every staged page into a PDF at out and removes the
// staging directory.
func (a *Assembler) WriteFile(out string) error {
	if len(a.pages) == 0 {
		return errors.New("pdf: no pages staged")
	}
	imp, err := pdfapi.Import(fmt.Sprintf("dim:%d %d, pos:full", a.pageW, a.pageH), types.POINTS)
	if err != nil {
		return errors.Wrap(err, "pdf: import config")
	}
	if err := pdfapi.ImportImagesFile(a.pages, out, imp, nil); err != nil {
		return errors.Wrapf(err, "pdf: write %s", out)
	}
	a.logger.Info("PDF created", "path", out, "pages", len(a.pages))
	return a.Close()
}

// Close removes the staging directory. Safe after WriteFile.
func (a *Assembler) Close() error {
	if a.tmpDir == "" {
		return nil
	}
	dir := a.tmpDir
	a.tmpDir = ""
	a.pages = nil
	return os.RemoveAll(dir)
}

// RasterizeSVG renders an SVG file onto a white canvas of the given
// size.
func RasterizeSVG(path string, w, h int) (image.Image, error) {
	icon, err := oksvg.ReadIcon(path, oksvg.WarnErrorMode)
	if err != nil {
		return nil, errors.Wrapf(err, "pdf: read svg %s", path)
	}
	if w <= 0 {
		w = int(icon.ViewBox.W)
	}
	if h <= 0 {
		h = int(icon.ViewBox.H)
	}
	if w <= 0 || h <= 0 {
		return nil, errors.Errorf("pdf: svg %s has no usable size", path)
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.SetTarget(0, 0, float64(w), float64(h))
	icon.Draw(dasher, 1.0)
	return img, nil
}
