package shotvec

import (
	"context"
	"image"
	"log/slog"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/shotvec/shotvec/svg"
)

// Processor options
type Processor struct {
	// CropTop and CropBottom trim the device status and navigation bars
	// from each screenshot, in pixels.
	CropTop    int
	CropBottom int

	// RoundDecimals is the precision applied to traced path numbers
	// before deduplication. Default 2.
	RoundDecimals int

	// Tracer converts cropped rasters to SVG. Default: vtracer on PATH
	// with the polygon preset.
	Tracer Tracer

	// Dedup configures the path deduplication pass.
	Dedup svg.Config

	Logger *slog.Logger
}

func (p *Processor) defaults() {
	if p.RoundDecimals == 0 {
		p.RoundDecimals = 2
	}
	if p.Tracer == nil {
		p.Tracer = &VTracer{Preset: Polygon}
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	if p.Dedup.Logger == nil {
		p.Dedup.Logger = p.Logger
	}
}

// Crop trims the configured top and bottom margins from the image.
func (p *Processor) Crop(img image.Image) *image.NRGBA {
	b := img.Bounds()
	return imaging.Crop(img, image.Rect(b.Min.X, b.Min.Y+p.CropTop, b.Max.X, b.Max.Y-p.CropBottom))
}

// TraceImage runs the raster half of the pipeline: crop, grayscale,
// trace, round numbers. The result still contains duplicate paths.
func (p *Processor) TraceImage(ctx context.Context, img image.Image) (*svg.Document, error) {
	p.defaults()

	gray := imaging.Grayscale(p.Crop(img))
	raw, err := encodePNG(gray)
	if err != nil {
		return nil, err
	}

	out, err := p.Tracer.Trace(ctx, raw)
	if err != nil {
		return nil, err
	}

	doc, err := svg.Parse(strings.NewReader(string(out)))
	if err != nil {
		return nil, errors.Wrap(err, "tracer produced malformed SVG")
	}
	p.roundPaths(doc.Root)
	return doc, nil
}

func (p *Processor) roundPaths(e *svg.Element) {
	if e.Name.Local == "path" {
		if d := e.Attr("d"); d != "" {
			e.SetAttr("d", svg.RoundPathData(d, p.RoundDecimals))
		}
	}
	for _, c := range e.Children {
		p.roundPaths(c)
	}
}

// ProcessFile runs the full per-file pipeline: decode the PNG at src,
// crop, trace, deduplicate and write the reduced SVG to dst. Nothing is
// written when any stage fails.
func (p *Processor) ProcessFile(ctx context.Context, src, dst string) (*svg.Result, error) {
	p.defaults()

	img, err := DecodeImage(src)
	if err != nil {
		return nil, err
	}

	doc, err := p.TraceImage(ctx, img)
	if err != nil {
		return nil, err
	}

	res, err := svg.Deduplicate(doc, p.Dedup)
	if err != nil {
		return nil, err
	}
	if err := doc.WriteFile(dst); err != nil {
		return nil, err
	}
	p.Logger.Info("traced image",
		"src", src, "dst", dst,
		"paths", len(res.Records), "folded", res.Folded)
	return res, nil
}

// DedupeFile applies the deduplication pass to an existing SVG file.
// On any failure no output file is created.
func (p *Processor) DedupeFile(src, dst string) (*svg.Result, error) {
	p.defaults()

	doc, err := svg.ParseFile(src)
	if err != nil {
		return nil, err
	}
	res, err := svg.Deduplicate(doc, p.Dedup)
	if err != nil {
		return nil, errors.Wrapf(err, "dedupe %s", src)
	}
	if err := doc.WriteFile(dst); err != nil {
		return nil, err
	}
	return res, nil
}

// SVGDirFor returns the sibling directory holding traced SVGs for a
// screenshot directory.
func SVGDirFor(dir string) string {
	return strings.TrimRight(dir, "/\\") + "-svg"
}
