package shotvec

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func TestAssemblerStagesPages(t *testing.T) {
	asm, err := NewAssembler(10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer asm.Close()

	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	if err := asm.AddImage(img); err != nil {
		t.Fatal(err)
	}
	if err := asm.AddImage(img); err != nil {
		t.Fatal(err)
	}
	if asm.PageCount() != 2 {
		t.Fatalf("pages = %d, want 2", asm.PageCount())
	}
}

func TestAssemblerRejectsBadSize(t *testing.T) {
	if _, err := NewAssembler(0, 10, nil); err == nil {
		t.Fatal("expected error for zero page width")
	}
}

func TestAssemblerWriteRequiresPages(t *testing.T) {
	asm, err := NewAssembler(10, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer asm.Close()

	if err := asm.WriteFile(filepath.Join(t.TempDir(), "out.pdf")); err == nil {
		t.Fatal("expected error with no staged pages")
	}
}

func TestRasterizeSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.svg")
	const body = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="20" height="20">
<path d="M0,0 L20,0 L20,20 L0,20 Z" fill="#000000"/>
</svg>`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	img, err := RasterizeSVG(path, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Fatalf("unexpected raster size %v", img.Bounds())
	}
	// The full-canvas rectangle must leave dark pixels in the middle.
	r, g, b, _ := img.At(10, 10).RGBA()
	if r>>8 > 100 || g>>8 > 100 || b>>8 > 100 {
		t.Fatalf("expected dark pixel, got %v", color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255})
	}
}

func TestRasterizeSVGMissingFile(t *testing.T) {
	if _, err := RasterizeSVG(filepath.Join(t.TempDir(), "nope.svg"), 10, 10); err == nil {
		t.Fatal("expected error for missing file")
	}
}
