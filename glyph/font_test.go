package glyph

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shotvec/shotvec/svg"
)

func TestFitsBox(t *testing.T) {
	tests := []struct {
		b    svg.Bounds
		want bool
	}{
		{svg.Bounds{MinX: -50, MinY: 0, MaxX: 50, MaxY: 100}, true},
		{svg.Bounds{MinX: -10, MinY: 5, MaxX: 10, MaxY: 95}, true},
		{svg.Bounds{MinX: -51, MinY: 0, MaxX: 0, MaxY: 10}, false},
		{svg.Bounds{MinX: 0, MinY: -1, MaxX: 10, MaxY: 10}, false},
		{svg.Bounds{MinX: 0, MinY: 0, MaxX: 10, MaxY: 101}, false},
	}
	for _, tt := range tests {
		if got := FitsBox(tt.b); got != tt.want {
			t.Errorf("FitsBox(%+v) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestBuildMeta(t *testing.T) {
	shapes := []string{
		"M0,0 L10,10",
		"M-5,0 L5,50",
		"M0,0 L500,500", // outside the glyph box
	}
	meta, oversized := BuildMeta(shapes)

	if len(meta) != 2 {
		t.Fatalf("expected 2 glyphs, got %d", len(meta))
	}
	if len(oversized) != 1 || oversized[0] != "M0,0 L500,500" {
		t.Fatalf("unexpected oversized set: %v", oversized)
	}

	seen := make(map[rune]bool)
	for _, g := range meta {
		if !printable(g.CodePoint) {
			t.Errorf("code point %d is not printable", g.CodePoint)
		}
		if g.CodePoint <= ' ' {
			t.Errorf("code point %d not past space", g.CodePoint)
		}
		if seen[g.CodePoint] {
			t.Errorf("code point %d assigned twice", g.CodePoint)
		}
		seen[g.CodePoint] = true
	}

	// Deterministic across runs regardless of input order.
	meta2, _ := BuildMeta([]string{shapes[1], shapes[2], shapes[0]})
	for h, g := range meta {
		if meta2[h] != g {
			t.Fatalf("assignment not deterministic for %s", h)
		}
	}
}

func TestMetaRoundTripAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font-meta.json")

	meta, _ := BuildMeta([]string{"M0,0 L10,10"})
	if err := meta.WriteFile(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadMeta(path)
	if err != nil {
		t.Fatal(err)
	}
	cp, ok := loaded.Lookup("  M0,0 L10,10  ")
	if !ok {
		t.Fatal("lookup must trim and match")
	}
	if cp != meta[Hash("M0,0 L10,10")].CodePoint {
		t.Fatalf("wrong code point %d", cp)
	}
	if _, ok := loaded.Lookup("M9,9"); ok {
		t.Fatal("unknown shape must not match")
	}
}

func TestFindShapes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	a := write("a.svg", `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0,0 L1,1"/></svg>`)
	bad := write("bad.svg", `<svg><path`)
	b := write("b.svg", `<svg xmlns="http://www.w3.org/2000/svg"><g><path d="M2,2 L3,3"/></g></svg>`)

	wanted := map[string]bool{
		Hash("M0,0 L1,1"): true,
		Hash("M2,2 L3,3"): true,
	}

	var failed []string
	shapes := FindShapes([]string{a, bad, b}, wanted, func(path string, err error) {
		failed = append(failed, path)
	})

	if len(shapes) != 2 {
		t.Fatalf("expected 2 shapes, got %v", shapes)
	}
	if len(failed) != 1 || failed[0] != bad {
		t.Fatalf("parse failure must be reported and skipped, got %v", failed)
	}
}
