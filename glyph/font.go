package glyph

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"

	"github.com/shotvec/shotvec/svg"
)

// The glyph box every font shape must fit, in path user units. Shapes
// outside it would clip when imported into a 1000-em font.
const (
	boxMinX = -50
	boxMaxX = 50
	boxMinY = 0
	boxMaxY = 100
)

// Glyph is the font metadata for one shape, keyed by its path digest in
// a Meta map.
type Glyph struct {
	CodePoint rune       `json:"code_point"`
	BBox      [4]float64 `json:"bbox"` // xmin, ymin, xmax, ymax
}

// Meta maps a path digest to its assigned glyph. This is the sidecar
// the external font generator and the font-aware deduplicator consume.
type Meta map[string]Glyph

// LoadMeta reads a font metadata JSON file.
func LoadMeta(path string) (Meta, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "glyph: read meta %s", path)
	}
	var m Meta
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, errors.Wrapf(err, "glyph: parse meta %s", path)
	}
	return m, nil
}

// WriteFile writes the metadata as JSON.
func (m Meta) WriteFile(path string) error {
	b, err := json.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "glyph: marshal meta")
	}
	return errors.Wrapf(os.WriteFile(path, b, 0644), "glyph: write %s", path)
}

// Lookup adapts the metadata to the deduplicator's glyph hook: given raw
// path data, return the assigned code point.
func (m Meta) Lookup(d string) (rune, bool) {
	g, ok := m[Hash(strings.TrimSpace(d))]
	return g.CodePoint, ok
}

// FitsBox reports whether a path bounding box fits the glyph box.
func FitsBox(b svg.Bounds) bool {
	return b.MinX >= boxMinX && b.MaxX <= boxMaxX &&
		b.MinY >= boxMinY && b.MaxY <= boxMaxY
}

// printable reports whether a code point belongs to a letter, number,
// punctuation or symbol class, mirroring the categories the original
// font packager accepted.
func printable(r rune) bool {
	return unicode.In(r, unicode.L, unicode.N, unicode.P, unicode.S)
}

// nextCodePoint returns the first printable code point >= r.
func nextCodePoint(r rune) rune {
	for !printable(r) {
		r++
	}
	return r
}

// BuildMeta assigns printable code points (starting just past the space
// character) to the given path-data shapes, skipping shapes whose
// bounding box does not fit the glyph box. Shapes are processed in a
// deterministic order so repeated runs over the same input produce the
// same assignment. Returns the metadata plus the paths that were
// skipped as oversized.
func BuildMeta(shapes []string) (Meta, []string) {
	sorted := append([]string(nil), shapes...)
	sort.Strings(sorted)

	meta := make(Meta, len(sorted))
	var oversized []string
	cp := nextCodePoint(' ' + 1)

	for _, d := range sorted {
		b, err := svg.PathBounds(d)
		if err != nil || !FitsBox(b) {
			oversized = append(oversized, d)
			continue
		}
		meta[Hash(d)] = Glyph{
			CodePoint: cp,
			BBox:      [4]float64{b.MinX, b.MinY, b.MaxX, b.MaxY},
		}
		cp = nextCodePoint(cp + 1)
	}
	return meta, oversized
}

// FindShapes scans sorted SVG files for paths whose digest is in the
// wanted set, returning the path data in encounter order. Files that
// fail to parse are skipped via onError and the scan continues; the
// scan stops early once every wanted digest is found.
func FindShapes(files []string, wanted map[string]bool, onError func(path string, err error)) []string {
	remaining := make(map[string]bool, len(wanted))
	for h := range wanted {
		remaining[h] = true
	}

	var result []string
	for _, path := range files {
		if len(remaining) == 0 {
			break
		}
		doc, err := svg.ParseFile(path)
		if err != nil {
			if onError != nil {
				onError(path, err)
			}
			continue
		}
		collectShapes(doc.Root, remaining, &result)
	}
	return result
}

func collectShapes(e *svg.Element, remaining map[string]bool, out *[]string) {
	if e.Name.Local == "path" {
		d := strings.TrimSpace(e.Attr("d"))
		if d != "" {
			if h := Hash(d); remaining[h] {
				*out = append(*out, d)
				delete(remaining, h)
			}
		}
	}
	for _, c := range e.Children {
		collectShapes(c, remaining, out)
	}
}
