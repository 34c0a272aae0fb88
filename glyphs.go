package shotvec

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/shotvec/shotvec/glyph"
	"github.com/shotvec/shotvec/svg"
)

// CountShapes traces every screenshot, tallies the path shapes it finds
// and writes the traced (un-deduplicated) SVGs into svgDir for the
// glyph selection pass. Counting order follows the input file order so
// repeated runs see identical tallies. Returns the counter, the number
// of files that traced successfully, and the per-file results.
func CountShapes(ctx context.Context, proc Processor, files []string, svgDir string, workers int) (*glyph.Counter, int, []BatchResult) {
	var mu sync.Mutex
	shapesByFile := make(map[string][]string, len(files))

	results := Batch(ctx, files, workers, func(path string) error {
		pc := proc

		img, err := DecodeImage(path)
		if err != nil {
			return err
		}
		doc, err := pc.TraceImage(ctx, img)
		if err != nil {
			return err
		}

		var shapes []string
		collectPathData(doc.Root, &shapes)

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".svg"
		if err := doc.WriteFile(filepath.Join(svgDir, name)); err != nil {
			return err
		}

		mu.Lock()
		shapesByFile[path] = shapes
		mu.Unlock()
		return nil
	})

	counter := glyph.NewCounter()
	counted := 0
	for _, path := range files {
		shapes, ok := shapesByFile[path]
		if !ok {
			continue
		}
		counted++
		for _, d := range shapes {
			counter.Add(d)
		}
	}
	return counter, counted, results
}

func collectPathData(e *svg.Element, out *[]string) {
	if e.Name.Local == "path" {
		if d := strings.TrimSpace(e.Attr("d")); d != "" {
			*out = append(*out, d)
		}
	}
	for _, c := range e.Children {
		collectPathData(c, out)
	}
}
