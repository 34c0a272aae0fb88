package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shotvec/shotvec"
	"github.com/shotvec/shotvec/adb"
	"github.com/shotvec/shotvec/glyph"
	"github.com/shotvec/shotvec/svg"
	"github.com/shotvec/shotvec/utils"
)

const HelpBanner = `
┌─┐┬ ┬┌─┐┌┬┐┬  ┬┌─┐┌─┐
└─┐├─┤│ │ │ └┐┌┘├┤ │
└─┘┴ ┴└─┘ ┴  └┘ └─┘└─┘

Screenshot to vector document pipeline.
    Version: %s

Commands:
  capture   take screenshots over adb and trace them as they arrive
  trace     crop and vectorize a directory of PNG screenshots
  dedupe    fold duplicate paths in a directory of SVG files
  pdf       assemble a directory of pages into a single PDF
  glyphs    count recurring shapes and emit font glyph metadata

`

// Version indicates the current build version.
var Version string

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "capture":
		runCapture(os.Args[2:])
	case "trace":
		runTrace(os.Args[2:])
	case "dedupe":
		runDedupe(os.Args[2:])
	case "pdf":
		runPDF(os.Args[2:])
	case "glyphs":
		runGlyphs(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		log.Fatalf(utils.DecorateText("Unknown command %q, see 'shotvec help'.\n", utils.ErrorMessage), os.Args[1])
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, HelpBanner, Version)
}

func fatalf(format string, args ...interface{}) {
	log.Fatalf(utils.DecorateText(format, utils.ErrorMessage), args...)
}

// dedupConfig assembles the deduplication config from the optional YAML
// file and the flag overrides.
func dedupConfig(configPath, mode, attrs string) svg.Config {
	cfg := svg.Config{}
	if configPath != "" {
		loaded, err := svg.LoadConfig(configPath)
		if err != nil {
			fatalf("Failed to load the config file: %v\n", err)
		}
		cfg = *loaded
	}
	if mode != "" {
		cfg.Mode = svg.Mode(mode)
	}
	if attrs != "" {
		cfg.Key.Attributes = strings.Split(attrs, ",")
	}
	return cfg
}

func interruptContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// reportBatch prints per-file failures and returns the failure count.
func reportBatch(results []shotvec.BatchResult) int {
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			log.Printf("%s %v",
				utils.DecorateText(fmt.Sprintf("Error processing %s:", r.Path), utils.ErrorMessage),
				r.Err)
		}
	}
	return failed
}

func runCapture(args []string) {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	var (
		dir        = fs.String("dir", "screenshots", "Directory to save screenshots")
		cropTop    = fs.Int("crop-top", 150, "Number of pixels to crop from the top of each page")
		cropBottom = fs.Int("crop-bottom", 150, "Number of pixels to crop from the bottom of each page")
		pdfOut     = fs.String("pdf", "", "Assemble traced pages into this PDF on exit")
		removeSVG  = fs.Bool("remove-svg", false, "Remove the directory with converted SVG files")
		serial     = fs.String("serial", "", "Target device serial")
		maxPages   = fs.Int("pages", 0, "Stop after this many pages (0 = until interrupted)")
		mode       = fs.String("dedupe-mode", "reference", "Deduplication mode: remove or reference")
		tracerBin  = fs.String("vtracer", "", "Path to the vtracer binary")
	)
	fs.Parse(args)

	ctx := interruptContext()

	var opts []adb.Option
	if *serial != "" {
		opts = append(opts, adb.WithSerial(*serial))
	}
	session, err := adb.Open(ctx, adb.New(opts...))
	if err != nil {
		fatalf("%v\n", err)
	}
	defer session.Close()

	proc := &shotvec.Processor{
		CropTop:    *cropTop,
		CropBottom: *cropBottom,
		Tracer:     &shotvec.VTracer{Path: *tracerBin},
		Dedup:      svg.Config{Mode: svg.Mode(*mode)},
	}
	cfg := shotvec.CaptureConfig{
		Dir:       *dir,
		PDFOut:    *pdfOut,
		MaxPages:  *maxPages,
		RemoveSVG: *removeSVG,
	}

	log.Println(utils.DecorateText("⚡ SHOTVEC capturing, press Ctrl-C to stop...", utils.StatusMessage))
	if err := proc.Capture(ctx, session, cfg); err != nil {
		fatalf("Capture failed: %v\n", err)
	}
	log.Println(utils.DecorateText("Done ✔", utils.SuccessMessage))
}

func runTrace(args []string) {
	fs := flag.NewFlagSet("trace", flag.ExitOnError)
	var (
		in         = fs.String("in", "screenshots", "Directory with screenshots")
		out        = fs.String("out", "", "Output directory for SVG files (default <in>-svg)")
		cropTop    = fs.Int("crop-top", 150, "Number of pixels to crop from the top of each page")
		cropBottom = fs.Int("crop-bottom", 150, "Number of pixels to crop from the bottom of each page")
		spline     = fs.Bool("spline", false, "Trace smooth splines instead of polygons")
		mode       = fs.String("dedupe-mode", "reference", "Deduplication mode: remove or reference")
		tracerBin  = fs.String("vtracer", "", "Path to the vtracer binary")
		workers    = fs.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	)
	fs.Parse(args)

	if *out == "" {
		*out = shotvec.SVGDirFor(*in)
	}
	if err := os.MkdirAll(*out, 0755); err != nil {
		fatalf("Failed to create the output directory: %v\n", err)
	}

	files, err := shotvec.ListFiles(*in, ".png")
	if err != nil {
		fatalf("%v\n", err)
	}
	if len(files) == 0 {
		fatalf("No PNG files found in %s.\n", *in)
	}

	w, h, err := shotvec.DetectPageSize(files[0])
	if err != nil {
		fatalf("%v\n", err)
	}
	log.Printf("Page size is %d x %d", w, h-*cropTop-*cropBottom)

	preset := shotvec.Polygon
	if *spline {
		preset = shotvec.Spline
	}
	proc := shotvec.Processor{
		CropTop:    *cropTop,
		CropBottom: *cropBottom,
		Tracer:     &shotvec.VTracer{Path: *tracerBin, Preset: preset},
		Dedup:      svg.Config{Mode: svg.Mode(*mode)},
	}

	ctx := interruptContext()
	spinner := utils.NewSpinner(
		utils.DecorateText("⚡ SHOTVEC", utils.StatusMessage)+
			utils.DecorateText(" ⇢ tracing images...", utils.DefaultMessage),
		time.Millisecond*80)
	spinner.Start()
	start := time.Now()

	results := shotvec.Batch(ctx, files, *workers, func(path string) error {
		pc := proc
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".svg"
		_, err := pc.ProcessFile(ctx, path, filepath.Join(*out, name))
		return err
	})
	spinner.Stop()

	failed := reportBatch(results)
	log.Printf("%s %s",
		utils.DecorateText(fmt.Sprintf("Traced %d of %d files in", len(files)-failed, len(files)), utils.DefaultMessage),
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage))
	if failed > 0 {
		os.Exit(1)
	}
}

func runDedupe(args []string) {
	fs := flag.NewFlagSet("dedupe", flag.ExitOnError)
	var (
		in         = fs.String("in", "", "Input directory containing SVG files")
		out        = fs.String("out", "", "Output directory")
		mode       = fs.String("mode", "", "Deduplication mode: remove or reference")
		attrs      = fs.String("attrs", "", "Comma separated style attributes included in the equivalence key")
		configPath = fs.String("config", "", "YAML config file")
		fontMeta   = fs.String("font-meta", "", "Font metadata JSON; matching paths become glyph uses")
		workers    = fs.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	)
	fs.Parse(args)

	if *in == "" || *out == "" {
		fatalf("Both -in and -out directories are required.\n")
	}
	if err := os.MkdirAll(*out, 0755); err != nil {
		fatalf("Failed to create the output directory: %v\n", err)
	}

	cfg := dedupConfig(*configPath, *mode, *attrs)

	var meta glyph.Meta
	if *fontMeta != "" {
		var err error
		meta, err = glyph.LoadMeta(*fontMeta)
		if err != nil {
			fatalf("%v\n", err)
		}
		cfg.GlyphLookup = meta.Lookup
	}

	files, err := shotvec.ListFiles(*in, ".svg")
	if err != nil {
		fatalf("%v\n", err)
	}
	if len(files) == 0 {
		fatalf("No SVG files found in %s.\n", *in)
	}

	ctx := interruptContext()
	start := time.Now()

	results := shotvec.Batch(ctx, files, *workers, func(path string) error {
		proc := shotvec.Processor{Dedup: cfg}
		dst := filepath.Join(*out, filepath.Base(path))
		res, err := proc.DedupeFile(path, dst)
		if err != nil {
			return err
		}
		log.Printf("%s: %d distinct paths, %d folded", filepath.Base(path), len(res.Records), res.Folded)
		if meta != nil {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			uses, err := json.Marshal(res.GlyphUses)
			if err != nil {
				return err
			}
			return os.WriteFile(filepath.Join(*out, base+".json"), uses, 0644)
		}
		return nil
	})

	failed := reportBatch(results)
	log.Printf("%s %s",
		utils.DecorateText(fmt.Sprintf("Deduplicated %d of %d files in", len(files)-failed, len(files)), utils.DefaultMessage),
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage))
	if failed > 0 {
		os.Exit(1)
	}
}

func runPDF(args []string) {
	fs := flag.NewFlagSet("pdf", flag.ExitOnError)
	var (
		in         = fs.String("in", "", "Input directory containing PNG or SVG pages")
		out        = fs.String("out", "", "Output PDF file")
		cropTop    = fs.Int("crop-top", 150, "Number of pixels to crop from the top of each PNG page")
		cropBottom = fs.Int("crop-bottom", 150, "Number of pixels to crop from the bottom of each PNG page")
		useSVG     = fs.Bool("svg", false, "Treat the input directory as traced SVG pages")
	)
	fs.Parse(args)

	if *in == "" || *out == "" {
		fatalf("Both -in directory and -out file are required.\n")
	}

	ext := ".png"
	if *useSVG {
		ext = ".svg"
	}
	files, err := shotvec.ListFiles(*in, ext)
	if err != nil {
		fatalf("%v\n", err)
	}
	if len(files) == 0 {
		fatalf("No %s files found in %s.\n", ext, *in)
	}

	proc := shotvec.Processor{CropTop: *cropTop, CropBottom: *cropBottom}

	var pageW, pageH int
	if *useSVG {
		doc, err := svg.ParseFile(files[0])
		if err != nil {
			fatalf("%v\n", err)
		}
		pageW = atoiAttr(doc.Root.Attr("width"))
		pageH = atoiAttr(doc.Root.Attr("height"))
	} else {
		w, h, err := shotvec.DetectPageSize(files[0])
		if err != nil {
			fatalf("%v\n", err)
		}
		pageW, pageH = w, h-*cropTop-*cropBottom
	}
	log.Printf("Detected page size: %d x %d", pageW, pageH)

	asm, err := shotvec.NewAssembler(pageW, pageH, nil)
	if err != nil {
		fatalf("%v\n", err)
	}
	defer asm.Close()

	start := time.Now()
	failed := 0
	for _, path := range files {
		log.Println(filepath.Base(path))
		var err error
		if *useSVG {
			err = asm.AddSVGFile(path)
		} else {
			err = addCroppedPage(asm, &proc, path)
		}
		if err != nil {
			failed++
			log.Printf("%s %v",
				utils.DecorateText(fmt.Sprintf("Error processing %s:", path), utils.ErrorMessage), err)
		}
	}
	if asm.PageCount() == 0 {
		fatalf("No pages could be processed.\n")
	}
	if err := asm.WriteFile(*out); err != nil {
		fatalf("%v\n", err)
	}

	log.Printf("%s %s",
		utils.DecorateText(fmt.Sprintf("PDF created successfully: %s in", *out), utils.DefaultMessage),
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage))
	if failed > 0 {
		os.Exit(1)
	}
}

func addCroppedPage(asm *shotvec.Assembler, proc *shotvec.Processor, path string) error {
	img, err := shotvec.DecodeImage(path)
	if err != nil {
		return err
	}
	return asm.AddImage(proc.Crop(img))
}

func atoiAttr(s string) int {
	var n int
	fmt.Sscanf(s, "%d", &n)
	return n
}

func runGlyphs(args []string) {
	fs := flag.NewFlagSet("glyphs", flag.ExitOnError)
	var (
		in         = fs.String("in", "screenshots", "Directory with screenshots")
		out        = fs.String("out", "", "Output directory for SVG files (default <in>-svg)")
		cropTop    = fs.Int("crop-top", 150, "Number of pixels to crop from the top of each page")
		cropBottom = fs.Int("crop-bottom", 150, "Number of pixels to crop from the bottom of each page")
		limit      = fs.Int("limit", 10, "Include shapes at least this frequent into the font metadata")
		dbPath     = fs.String("db", "", "SQLite database accumulating counts across batches")
		metaOut    = fs.String("meta", "", "Font metadata JSON output (default <in>-meta.json)")
		tracerBin  = fs.String("vtracer", "", "Path to the vtracer binary")
		workers    = fs.Int("conc", runtime.NumCPU(), "Number of files to process concurrently")
	)
	fs.Parse(args)

	if *out == "" {
		*out = shotvec.SVGDirFor(*in)
	}
	if *metaOut == "" {
		*metaOut = strings.TrimRight(*in, "/\\") + "-meta.json"
	}
	if err := os.MkdirAll(*out, 0755); err != nil {
		fatalf("Failed to create the output directory: %v\n", err)
	}

	files, err := shotvec.ListFiles(*in, ".png")
	if err != nil {
		fatalf("%v\n", err)
	}
	if len(files) == 0 {
		fatalf("No PNG files found in %s.\n", *in)
	}

	proc := shotvec.Processor{
		CropTop:    *cropTop,
		CropBottom: *cropBottom,
		Tracer:     &shotvec.VTracer{Path: *tracerBin},
	}

	ctx := interruptContext()
	start := time.Now()

	counter, counted, results := shotvec.CountShapes(ctx, proc, files, *out, *workers)
	failed := reportBatch(results)
	log.Printf("Counted %d distinct shapes across %d files", counter.Len(), counted)

	if err := counter.DumpFile(strings.TrimRight(*in, "/\\") + ".json"); err != nil {
		fatalf("%v\n", err)
	}

	frequent := counter.Frequent(*limit)
	if *dbPath != "" {
		store, err := glyph.OpenStore(*dbPath)
		if err != nil {
			fatalf("%v\n", err)
		}
		defer store.Close()
		if err := store.Merge(ctx, counter); err != nil {
			fatalf("%v\n", err)
		}
		if frequent, err = store.Frequent(ctx, *limit); err != nil {
			fatalf("%v\n", err)
		}
	}

	svgs, err := shotvec.ListFiles(*out, ".svg")
	if err != nil {
		fatalf("%v\n", err)
	}
	shapes := glyph.FindShapes(svgs, frequent, func(path string, err error) {
		log.Printf("%s %v",
			utils.DecorateText(fmt.Sprintf("Error processing %s:", path), utils.ErrorMessage), err)
	})

	meta, oversized := glyph.BuildMeta(shapes)
	for _, d := range oversized {
		log.Printf("Shape %.40q is too large for the glyph box", d)
	}
	if err := meta.WriteFile(*metaOut); err != nil {
		fatalf("%v\n", err)
	}

	log.Printf("%s %s",
		utils.DecorateText(fmt.Sprintf("Wrote %d glyphs to %s in", len(meta), *metaOut), utils.DefaultMessage),
		utils.DecorateText(utils.FormatTime(time.Since(start)), utils.SuccessMessage))
	if failed > 0 {
		os.Exit(1)
	}
}
