package shotvec

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// maxWorkers caps the number of concurrently running workers.
const maxWorkers = 20

// BatchResult holds the relevant information about one processed file.
type BatchResult struct {
	Path string
	Err  error
}

// Failed reports whether any file in the batch failed.
func Failed(results []BatchResult) bool {
	for _, r := range results {
		if r.Err != nil {
			return true
		}
	}
	return false
}

// Batch fans fn out over the files with a bounded worker pool. Every
// file gets its own invocation with no shared state, so a failure is
// isolated to its result entry and the rest of the batch continues.
// Results come back in input order.
func Batch(ctx context.Context, files []string, workers int, fn func(path string) error) []BatchResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if workers > len(files) {
		workers = len(files)
	}

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	results := make([]BatchResult, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.idx] = BatchResult{Path: j.path, Err: err}
					continue
				}
				results[j.idx] = BatchResult{Path: j.path, Err: fn(j.path)}
			}
		}()
	}

	for i, path := range files {
		jobs <- job{idx: i, path: path}
	}
	close(jobs)
	wg.Wait()
	return results
}

// ListFiles returns the sorted list of files in dir carrying the given
// extension, matched case-insensitively.
func ListFiles(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read the directory %s", dir)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ext) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
