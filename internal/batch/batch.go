package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caretext/cdarender/internal/cda"
	"github.com/caretext/cdarender/internal/fhir"
)

// RenderableExtensions lists the source extensions a directory scan
// picks up.
var RenderableExtensions = []string{".xml", ".ccda"}

// Options controls a directory render.
type Options struct {
	Workers         int
	MaxDepth        int
	ContinueOnError bool
	Flatten         bool // write all outputs to the root of toDir
	Pretty          bool
}

// Result is the outcome for one source file.
type Result struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report summarizes a directory render.
type Report struct {
	Rendered int      `json:"rendered"`
	Failed   int      `json:"failed"`
	Results  []Result `json:"results"`
}

// RenderFile renders one document to its JSON form.
func RenderFile(path string, maxDepth int, pretty bool) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := cda.ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	rendered, err := fhir.FromDocument(doc, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", path, err)
	}
	if pretty {
		return json.MarshalIndent(rendered, "", "  ")
	}
	return json.Marshal(rendered)
}

// RenderDir renders every renderable file under fromDir into toDir
// with bounded concurrency, mirroring the directory layout unless
// flattened. Failures stop the run unless ContinueOnError is set; the
// report covers both cases.
func RenderDir(ctx context.Context, log *slog.Logger, fromDir, toDir string, opts Options) (Report, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	var files []string
	err := filepath.WalkDir(fromDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && renderable(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return Report{}, fmt.Errorf("scan %s: %w", fromDir, err)
	}
	sort.Strings(files)

	type indexed struct {
		idx int
		res Result
	}
	results := make(chan indexed, len(files))
	sem := make(chan struct{}, workers)

	for i, path := range files {
		sem <- struct{}{}
		go func(i int, path string) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- indexed{idx: i, res: Result{Source: path, Error: err.Error()}}
				return
			}
			results <- indexed{idx: i, res: renderOne(path, fromDir, toDir, opts)}
		}(i, path)
	}

	report := Report{Results: make([]Result, len(files))}
	for range files {
		r := <-results
		report.Results[r.idx] = r.res
	}
	for _, r := range report.Results {
		if r.Error != "" {
			report.Failed++
			log.Error("render failed", "source", r.Source, "error", r.Error)
			continue
		}
		report.Rendered++
		log.Info("rendered", "source", r.Source, "output", r.Output)
	}

	if report.Failed > 0 && !opts.ContinueOnError {
		return report, fmt.Errorf("render dir: %d of %d files failed", report.Failed, len(files))
	}
	return report, nil
}

func renderOne(path, fromDir, toDir string, opts Options) Result {
	data, err := RenderFile(path, opts.MaxDepth, opts.Pretty)
	if err != nil {
		return Result{Source: path, Error: err.Error()}
	}

	rel := filepath.Base(path)
	if !opts.Flatten {
		if r, err := filepath.Rel(fromDir, path); err == nil {
			rel = r
		}
	}
	outPath := filepath.Join(toDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".json")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return Result{Source: path, Error: err.Error()}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return Result{Source: path, Error: err.Error()}
	}
	return Result{Source: path, Output: outPath}
}

func renderable(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range RenderableExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
