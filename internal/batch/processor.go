// Package batch imports the models of a model list with a worker pool and
// writes one JSON result per model.
package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/modellist"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	Options   importer.Options
	Workers   int
	// Progress is the interval between progress log lines; 0 uses 2s.
	Progress time.Duration
	Log      *logrus.Logger
}

// Result holds the outcome of importing one model.
type Result struct {
	Name     string `json:"name"`
	Group    string `json:"group,omitempty"`
	Output   string `json:"output,omitempty"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Failed   int    `json:"failed_containers,omitempty"`
	Warnings int    `json:"warnings,omitempty"`
}

// Run imports all entries using a worker pool. Each worker owns one
// Importer. The returned slice is in entry order.
func Run(cfg Config, entries []modellist.Entry) ([]Result, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "batch: output dir")
	}

	// Validate options once so workers cannot fail on construction.
	if _, err := importer.New(cfg.Options, nil); err != nil {
		return nil, errors.Wrap(err, "batch: importer options")
	}

	total := len(entries)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					cfg.Log.WithFields(logrus.Fields{
						"done":  p,
						"total": total,
						"rate":  float64(p) / elapsed,
					}).Info("progress")
				}
			}
		}
	}()

	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			log := cfg.Log.WithField("worker", worker)
			im, err := importer.New(cfg.Options, log)
			for idx := range jobs {
				if err != nil {
					e := entries[idx]
					results[idx] = Result{Name: e.Model.Name, Group: e.Group, Error: err.Error()}
				} else {
					results[idx] = processModel(cfg, im, entries[idx])
				}
				processed.Add(1)
			}
		}(w)
	}

	for i := range entries {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results, nil
}

func processModel(cfg Config, im *importer.Importer, e modellist.Entry) Result {
	r := Result{Name: e.Model.Name, Group: e.Group}

	res, err := im.Import(e.Model)
	if res != nil {
		r.Failed = len(res.Errors)
		r.Warnings = len(res.Warnings)
	}
	if err != nil {
		r.Error = err.Error()
		if res != nil && len(res.Errors) > 0 {
			r.Error += ": " + res.Errors[0].Error
		}
		return r
	}

	out := OutputPath(cfg.OutputDir, e)
	if err := writeJSON(out, res); err != nil {
		r.Error = err.Error()
		return r
	}
	r.Output = out
	r.Success = true
	return r
}

// OutputPath is where the result of e is written. Group and model names
// are reduced to a single path element so the result stays below dir.
func OutputPath(dir string, e modellist.Entry) string {
	if e.Group != "" {
		dir = filepath.Join(dir, pathElem(e.Group))
	}
	return filepath.Join(dir, pathElem(e.Model.Name)+".json")
}

func pathElem(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	switch name {
	case ".", "..", string(filepath.Separator):
		return "_"
	}
	return name
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}
