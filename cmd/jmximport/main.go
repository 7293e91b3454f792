package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"jmxv-importer/internal/batch"
	"jmxv-importer/internal/config"
	"jmxv-importer/internal/modellist"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	testN := flag.Int("test", 0, "Import only the first N models")
	group := flag.String("group", "", "Import only models from this group")
	name := flag.String("model", "", "Import only the model with this name")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	dataDir := flag.String("data", "", "Base directory for relative paths (default: .)")
	listFile := flag.String("list", "", "Model list XML (default: <data>/models.xml)")
	outputDir := flag.String("output", "", "Output directory (default: <data>/imported)")
	format := flag.String("format", "", "Texture output format: webp or png")
	encoding := flag.String("encoding", "", "Text encoding of names, e.g. euc-kr")
	verbose := flag.Bool("v", false, "Log each container")

	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			log.WithError(err).Fatal("loading config")
		}
	}

	cfg.Resolve(config.Flags{
		DataDir:       *dataDir,
		ModelList:     *listFile,
		OutputDir:     *outputDir,
		TextureFormat: *format,
		Encoding:      *encoding,
		Workers:       *workers,
	})

	entries, err := modellist.Parse(cfg.ModelList)
	if err != nil {
		log.WithError(err).Fatal("loading model list")
	}

	if *group != "" || *name != "" {
		var filtered []modellist.Entry
		for _, e := range entries {
			if *group != "" && e.Group != *group {
				continue
			}
			if *name != "" && e.Model.Name != *name {
				continue
			}
			filtered = append(filtered, e)
		}
		entries = filtered
	}

	if *testN > 0 && *testN < len(entries) {
		entries = entries[:*testN]
	}

	if len(entries) == 0 {
		fmt.Println("No models to import.")
		os.Exit(0)
	}

	opts, err := cfg.ImporterOptions()
	if err != nil {
		log.WithError(err).Fatal("importer options")
	}

	log.WithFields(logrus.Fields{
		"models":  len(entries),
		"workers": cfg.Workers,
		"output":  cfg.OutputDir,
	}).Info("JMXV import")

	start := time.Now()

	results, err := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Options:   opts,
		Workers:   cfg.Workers,
		Log:       log,
	}, entries)
	if err != nil {
		log.WithError(err).Fatal("batch")
	}

	success, failed := 0, 0
	var errs []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	log.WithFields(logrus.Fields{
		"imported": success,
		"total":    len(entries),
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("done")

	if len(errs) > 0 {
		limit := 20
		if len(errs) < limit {
			limit = len(errs)
		}
		for _, e := range errs[:limit] {
			log.WithField("model", e.Name).Error(e.Error)
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, entries, results); err != nil {
		log.WithError(err).Warn("manifest write failed")
	} else {
		log.WithField("path", manifestPath).Info("manifest written")
	}

	if failed > 0 {
		os.Exit(1)
	}
}
