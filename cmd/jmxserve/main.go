package main

import (
	"flag"

	"github.com/sirupsen/logrus"

	"jmxv-importer/internal/config"
	"jmxv-importer/internal/modellist"
	"jmxv-importer/internal/web"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (.json or .yaml)")
	dataDir := flag.String("data", "", "Directory served under /json/container and /texture")
	listFile := flag.String("list", "", "Model list XML (optional)")
	listen := flag.String("listen", "", "Listen address (default: 127.0.0.1:8080)")
	format := flag.String("format", "", "Texture output format: webp or png")
	flag.Parse()

	log := logrus.New()

	var cfg config.Config
	if *configFile != "" {
		var err error
		if cfg, err = config.Load(*configFile); err != nil {
			log.WithError(err).Fatal("loading config")
		}
	}
	cfg.Resolve(config.Flags{
		DataDir:       *dataDir,
		ModelList:     *listFile,
		TextureFormat: *format,
		Listen:        *listen,
	})

	var entries []modellist.Entry
	if list, err := modellist.Parse(cfg.ModelList); err != nil {
		log.WithError(err).Warn("no model list, serving containers only")
	} else {
		entries = list
	}

	opts, err := cfg.ImporterOptions()
	if err != nil {
		log.WithError(err).Fatal("importer options")
	}

	s, err := web.NewServer(cfg.DataDir, entries, opts, log)
	if err != nil {
		log.WithError(err).Fatal("server")
	}
	if err := s.ListenAndServe(cfg.Listen); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
