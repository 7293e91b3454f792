// Package web serves decoded containers and model imports as JSON over HTTP
// for inspection.
package web

import (
	"io"
	"net/http"
	"sort"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"jmxv-importer/internal/binreader"
	"jmxv-importer/internal/importer"
	"jmxv-importer/internal/modellist"
	"jmxv-importer/internal/texture"
)

// Server holds the data served to clients. It is safe for concurrent use.
type Server struct {
	dataDir string
	models  map[string]modellist.Entry
	names   []string
	opts    importer.Options
	decode  []binreader.Option
	codec   texture.Codec
	log     *logrus.Logger
}

// NewServer serves containers below dataDir and the given model entries.
// A nil log uses the standard logger.
func NewServer(dataDir string, entries []modellist.Entry, opts importer.Options, log *logrus.Logger) (*Server, error) {
	enc, err := binreader.EncodingByName(opts.Encoding)
	if err != nil {
		return nil, err
	}
	codec := opts.Codec
	if codec == nil {
		if codec, err = texture.NewCodec(texture.FormatPNG); err != nil {
			return nil, err
		}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		dataDir: dataDir,
		models:  make(map[string]modellist.Entry, len(entries)),
		opts:    opts,
		decode:  []binreader.Option{binreader.WithEncoding(enc)},
		codec:   codec,
		log:     log,
	}
	for _, e := range entries {
		if _, dup := s.models[e.Model.Name]; dup {
			log.WithField("model", e.Model.Name).Warn("web: duplicate model name, keeping first")
			continue
		}
		s.models[e.Model.Name] = e
		s.names = append(s.names, e.Model.Name)
	}
	sort.Strings(s.names)
	return s, nil
}

// Router returns the routes without middleware.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/models", s.handleModels).Methods(http.MethodGet)
	r.HandleFunc("/json/models/{name}", s.handleModel).Methods(http.MethodGet)
	r.HandleFunc("/json/container/{kind}/{path:.+}", s.handleContainer).Methods(http.MethodGet)
	r.HandleFunc("/texture/{path:.+}", s.handleTexture).Methods(http.MethodGet)
	return r
}

// Handler wraps Router with request logging to out and panic recovery.
func (s *Server) Handler(out io.Writer) http.Handler {
	h := handlers.RecoveryHandler(handlers.RecoveryLogger(s.log), handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(out, h)
}

// ListenAndServe serves on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.WithFields(logrus.Fields{"addr": addr, "models": len(s.names)}).Info("web: starting server")
	return http.ListenAndServe(addr, s.Handler(s.log.Writer()))
}
