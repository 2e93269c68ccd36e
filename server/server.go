// Package server exposes the download and metadata pipelines over HTTP.
// The two historical handler revisions (differing CORS headers, referer
// checks and logging) are collapsed into one canonical implementation
// driven by configuration.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"yt-mp3-service/application/download"
	"yt-mp3-service/application/metadata"
	"yt-mp3-service/infrastructure/config"
)

// shutdownTimeout bounds how long in-flight requests may run after a stop
// signal
const shutdownTimeout = 10 * time.Second

// Downloader runs the full download pipeline for one request
type Downloader interface {
	Run(ctx context.Context, input download.Input) (*download.Result, error)
}

// MetadataGetter resolves the metadata preview for one request
type MetadataGetter interface {
	Get(ctx context.Context, rawURL string) (*metadata.Info, error)
}

// Server wires the application services to HTTP routes
type Server struct {
	cfg       config.ServerConfig
	downloads Downloader
	metadata  MetadataGetter
	logger    *log.Logger
}

// New creates a server with all collaborators injected
func New(cfg config.ServerConfig, downloads Downloader, md MetadataGetter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	return &Server{
		cfg:       cfg,
		downloads: downloads,
		metadata:  md,
		logger:    logger,
	}
}

// Handler returns the route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/download", s.withAPIChecks(s.handleDownload))
	mux.HandleFunc("/api/info", s.withAPIChecks(s.handleInfo))
	mux.HandleFunc("/healthz", handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Printf("listening on %s", s.cfg.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
