// Package rest exposes the retrieval service over HTTP: multipart upload,
// search by reference number and retrieval by key.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/filedo/internal/logging"
	"github.com/dmitrijs2005/filedo/internal/server/services"
)

// Retriever is the part of services.RetrievalService the handlers use.
type Retriever interface {
	Upload(ctx context.Context, referenceNumber string, files []services.IncomingFile) (*services.UploadResult, error)
	RetrieveByKey(ctx context.Context, token, host string) (*services.RetrievalResult, error)
	RetrieveByReference(ctx context.Context, referenceNumber, host string) (*services.RetrievalResult, error)
}

type Server struct {
	address        string
	service        Retriever
	logger         logging.Logger
	maxUploadBytes int64
	mux            *http.ServeMux
}

func NewServer(address string, service Retriever, logger logging.Logger, maxUploadBytes int64) *Server {
	s := &Server{
		address:        address,
		service:        service,
		logger:         logger.With("module", "http_server"),
		maxUploadBytes: maxUploadBytes,
		mux:            http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("POST /upload", s.handleUpload)
	s.mux.HandleFunc("POST /search", s.handleSearch)
	s.mux.HandleFunc("GET /retrieve", s.handleRetrieve)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.accessLog(securityHeaders(s.mux)))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
