// Package server exposes the interpreter and sample generator over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/nlq"
	"github.com/koustreak/querytalk/internal/sample"
)

// Interpreter is the part of the NL pipeline the server needs. Satisfied by
// *nlq.Interpreter; tests substitute a fake.
type Interpreter interface {
	Interpret(ctx context.Context, request string) (nlq.Result, error)
}

// SampleGenerator is the part of the sample generator the server needs.
type SampleGenerator interface {
	GenerateSet(ctx context.Context) ([]sample.Sample, error)
	GenerateWithKeyword(ctx context.Context, keyword string) ([]sample.Sample, error)
}

// Server routes HTTP requests to the interpretation and generation layers.
type Server struct {
	interp  Interpreter
	samples SampleGenerator
	db      database.DB
	log     *logger.Logger
	metrics *Metrics
}

// New builds a server. A nil logger falls back to the global one.
func New(interp Interpreter, samples SampleGenerator, db database.DB, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Global()
	}
	return &Server{
		interp:  interp,
		samples: samples,
		db:      db,
		log:     log,
		metrics: NewMetrics(),
	}
}

// Router assembles the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/interpret", s.handleInterpret)
		r.Get("/sample-queries", s.handleSamples)
		r.Get("/schema", s.handleSchema)
	})
	return r
}
