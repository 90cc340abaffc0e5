package worker

import (
	"context"
	"net/http"
	"time"

	"qcdispatch/src/config"
	handlers "qcdispatch/src/worker/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type Server struct {
	Router  *chi.Mux
	Handler handlers.Handler
	port    string
}

func NewServer(cfg *config.Config, logger *logrus.Logger) (*Server, error) {
	handler, err := handlers.NewHandler(cfg, logger)
	if err != nil {
		return nil, err
	}
	server := &Server{
		Router:  chi.NewRouter(),
		Handler: *handler,
		port:    cfg.Service.Port,
	}
	server.InitRoutes()
	return server, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func (s *Server) InitRoutes() {
	s.Router.Get("/alive", handlers.Healthcheck)
	s.Router.Route("/api/scheduler", func(r chi.Router) {
		r.Post("/tick", s.Handler.TriggerTick)
		r.Post("/backfill/{id}", s.Handler.Backfill)
	})
}

// Start begins the scheduled tick loop.
func (s *Server) Start() {
	s.Handler.Controller.Start()
}

// Stop halts the tick loop, letting an in-flight pass finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.Handler.Controller.Stop(ctx)
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.port
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		Handler:      server,
	}
	return httpServer
}
