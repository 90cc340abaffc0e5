package api

import (
	"net/http"
	"time"

	handlers "qcdispatch/src/api/handlers"
	"qcdispatch/src/config"
	workerhandlers "qcdispatch/src/worker/handlers"

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
	s.Router.Get("/alive", workerhandlers.Healthcheck)

	s.Router.Route("/api/dispatches", func(r chi.Router) {
		r.Get("/", s.Handler.GetAllDispatches)
		r.Get("/{id}", s.Handler.GetDispatchByID)
		r.Post("/", s.Handler.CreateDispatch)
		r.Put("/{id}", s.Handler.UpdateDispatch)
		r.Delete("/{id}", s.Handler.DeleteDispatch)
	})

	s.Router.Get("/api/tasks", s.Handler.SearchTasks)
}

func NewHTTPServer(server *Server) *http.Server {
	port := server.port
	if port == "" {
		port = "8000"
	}
	httpServer := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Handler:      server,
	}
	return httpServer
}
