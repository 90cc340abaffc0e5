package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qcdispatch/src/api"
	"qcdispatch/src/config"
	"qcdispatch/src/utils"
	"qcdispatch/src/worker"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logLevel, err := logrus.ParseLevel(cfg.Service.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger := utils.NewLogger(logLevel, false, "")

	var httpServer *http.Server
	var stopScheduler func(context.Context) error

	if cfg.Service.Type == config.API {
		server, err := api.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}
		httpServer = api.NewHTTPServer(server)
	} else {
		server, err := worker.NewServer(cfg, logger)
		if err != nil {
			return nil, err
		}
		server.Start()
		stopScheduler = server.Stop
		httpServer = worker.NewHTTPServer(server)
	}

	go func() {
		logger.Infoln("Starting server on", httpServer.Addr)

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
	}()

	go func() {
		sigC := make(chan os.Signal, 1)
		signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
		<-sigC

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Let an in-flight scheduler pass finish before halting the server.
		if stopScheduler != nil {
			if err := stopScheduler(ctx); err != nil {
				logger.WithError(err).Warn("scheduler did not stop cleanly")
			}
		}
		if err := httpServer.Shutdown(ctx); err != nil {
			errC <- err
			return
		}
		errC <- nil
	}()

	return errC, nil
}
