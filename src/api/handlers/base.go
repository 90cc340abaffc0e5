package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"qcdispatch/src/api/controllers"
	"qcdispatch/src/clients/formcatalog"
	"qcdispatch/src/clients/statevocab"
	"qcdispatch/src/config"
	"qcdispatch/src/database"
	"qcdispatch/src/repositories"
	"qcdispatch/src/search"
	"qcdispatch/src/services"
	"qcdispatch/src/utils"
	redis_utils "qcdispatch/src/utils/redis"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Handler struct {
	Controller *controllers.Controller
	logger     *logrus.Logger
}

func NewHandler(cfg *config.Config, logger *logrus.Logger) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	// The redis cache is optional; lookups fall through to the catalog
	// when it is not reachable.
	var cache *redis_utils.RedisHandler
	if cfg.Databases.Redis.Host != "" {
		cache, err = redis_utils.NewRedisHandler(cfg)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, form catalog lookups will not be cached")
			cache = nil
		}
	}

	var catalog formcatalog.ClientI
	if len(cfg.ExternalClients.FormCatalog.Addresses) > 0 {
		client, err := formcatalog.NewClient(cfg, cache)
		if err != nil {
			return nil, err
		}
		catalog = client
	}

	dispatchRepo := repositories.NewDispatchRepository(db)
	taskRepo := repositories.NewDispatchedTaskRepository(db)

	vocabulary := statevocab.NewVocabulary(db, time.Duration(cfg.Scheduler.VocabularyTTLSeconds)*time.Second)
	compiler := search.NewCompiler(vocabulary)
	searchService := services.NewTaskSearchService(catalog, compiler, taskRepo)

	controller := controllers.NewController(dispatchRepo, searchService)
	return &Handler{Controller: controller, logger: logger}, nil
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var httpErr *utils.HTTPError
	if errors.Is(err, context.DeadlineExceeded) {
		h.respond(w, nil, map[string]string{"error": "Request timed out"}, http.StatusGatewayTimeout)
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		h.respond(w, nil, map[string]string{"error": "Not found"}, http.StatusNotFound)
	} else if errors.As(err, &httpErr) {
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if err != nil {
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	} else {
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}

// RequestLogger returns the handler's logger attached to the request context.
func (h *Handler) RequestLogger(r *http.Request) context.Context {
	return utils.WithLogger(r.Context(), h.logger)
}
