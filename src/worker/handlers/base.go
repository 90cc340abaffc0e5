package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"qcdispatch/src/config"
	"qcdispatch/src/database"
	"qcdispatch/src/repositories"
	"qcdispatch/src/services"
	"qcdispatch/src/utils"
	"qcdispatch/src/worker/controllers"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Controller *controllers.Controller
}

func NewHandler(cfg *config.Config, logger *logrus.Logger) (*Handler, error) {
	db, err := database.SetupDB(cfg)
	if err != nil {
		return nil, err
	}

	dispatchRepo := repositories.NewDispatchRepository(db)
	taskRepo := repositories.NewDispatchedTaskRepository(db)

	materializer := services.NewTaskMaterializer(
		services.FixedOffsetDueDate(time.Duration(cfg.Scheduler.DueDateOffsetHours)*time.Hour),
		"scheduler",
	)

	schedulerService := services.NewDispatchSchedulerService(
		dispatchRepo,
		taskRepo,
		materializer,
		time.Duration(cfg.Scheduler.TickWindowSeconds)*time.Second,
		time.Duration(cfg.Scheduler.PersistTimeoutSeconds)*time.Second,
	)

	controller, err := controllers.NewController(schedulerService, cfg.Scheduler.CronSpec, logger)
	if err != nil {
		return nil, err
	}

	return &Handler{Controller: controller}, nil
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
	} else if errors.As(err, &httpErr) {
		h.respond(w, nil, map[string]string{"error": httpErr.Message}, httpErr.Code)
	} else if err != nil {
		h.respond(w, nil, map[string]string{"error": err.Error()}, http.StatusInternalServerError)
	} else {
		h.respond(w, nil, map[string]string{"error": "Unhandled error"}, http.StatusInternalServerError)
	}
}
