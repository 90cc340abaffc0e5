package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"qcdispatch/src/schemas"
	"qcdispatch/src/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) GetAllDispatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 10*time.Second)
	defer cancel()

	dispatches, err := h.Controller.GetAllDispatches(ctx)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, dispatches, http.StatusOK)
}

func (h *Handler) GetDispatchByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid dispatch id"))
		return
	}

	dispatch, err := h.Controller.GetDispatchByID(ctx, uint(id))
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, dispatch, http.StatusOK)
}

func (h *Handler) CreateDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 10*time.Second)
	defer cancel()

	var req schemas.CreateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}

	dispatch, err := h.Controller.CreateDispatch(ctx, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, dispatch, http.StatusCreated)
}

func (h *Handler) UpdateDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid dispatch id"))
		return
	}

	var req schemas.UpdateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid request body"))
		return
	}
	req.ID = uint(id)

	dispatch, err := h.Controller.UpdateDispatch(ctx, &req)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, dispatch, http.StatusOK)
}

func (h *Handler) DeleteDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 10*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid dispatch id"))
		return
	}

	if err := h.Controller.DeleteDispatch(ctx, uint(id)); err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, map[string]string{"status": "deleted"}, http.StatusOK)
}
