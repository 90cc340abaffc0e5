package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"qcdispatch/src/utils"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

// TriggerTick runs one scheduler pass. An optional "now" query parameter
// (RFC3339) overrides the reference instant, for testing and recovery.
func (h *Handler) TriggerTick(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	now := time.Now()
	if raw := r.URL.Query().Get("now"); raw != "" {
		parsed, err := time.Parse(utils.FiringInstantLayout, raw)
		if err != nil {
			h.HandleErrors(w, utils.BadRequest("invalid now parameter, expected RFC3339"))
			return
		}
		now = parsed
	}

	report, err := h.Controller.TriggerTick(ctx, now)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, report, http.StatusOK)
}

// Backfill materializes one explicit firing instant for a dispatch. The "at"
// query parameter (RFC3339) names the firing instant.
func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid dispatch id"))
		return
	}

	raw := r.URL.Query().Get("at")
	if raw == "" {
		h.HandleErrors(w, utils.BadRequest("missing at parameter"))
		return
	}
	firingInstant, err := time.Parse(utils.FiringInstantLayout, raw)
	if err != nil {
		h.HandleErrors(w, utils.BadRequest("invalid at parameter, expected RFC3339"))
		return
	}

	inserted, err := h.Controller.Backfill(ctx, uint(id), firingInstant)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = utils.NotFound("dispatch not found")
		}
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, map[string]int64{"tasksCreated": inserted}, http.StatusOK)
}
