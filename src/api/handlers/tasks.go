package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"qcdispatch/src/utils"
)

// SearchTasks handles keyword search over dispatched tasks. Query
// parameters: keyword, dispatchId, page, pageSize, sortBy, order=desc.
func (h *Handler) SearchTasks(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(h.RequestLogger(r), 15*time.Second)
	defer cancel()

	query := r.URL.Query()
	keyword := query.Get("keyword")

	var dispatchID *uint
	if raw := query.Get("dispatchId"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			h.HandleErrors(w, utils.BadRequest("invalid dispatchId parameter"))
			return
		}
		value := uint(id)
		dispatchID = &value
	}

	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("pageSize"))
	sortBy := query.Get("sortBy")
	sortDesc := query.Get("order") == "desc"

	response, err := h.Controller.SearchTasks(ctx, keyword, dispatchID, page, pageSize, sortBy, sortDesc)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	h.respond(w, r, response, http.StatusOK)
}
