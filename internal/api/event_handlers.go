package api

import (
	"log"
	"net/http"
	"strconv"
)

// @Summary      Get new file events
// @Description  Retrieves file activity events (uploads, deletes) since a given event ID.
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        since  query     int  false  "The ID of the last event received. Omit or use 0 to get all events."
// @Success      200    {array}   database.Event
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Router       /events [get]
func (s *Server) GetEventsHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	sinceStr := r.URL.Query().Get("since")
	if sinceStr == "" {
		sinceStr = "0"
	}

	sinceID, err := strconv.ParseInt(sinceStr, 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, errValidation, "Invalid 'since' parameter, must be a number")
		return
	}

	events, err := s.store.GetEventsSince(r.Context(), claims.UserID, sinceID)
	if err != nil {
		log.Printf("ERROR: Failed to retrieve events for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to retrieve events")
		return
	}

	respondJSON(w, http.StatusOK, events)
}
