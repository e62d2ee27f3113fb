package api

import (
	"log"
	"net/http"
)

// @Summary      Get current user profile
// @Description  Retrieves the identity record of the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  models.User
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile [get]
func (s *Server) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	user, err := s.store.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to retrieve user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, errNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
