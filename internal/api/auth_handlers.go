package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"schowek-plikow/internal/auth"
	"schowek-plikow/internal/database"
	"schowek-plikow/internal/models"
)

type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Email    string `json:"email" example:"alice@example.com"`
	Password string `json:"password" example:"password123"`
}

type LoginRequest struct {
	Username string `json:"username" example:"alice"`
	Password string `json:"password" example:"password123"`
}

type AuthResponse struct {
	Token string       `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  *models.User `json:"user"`
}

// @Summary      Register a new user
// @Description  Creates a user account and returns a token bound to the new identity.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        registerRequest  body      RegisterRequest  true  "Registration data"
// @Success      200              {object}  AuthResponse
// @Failure      400              {object}  ErrorResponse
// @Failure      500              {object}  ErrorResponse
// @Router       /auth/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errValidation, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errValidation, "All fields are required")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("ERROR: Failed to hash password: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}

	user, err := s.store.CreateUser(r.Context(), database.CreateUserParams{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, database.ErrDuplicateUser) {
			respondError(w, http.StatusBadRequest, errConflict, "Username or email already exists")
			return
		}
		log.Printf("ERROR: Failed to create user: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		log.Printf("ERROR: Failed to generate token for user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}

// @Summary      Logs a user in
// @Description  Authenticates a user and returns a signed, time-bound token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        loginRequest  body      LoginRequest  true  "Login Credentials"
// @Success      200           {object}  AuthResponse
// @Failure      400           {object}  ErrorResponse
// @Failure      401           {object}  ErrorResponse
// @Failure      500           {object}  ErrorResponse
// @Router       /auth/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errValidation, "Invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, errValidation, "Username and password are required")
		return
	}

	user, err := s.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		log.Printf("ERROR: Failed to look up user: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}

	// Ta sama odpowiedź dla nieznanego użytkownika i błędnego hasła,
	// żeby nie dało się enumerować kont.
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, errAuth, "Invalid username or password")
		return
	}

	token, err := auth.GenerateJWT(user, s.config.JWT.Secret)
	if err != nil {
		log.Printf("ERROR: Failed to generate token for user %d: %v", user.ID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, AuthResponse{Token: token, User: user})
}
