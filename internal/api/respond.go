package api

import (
	"encoding/json"
	"net/http"
)

// Stabilne rodzaje błędów zwracane klientowi. Szczegóły wewnętrzne
// (ścieżki, treść zapytań) nigdy nie trafiają do odpowiedzi.
const (
	errValidation = "validation_error"
	errAuth       = "auth_error"
	errConflict   = "conflict_error"
	errNotFound   = "not_found"
	errStorage    = "storage_error"
)

type ErrorResponse struct {
	Error   string `json:"error" example:"validation_error"`
	Message string `json:"message" example:"All fields are required"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, ErrorResponse{Error: kind, Message: message})
}
