package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"schowek-plikow/internal/database"
	"schowek-plikow/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
)

// generateStorageKey losuje klucz bloba niezależny od nazwy podanej przez
// użytkownika. Klucz nigdy nie jest używany ponownie, nawet po usunięciu pliku.
func (s *Server) generateStorageKey(ctx context.Context) (string, error) {
	maxRetries := 10

	generateID, err := nanoid.Standard(21)
	if err != nil {
		return "", fmt.Errorf("failed to initialize nanoid generator: %w", err)
	}

	for i := 0; i < maxRetries; i++ {
		key := generateID()
		exists, err := s.store.StorageKeyExists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("failed to check for storage key existence: %w", err)
		}
		if !exists {
			return key, nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique storage key after %d attempts", maxRetries)
}

// Nazwa pliku jest wyłącznie metadaną do wyświetlania, ale nie może
// rozbić nagłówka odpowiedzi.
func sanitizeAttachmentName(name string) string {
	return strings.NewReplacer("\"", "", "\r", "", "\n", "", "\\", "").Replace(name)
}

// @Summary      Upload a file
// @Description  Streams a multipart file (max 10 MiB) into blob storage and records its metadata.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file  formData  file  true  "File to upload"
// @Success      200   {object}  models.File
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /upload [post]
func (s *Server) UploadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())
	maxBytes := s.config.Storage.MaxUploadBytes

	// Zapas na ramki multipart; sam plik jest limitowany osobno poniżej.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1<<20)

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		respondError(w, http.StatusBadRequest, errValidation, "File too large or malformed multipart form")
		return
	}

	file, handler, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, errValidation, "No file uploaded")
		return
	}
	defer file.Close()

	if handler.Size > maxBytes {
		respondError(w, http.StatusBadRequest, errValidation, "File exceeds the maximum allowed size")
		return
	}

	key, err := s.generateStorageKey(r.Context())
	if err != nil {
		log.Printf("ERROR: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to store file")
		return
	}

	// Limit egzekwowany również w trakcie kopiowania: strumień dłuższy niż
	// zadeklarowano zostaje odrzucony, a zapisany blob wycofany.
	written, err := s.storage.Save(key, io.LimitReader(file, maxBytes+1))
	if err != nil {
		log.Printf("ERROR: Failed to save blob %s: %v", key, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to store file")
		return
	}
	if written > maxBytes {
		if err := s.storage.Delete(key); err != nil {
			log.Printf("ERROR: Failed to roll back oversized blob %s: %v", key, err)
		}
		respondError(w, http.StatusBadRequest, errValidation, "File exceeds the maximum allowed size")
		return
	}

	// Wiersz metadanych i wpis w dzienniku zdarzeń zatwierdzane razem.
	record, err := s.store.CreateFileWithEvent(r.Context(), database.CreateFileParams{
		ID:           uuid.New(),
		OwnerID:      claims.UserID,
		StorageKey:   key,
		OriginalName: handler.Filename,
		SizeBytes:    written,
	})
	if err != nil {
		// Bez wpisu w metadanych blob nie może zostać na dysku.
		if delErr := s.storage.Delete(key); delErr != nil {
			log.Printf("ERROR: Failed to roll back blob %s after metadata failure: %v", key, delErr)
		}
		log.Printf("ERROR: Failed to create file record: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to create file record")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// @Summary      List own files
// @Description  Returns all file records of the authenticated user, newest first.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   models.File
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /files [get]
func (s *Server) ListFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	files, err := s.store.ListFilesByOwner(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("ERROR: Failed to list files for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to list files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// @Summary      Search own files
// @Description  Case-insensitive literal substring match against original file names.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true  "Substring to search for"
// @Success      200    {array}   models.File
// @Failure      400    {object}  ErrorResponse
// @Failure      401    {object}  ErrorResponse
// @Failure      403    {object}  ErrorResponse
// @Router       /search [get]
func (s *Server) SearchFilesHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, errValidation, "Search query is required")
		return
	}

	files, err := s.store.SearchFilesByOwner(r.Context(), claims.UserID, query)
	if err != nil {
		log.Printf("ERROR: Failed to search files for user %d: %v", claims.UserID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to search files")
		return
	}

	respondJSON(w, http.StatusOK, files)
}

// @Summary      Download a file
// @Description  Streams the file bytes with the original name as attachment name.
// @Tags         files
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        fileId  path      string  true  "File ID"
// @Success      200     {file}    binary
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /download/{fileId} [get]
func (s *Server) DownloadFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondError(w, http.StatusNotFound, errNotFound, "File not found")
		return
	}

	record, err := s.store.GetFileByOwnerAndID(r.Context(), claims.UserID, fileID)
	if err != nil {
		log.Printf("ERROR: Failed to retrieve file metadata: %v", err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to retrieve file metadata")
		return
	}
	if record == nil {
		// Plik nieistniejący i plik cudzy są nierozróżnialne.
		respondError(w, http.StatusNotFound, errNotFound, "File not found")
		return
	}

	blob, err := s.storage.Get(record.StorageKey)
	if err != nil {
		// Równoległe usunięcie mogło zabrać blob po odczycie metadanych;
		// przegrany wyścigu dostaje not_found, nie błąd serwera.
		if errors.Is(err, storage.ErrBlobNotFound) {
			respondError(w, http.StatusNotFound, errNotFound, "File not found")
			return
		}
		log.Printf("ERROR: Failed to read blob %s for file %s: %v", record.StorageKey, record.ID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to read file")
		return
	}
	defer blob.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+sanitizeAttachmentName(record.OriginalName)+"\"")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", fmt.Sprintf("%d", record.SizeBytes))

	io.Copy(w, blob)
}

// @Summary      Delete a file
// @Description  Removes the metadata record and the stored blob.
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        fileId  path      string  true  "File ID"
// @Success      200     {object}  map[string]string
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /files/{fileId} [delete]
func (s *Server) DeleteFileHandler(w http.ResponseWriter, r *http.Request) {
	claims := GetUserFromContext(r.Context())

	fileID, err := uuid.Parse(chi.URLParam(r, "fileId"))
	if err != nil {
		respondError(w, http.StatusNotFound, errNotFound, "File not found")
		return
	}

	// Najpierw wiersz metadanych razem z wpisem do dziennika, potem blob.
	// Równoległe pobranie albo zdąży przed usunięciem, albo dostanie not_found.
	record, err := s.store.DeleteFileWithEvent(r.Context(), claims.UserID, fileID)
	if err != nil {
		log.Printf("ERROR: Failed to delete file record %s: %v", fileID, err)
		respondError(w, http.StatusInternalServerError, errStorage, "Failed to delete file")
		return
	}
	if record == nil {
		respondError(w, http.StatusNotFound, errNotFound, "File not found")
		return
	}

	if err := s.storage.Delete(record.StorageKey); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		log.Printf("ERROR: Failed to delete blob %s for file %s: %v", record.StorageKey, fileID, err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}
