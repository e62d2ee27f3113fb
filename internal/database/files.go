package database

import (
	"context"
	"errors"
	"schowek-plikow/internal/models"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateStorageKey = errors.New("a file with this storage key already exists")

type CreateFileParams struct {
	ID           uuid.UUID
	OwnerID      int64
	StorageKey   string
	OriginalName string
	SizeBytes    int64
}

func (q *Queries) CreateFile(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	query := `
		INSERT INTO files (id, owner_id, storage_key, original_name, size_bytes, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, owner_id, storage_key, original_name, size_bytes, uploaded_at
	`
	row := q.db.QueryRow(ctx, query,
		arg.ID,
		arg.OwnerID,
		arg.StorageKey,
		arg.OriginalName,
		arg.SizeBytes,
		time.Now(),
	)

	var file models.File
	err := row.Scan(
		&file.ID,
		&file.OwnerID,
		&file.StorageKey,
		&file.OriginalName,
		&file.SizeBytes,
		&file.UploadedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateStorageKey
		}
		return nil, err
	}

	return &file, nil
}

// CreateFileWithEvent zapisuje wiersz metadanych i jego wpis w dzienniku
// zdarzeń w jednej transakcji. Powiadomienie WebSocket wychodzi dopiero
// po commicie.
func (s *Store) CreateFileWithEvent(ctx context.Context, arg CreateFileParams) (*models.File, error) {
	var file *models.File
	var eventBytes []byte

	err := s.ExecTx(ctx, func(q *Queries) error {
		var txErr error
		file, txErr = q.CreateFile(ctx, arg)
		if txErr != nil {
			return txErr
		}
		eventBytes, txErr = marshalEvent("file_uploaded", file)
		if txErr != nil {
			return txErr
		}
		return q.InsertEvent(ctx, arg.OwnerID, "file_uploaded", eventBytes)
	})
	if err != nil {
		return nil, err
	}

	if s.wsHub != nil {
		s.wsHub.PublishEvent(arg.OwnerID, eventBytes)
	}

	return file, nil
}

// DeleteFileWithEvent usuwa wiersz metadanych i dopisuje zdarzenie w jednej
// transakcji. Zwraca usunięty rekord albo nil, gdy plik nie należy do
// właściciela lub nie istnieje.
func (s *Store) DeleteFileWithEvent(ctx context.Context, ownerID int64, id uuid.UUID) (*models.File, error) {
	var file *models.File
	var eventBytes []byte

	err := s.ExecTx(ctx, func(q *Queries) error {
		var txErr error
		file, txErr = q.GetFileByOwnerAndID(ctx, ownerID, id)
		if txErr != nil || file == nil {
			return txErr
		}

		deleted, txErr := q.DeleteFileByOwnerAndID(ctx, ownerID, id)
		if txErr != nil {
			return txErr
		}
		if !deleted {
			file = nil
			return nil
		}

		eventBytes, txErr = marshalEvent("file_deleted", file)
		if txErr != nil {
			return txErr
		}
		return q.InsertEvent(ctx, ownerID, "file_deleted", eventBytes)
	})
	if err != nil {
		return nil, err
	}

	if file != nil && s.wsHub != nil {
		s.wsHub.PublishEvent(ownerID, eventBytes)
	}

	return file, nil
}

func (q *Queries) ListFilesByOwner(ctx context.Context, ownerID int64) ([]models.File, error) {
	query := `
		SELECT id, owner_id, storage_key, original_name, size_bytes, uploaded_at
		FROM files
		WHERE owner_id = $1
		ORDER BY uploaded_at DESC
	`
	rows, err := q.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

// escapeLikePattern neutralizuje metaznaki LIKE, żeby fraza użytkownika
// była dopasowywana dosłownie.
func escapeLikePattern(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (q *Queries) SearchFilesByOwner(ctx context.Context, ownerID int64, substring string) ([]models.File, error) {
	query := `
		SELECT id, owner_id, storage_key, original_name, size_bytes, uploaded_at
		FROM files
		WHERE owner_id = $1 AND original_name ILIKE $2 ESCAPE '\'
		ORDER BY uploaded_at DESC
	`
	pattern := "%" + escapeLikePattern(substring) + "%"

	rows, err := q.db.Query(ctx, query, ownerID, pattern)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFiles(rows)
}

func (q *Queries) GetFileByOwnerAndID(ctx context.Context, ownerID int64, id uuid.UUID) (*models.File, error) {
	query := `
		SELECT id, owner_id, storage_key, original_name, size_bytes, uploaded_at
		FROM files
		WHERE id = $1 AND owner_id = $2
	`
	var file models.File

	err := q.db.QueryRow(ctx, query, id, ownerID).Scan(
		&file.ID,
		&file.OwnerID,
		&file.StorageKey,
		&file.OriginalName,
		&file.SizeBytes,
		&file.UploadedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

func (q *Queries) GetFileByOwnerAndKey(ctx context.Context, ownerID int64, storageKey string) (*models.File, error) {
	query := `
		SELECT id, owner_id, storage_key, original_name, size_bytes, uploaded_at
		FROM files
		WHERE storage_key = $1 AND owner_id = $2
	`
	var file models.File

	err := q.db.QueryRow(ctx, query, storageKey, ownerID).Scan(
		&file.ID,
		&file.OwnerID,
		&file.StorageKey,
		&file.OriginalName,
		&file.SizeBytes,
		&file.UploadedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &file, nil
}

func (q *Queries) DeleteFileByOwnerAndID(ctx context.Context, ownerID int64, id uuid.UUID) (bool, error) {
	query := `DELETE FROM files WHERE id = $1 AND owner_id = $2`
	res, err := q.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}

	return res.RowsAffected() > 0, nil
}

func (q *Queries) StorageKeyExists(ctx context.Context, storageKey string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM files WHERE storage_key = $1)"
	err := q.db.QueryRow(ctx, query, storageKey).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func scanFiles(rows pgx.Rows) ([]models.File, error) {
	var files []models.File
	for rows.Next() {
		var file models.File
		err := rows.Scan(
			&file.ID,
			&file.OwnerID,
			&file.StorageKey,
			&file.OriginalName,
			&file.SizeBytes,
			&file.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if files == nil {
		return []models.File{}, nil
	}

	return files, nil
}
