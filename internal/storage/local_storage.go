package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
)

var ErrBlobNotFound = errors.New("blob not found")

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Klucze są generowane przez serwer (nanoid), nigdy nie pochodzą z nazwy pliku użytkownika.
func (ls *LocalStorage) getPathFromKey(key string) string {
	if len(key) < 4 {
		return filepath.Join(ls.basePath, key)
	}
	return filepath.Join(ls.basePath, key[0:2], key[2:4], key)
}

// Save zapisuje dane najpierw do pliku tymczasowego, a dopiero po udanym
// zapisie zmienia jego nazwę na docelową. Czytelnik nigdy nie zobaczy
// częściowo zapisanego bloba.
func (ls *LocalStorage) Save(key string, data io.Reader) (int64, error) {
	finalPath := ls.getPathFromKey(key)

	if err := os.MkdirAll(filepath.Dir(finalPath), os.ModePerm); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(ls.basePath, ".upload-*")
	if err != nil {
		return 0, err
	}
	tmpPath := tmp.Name()

	written, err := io.Copy(tmp, data)
	if err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return 0, err
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return 0, err
	}

	return written, nil
}

func (ls *LocalStorage) Get(key string) (io.ReadCloser, error) {
	file, err := os.Open(ls.getPathFromKey(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(key string) error {
	err := os.Remove(ls.getPathFromKey(key))
	if os.IsNotExist(err) {
		return ErrBlobNotFound
	}

	return err
}
