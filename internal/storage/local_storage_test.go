package storage

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewLocalStorage(t *testing.T) {
	tempDir := t.TempDir()

	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)
	require.NotNil(t, storage)
	require.Equal(t, tempDir, storage.basePath)

	// Sprawdź, czy katalog został utworzony
	_, err = os.Stat(tempDir)
	require.NoError(t, err, "Base directory should be created")
}

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	key := "testfilekey1234567890"
	content := "Hello, world!"

	written, err := storage.Save(key, strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), written)

	expectedPath := storage.getPathFromKey(key)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err, "Blob should exist after save")
	require.Equal(t, int64(len(content)), fileInfo.Size())

	readCloser, err := storage.Get(key)
	require.NoError(t, err)

	retrievedContent, err := io.ReadAll(readCloser)
	require.NoError(t, err)
	readCloser.Close()
	require.Equal(t, content, string(retrievedContent))

	err = storage.Delete(key)
	require.NoError(t, err)

	_, err = os.Stat(expectedPath)
	require.Error(t, err)
	require.True(t, os.IsNotExist(err), "Blob should not exist after delete")
}

func TestLocalStorage_NoTempResidue(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Save("residuecheckkey123456", strings.NewReader("dane"))
	require.NoError(t, err)

	// Po udanym zapisie nie może zostać żaden plik tymczasowy
	matches, err := filepath.Glob(filepath.Join(tempDir, ".upload-*"))
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestLocalStorage_GetNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Get("nonexistentkey1234567")
	require.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStorage_DeleteNonExistent(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	err = storage.Delete("nonexistentkey1234567")
	require.ErrorIs(t, err, ErrBlobNotFound)
}

func TestLocalStorage_DistinctKeysDoNotCollide(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, err = storage.Save("aaaafirstkey123456789", strings.NewReader("pierwszy"))
	require.NoError(t, err)
	_, err = storage.Save("aaaasecondkey12345678", strings.NewReader("drugi"))
	require.NoError(t, err)

	first, err := storage.Get("aaaafirstkey123456789")
	require.NoError(t, err)
	defer first.Close()
	firstContent, _ := io.ReadAll(first)
	require.Equal(t, "pierwszy", string(firstContent))

	second, err := storage.Get("aaaasecondkey12345678")
	require.NoError(t, err)
	defer second.Close()
	secondContent, _ := io.ReadAll(second)
	require.Equal(t, "drugi", string(secondContent))
}

func TestLocalStorage_SaveWithLargeData(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	key := "largefilekey123456789"
	largeContent := make([]byte, 1024*1024)
	for i := range largeContent {
		largeContent[i] = 'a'
	}

	written, err := storage.Save(key, bytes.NewReader(largeContent))
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), written)

	// Sprawdź tylko rozmiar, nie zawartość
	expectedPath := storage.getPathFromKey(key)
	fileInfo, err := os.Stat(expectedPath)
	require.NoError(t, err)
	require.Equal(t, int64(len(largeContent)), fileInfo.Size())
}
