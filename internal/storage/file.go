package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

type fileBlob struct {
	path string
}

// NewFileStore хранит матчи в одном JSON-файле; каталог создаётся при необходимости.
func NewFileStore(path string) (*ListStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return newListStore(fileBlob{path: path}), nil
}

func (f fileBlob) read(context.Context) ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

// write: через временный файл и rename.
func (f fileBlob) write(_ context.Context, data []byte) error {
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (fileBlob) close() error { return nil }
