package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MediaStore persists uploaded media and returns the URL it is served from.
type MediaStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// LocalMediaStore writes under Dir and serves from BaseURL (the /uploads static route).
type LocalMediaStore struct {
	Dir     string
	BaseURL string
}

func NewLocalMediaStore(dir, baseURL string) (*LocalMediaStore, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalMediaStore{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (l *LocalMediaStore) Put(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	clean := path.Clean("/" + key)[1:]
	if clean == "" {
		return "", fmt.Errorf("empty media key")
	}
	dest := filepath.Join(l.Dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(dest), os.ModePerm); err != nil {
		return "", err
	}

	dst, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return l.BaseURL + "/" + clean, nil
}

// MediaKey builds an object key like "posts/<uuid>.jpg" from the uploaded filename.
func MediaKey(prefix, id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, id+ext)
}
