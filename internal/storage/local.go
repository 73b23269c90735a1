package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fadilmartias/cert-verifier/internal/model"
)

// LocalStore keeps certificates as files in one directory. A later upload
// with the same name replaces the earlier one.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create certificate dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o640); err != nil {
		return "", fmt.Errorf("write certificate %s: %w", name, err)
	}
	return name, nil
}

// List reads every .pdf file in the directory, sorted by name.
func (s *LocalStore) List(ctx context.Context) ([]model.CertificateFile, error) {
	return ReadDir(ctx, s.dir)
}

// ReadDir loads every .pdf file directly under dir.
func ReadDir(ctx context.Context, dir string) ([]model.CertificateFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read certificate dir %s: %w", dir, err)
	}
	var files []model.CertificateFile
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !isPDFName(e.Name()) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read certificate %s: %w", e.Name(), err)
		}
		files = append(files, model.CertificateFile{Filename: e.Name(), Data: data})
	}
	return files, nil
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func cleanName(filename string) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("invalid certificate filename %q", filename)
	}
	if !isPDFName(name) {
		name += ".pdf"
	}
	return name, nil
}
