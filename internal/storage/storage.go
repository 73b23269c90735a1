package storage

import (
	"context"
	"fmt"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/model"
)

// Store is implemented by LocalStore and MinioStore.
type Store interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
	List(ctx context.Context) ([]model.CertificateFile, error)
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg *config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStore(cfg.LocalDir)
	case "minio":
		store, err := NewMinioStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
