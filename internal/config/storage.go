package config

import (
	"os"
	"sync"
)

type StorageConfig struct {
	// Driver is "local" or "minio".
	Driver    string
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	storageConfig *StorageConfig
	storageOnce   sync.Once
)

func LoadStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		storageConfig = &StorageConfig{
			Driver:    envString("STORAGE_DRIVER", "local"),
			LocalDir:  envString("STORAGE_LOCAL_DIR", "certificates"),
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    envString("MINIO_BUCKET", "certificates"),
			Region:    envString("MINIO_REGION", "us-east-1"),
			UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
		}
	})
	return storageConfig
}
