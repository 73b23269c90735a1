package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/fadilmartias/cert-verifier/internal/config"
	"github.com/fadilmartias/cert-verifier/internal/model"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const certificatePrefix = "certificates/"

// MinioStore keeps certificates in an S3-compatible bucket under a fixed
// prefix.
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
}

func NewMinioStore(cfg *config.StorageConfig) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket on first use.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

func (s *MinioStore) Save(ctx context.Context, filename string, data []byte) (string, error) {
	name, err := cleanName(filename)
	if err != nil {
		return "", err
	}
	opts := minio.PutObjectOptions{ContentType: "application/pdf"}
	_, err = s.client.PutObject(ctx, s.bucket, certificatePrefix+name, bytes.NewReader(data), int64(len(data)), opts)
	if err != nil {
		return "", fmt.Errorf("upload certificate %s: %w", name, err)
	}
	return name, nil
}

func (s *MinioStore) List(ctx context.Context) ([]model.CertificateFile, error) {
	var files []model.CertificateFile
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    certificatePrefix,
		Recursive: true,
	})
	for info := range objects {
		if info.Err != nil {
			return nil, fmt.Errorf("list certificates: %w", info.Err)
		}
		if !isPDFName(info.Key) {
			continue
		}
		data, err := s.download(ctx, info.Key)
		if err != nil {
			return nil, err
		}
		files = append(files, model.CertificateFile{
			Filename: path.Base(strings.TrimPrefix(info.Key, certificatePrefix)),
			Data:     data,
		})
	}
	return files, nil
}

func (s *MinioStore) download(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get certificate %s: %w", key, err)
	}
	defer obj.Close()
	buf, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read certificate %s: %w", key, err)
	}
	return buf, nil
}
