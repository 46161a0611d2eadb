package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 stores uploads in an S3-compatible bucket via the MinIO client.
type S3 struct {
	client *minio.Client
	bucket string
	base   string
}

// S3Config carries the credential set electing this backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	Bucket    string
	UseSSL    bool
}

// NewS3 dials the object store.
func NewS3(cfg S3Config) (*S3, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}

	return &S3{
		client: client,
		bucket: cfg.Bucket,
		base:   fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

// Save uploads the object and returns its public URL. The object key doubles
// as the deletion path.
func (s *S3) Save(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Image, error) {
	key := objectName(name)

	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, err
	}

	return &Image{
		Name: key,
		Size: size,
		Type: contentType,
		URL:  fmt.Sprintf("%s/%s", s.base, key),
		Path: key,
	}, nil
}

// Delete removes the object by key.
func (s *S3) Delete(ctx context.Context, path string) error {
	return s.client.RemoveObject(ctx, s.bucket, path, minio.RemoveObjectOptions{})
}
