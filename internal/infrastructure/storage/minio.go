package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/fpa-intel/fpa-api/internal/core/ports"
)

// MinioMode is reported by MinioStore.Mode.
const MinioMode = "minio"

// MinioConfig holds the object storage connection settings.
type MinioConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioStore keeps content as objects in one bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
}

var _ ports.ContentStorage = (*MinioStore)(nil)

// NewMinio connects to the endpoint and creates the bucket if it is missing.
func NewMinio(ctx context.Context, cfg MinioConfig) (*MinioStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	return &MinioStore{client: cli, bucket: cfg.Bucket}, nil
}

func (s *MinioStore) Mode() string { return MinioMode }

func (s *MinioStore) Write(ctx context.Context, name, contentType string, data []byte) error {
	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

func (s *MinioStore) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapErr(name, err)
	}
	return data, nil
}

func (s *MinioStore) Delete(ctx context.Context, name string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return s.mapErr(name, err)
	}
	return nil
}

func (s *MinioStore) Locate(name string) string {
	return fmt.Sprintf("minio://%s/%s", s.bucket, name)
}

func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

func (s *MinioStore) mapErr(name string, err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ports.ErrContentMissing
	}
	return fmt.Errorf("object %s: %w", name, err)
}
