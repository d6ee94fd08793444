// Package storage implements the MediaStorage boundary on a MinIO-compatible
// object store.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"fitlog/config"
	"fitlog/internal/domain/service"
	"fitlog/internal/errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/fx"
)

// Params defines the required parameters
type Params struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

type minioStorage struct {
	client *minio.Client
	cfg    *config.StorageConfig
	logger *slog.Logger
}

// New creates the object-store client. A nil storage config yields a nil
// service so media features degrade gracefully instead of failing startup.
func New(params Params) (service.MediaStorage, error) {
	storageCfg := params.Config.Storage
	if storageCfg == nil {
		params.Logger.Warn("object storage is not configured, media features are disabled")

		return nil, nil
	}

	client, err := minio.New(storageCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(storageCfg.AccessKeyID, storageCfg.SecretAccessKey, ""),
		Secure: storageCfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create object storage client")
	}

	return &minioStorage{
		client: client,
		cfg:    storageCfg,
		logger: params.Logger,
	}, nil
}

func (s *minioStorage) Upload(ctx context.Context, bucket, objectName string, body io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, bucket, objectName, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload %s/%s", bucket, objectName)
	}

	return nil
}

func (s *minioStorage) SignedURL(ctx context.Context, bucket, objectName string, expiry time.Duration) (string, error) {
	signed, err := s.client.PresignedGetObject(ctx, bucket, objectName, expiry, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "failed to presign %s/%s", bucket, objectName)
	}

	return signed.String(), nil
}

func (s *minioStorage) PublicURL(bucket, objectName string) string {
	scheme := "http"
	if s.cfg.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.cfg.Endpoint, bucket, objectName)
}
