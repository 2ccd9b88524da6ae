// Package storage mirrors downloaded artifacts to S3-compatible object
// storage. The mirror is optional: without MINIO_ENDPOINT configured,
// artifacts only exist on the local filesystem.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"mediaforge/config"
	"mediaforge/logger"
	"mediaforge/model"
)

// ArtifactStore uploads generated media to a bucket. A nil
// *ArtifactStore is valid and uploads nothing.
type ArtifactStore struct {
	client *minio.Client
	bucket string
}

// Connect creates the store when MINIO_ENDPOINT is configured; otherwise
// it returns nil and mirroring is skipped.
func Connect(cfg *config.Config) (*ArtifactStore, error) {
	if cfg.MinioEndpoint == "" {
		return nil, nil
	}

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Info("created artifact bucket", logger.String("bucket", cfg.MinioBucket))
	}

	return &ArtifactStore{client: client, bucket: cfg.MinioBucket}, nil
}

// Mirror uploads an artifact under <content_type>/<generation_id><ext>.
func (s *ArtifactStore) Mirror(ctx context.Context, contentType model.ContentType, generationID, ext string, data []byte) error {
	if s == nil {
		return nil
	}

	objectName := fmt.Sprintf("%s/%s%s", contentType, generationID, ext)
	_, err := s.client.PutObject(ctx, s.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: mimeFor(ext)})
	if err != nil {
		return fmt.Errorf("upload %s: %w", objectName, err)
	}

	logger.Info("artifact mirrored",
		logger.String("bucket", s.bucket),
		logger.String("object", objectName),
		logger.Int("bytes", len(data)))
	return nil
}

func mimeFor(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".mp4":
		return "video/mp4"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
