package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/ports/storage"
	"github.com/minio/minio-go/v7"
)

// Client обёртка над minio.Client для работы с S3
type Client struct {
	client  *minio.Client
	bucket  string
	baseURL string
	log     *slog.Logger
}

// NewClient создаёт новый S3 клиент
func NewClient(client *minio.Client, cfg *Config, log *slog.Logger) storage.IFileStorage {
	return &Client{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.publicBaseURL(), "/"),
		log:     log,
	}
}

// Upload кладёт файл в bucket и возвращает публичную ссылку на него
func (c *Client) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	_, err := c.client.PutObject(ctx, c.bucket, path, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		c.log.Error("failed to upload object",
			"error", err,
			"path", path,
			"size", len(data),
		)
		return "", fmt.Errorf("failed to upload object %s: %w", path, err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	c.log.Debug("object uploaded",
		"path", path,
		"size", len(data),
		"url", url,
	)
	return url, nil
}

// Delete удаляет файл из bucket
func (c *Client) Delete(ctx context.Context, path string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, path, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object %s: %w", path, err)
	}
	return nil
}
