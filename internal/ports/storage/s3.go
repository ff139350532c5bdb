package storage

import "context"

// IFileStorage интерфейс для работы с S3-совместимым хранилищем (MinIO).
// Используется для выкладки фото image-to-video по публичному URL
type IFileStorage interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) (publicURL string, err error)
	Delete(ctx context.Context, path string) error
}
