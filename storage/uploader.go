package storage

import (
	"context"
	"io"
)

// Типы содержимого объектов архива.
const (
	ContentTypePGN  = "application/x-chess-pgn"
	ContentTypeJSON = "application/json"
)

// UploadResult описывает сохранённый объект. Location - публичный URL.
type UploadResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	ETag     string `json:"etag,omitempty"`
}

// FileUploader - объектное хранилище архива (R2 в проде, память в тестах).
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	// Delete is idempotent: a missing key is not an error.
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}
