package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"medslot/internal/domain"
	"medslot/internal/storage"
)

const defaultPresignTTL = 15 * time.Minute

// documentStore publishes generated files to object storage when one is
// configured; otherwise the content is handed back to the caller inline.
type documentStore struct {
	storage    storage.FileStorage
	presignTTL time.Duration
}

func newDocumentStore(fileStorage storage.FileStorage, presignTTL time.Duration) *documentStore {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &documentStore{storage: fileStorage, presignTTL: presignTTL}
}

func (d *documentStore) publish(ctx context.Context, folder, fileName, contentType string, content []byte) (*domain.Document, error) {
	doc := &domain.Document{FileName: fileName, Content: content}
	if d == nil || d.storage == nil {
		return doc, nil
	}

	key, err := d.storage.UploadFile(ctx, content, path.Join(folder, fileName), contentType)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки документа: %w", err)
	}

	url, err := d.storage.GetPresignedURL(ctx, key, d.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения ссылки на документ: %w", err)
	}

	doc.URL = url
	return doc, nil
}
