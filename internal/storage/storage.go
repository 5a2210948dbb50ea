package storage

import (
	"context"
	"errors"

	"github.com/Totarae/openelex/internal/model"
)

// ErrNotFound документ не найден
var ErrNotFound = errors.New("document not found")

// Storage определяет интерфейс для хранения скачанных документов.
type Storage interface {
	// Save сохраняет документ, повторное сохранение с тем же ключом перезаписывает его.
	Save(ctx context.Context, doc *model.Document) error
	// Get возвращает документ по ключу.
	Get(ctx context.Context, key string) (*model.Document, error)
	// List возвращает документы юрисдикции в порядке сохранения.
	List(ctx context.Context, jurisdiction string) ([]*model.Document, error)
}
