package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Totarae/openelex/internal/model"
	"go.uber.org/zap"
)

// FileStore потокобезопасное хранилище документов в памяти
// с дозаписью в файл построчно в формате JSON.
type FileStore struct {
	mutex  sync.RWMutex
	data   map[string]*model.Document
	order  []string
	file   string
	logger *zap.Logger
}

// NewFileStore создаёт хранилище и загружает ранее сохранённые документы.
// Пустой путь означает хранение только в памяти.
func NewFileStore(file string, logger *zap.Logger) (*FileStore, error) {
	s := &FileStore{
		data:   make(map[string]*model.Document),
		file:   file,
		logger: logger,
	}
	if err := s.loadFromFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Save сохраняет документ в памяти и дописывает его в файл
func (s *FileStore) Save(_ context.Context, doc *model.Document) error {
	if doc == nil || doc.Key == "" {
		return fmt.Errorf("document key is empty")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := s.appendToFile(doc); err != nil {
		return fmt.Errorf("append document %s: %w", doc.Key, err)
	}
	s.put(doc)
	return nil
}

// Get возвращает документ по ключу
func (s *FileStore) Get(_ context.Context, key string) (*model.Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, ok := s.data[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	cp := *doc
	return &cp, nil
}

// List возвращает документы юрисдикции
func (s *FileStore) List(_ context.Context, jurisdiction string) ([]*model.Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var docs []*model.Document
	for _, key := range s.order {
		doc := s.data[key]
		if doc.Jurisdiction == jurisdiction {
			cp := *doc
			docs = append(docs, &cp)
		}
	}
	return docs, nil
}

func (s *FileStore) put(doc *model.Document) {
	if _, ok := s.data[doc.Key]; !ok {
		s.order = append(s.order, doc.Key)
	}
	cp := *doc
	s.data[doc.Key] = &cp
}

// loadFromFile загружает документы при старте, последняя запись побеждает
func (s *FileStore) loadFromFile() error {
	if s.file == "" {
		return nil
	}
	file, err := os.Open(s.file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Файл ещё не создан, это не ошибка
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)
	for scanner.Scan() {
		var doc model.Document
		if err := json.Unmarshal(scanner.Bytes(), &doc); err != nil {
			s.logger.Warn("Skipping corrupt document record", zap.String("file", s.file), zap.Error(err))
			continue
		}
		if doc.Key != "" {
			s.put(&doc)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.file, err)
	}

	s.logger.Info("Loaded documents from file",
		zap.Int("count", len(s.data)),
		zap.String("file", s.file),
	)
	return nil
}

// appendToFile добавляет новую запись в файл
func (s *FileStore) appendToFile(doc *model.Document) error {
	if s.file == "" {
		return nil
	}
	file, err := os.OpenFile(s.file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}
