// Package uploader предоставляет функционал для загрузки аудиофайлов в хранилище и добавления их в каталог
package uploader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/cockroachdb/errors"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/metadata"
)

// Storage хранилище, в которое загружаются аудиофайлы
type Storage interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
}

// MetadataExtractor извлекает метаданные и информацию о файле
type MetadataExtractor interface {
	ExtractFromFile(filePath string) metadata.TrackMetadata
	GetFileInfo(filePath string) (*metadata.FileInfo, error)
}

// Service управляет процессом загрузки файлов
type Service struct {
	storage   Storage
	extractor MetadataExtractor
	catalog   *catalog.Catalog
	now       func() time.Time
}

// NewService создает новый сервис загрузки
func NewService(storage Storage, c *catalog.Catalog) *Service {
	return newService(storage, metadata.NewExtractor(), c)
}

func newService(storage Storage, extractor MetadataExtractor, c *catalog.Catalog) *Service {
	return &Service{
		storage:   storage,
		extractor: extractor,
		catalog:   c,
		now:       time.Now,
	}
}

// UploadResult содержит результат загрузки
type UploadResult struct {
	URL      string
	Key      string
	Metadata metadata.TrackMetadata
	FileInfo *metadata.FileInfo
}

// UploadFile загружает файл в хранилище, сообщая о прогрессе через progressCallback
func (s *Service) UploadFile(ctx context.Context, filePath string, progressCallback func(int64)) (*UploadResult, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, errors.Newf("файл не найден: %s", filePath)
	}

	fileInfo, err := s.extractor.GetFileInfo(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения информации о файле")
	}

	trackMetadata := s.extractor.ExtractFromFile(filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка открытия файла")
	}
	defer file.Close()

	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       fileInfo.Size,
			OnProgress: progressCallback,
		}
	}

	key := ObjectKey(filePath)
	url, err := s.storage.UploadFile(ctx, reader, key)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка загрузки в хранилище")
	}

	return &UploadResult{
		URL:      url,
		Key:      key,
		Metadata: trackMetadata,
		FileInfo: fileInfo,
	}, nil
}

// AddToCatalog добавляет загруженный трек в каталог
func (s *Service) AddToCatalog(result *UploadResult, addedBy catalog.AddedBy) (catalog.Track, error) {
	t := catalog.Track{
		Title:    result.Metadata.Title,
		Artists:  result.Metadata.Artists,
		Album:    result.Metadata.Album,
		Year:     result.Metadata.Year,
		Genres:   result.Metadata.Genres,
		AudioURL: result.URL,
		AddedAt:  s.now().UTC(),
		AddedBy:  addedBy,
	}
	if result.FileInfo != nil {
		t.DurationMS = result.FileInfo.Duration.Milliseconds()
	}

	added, err := s.catalog.AddTrack(t)
	if err != nil {
		return catalog.Track{}, errors.Wrap(err, "ошибка добавления трека в каталог")
	}
	return added, nil
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}

// ObjectKey формирует ключ объекта из имени файла: пробелы и служебные символы заменяются дефисами
func ObjectKey(filePath string) string {
	fileName := filepath.Base(filePath)
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	var b strings.Builder
	dash := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteRune('-')
			dash = true
		}
	}

	key := strings.TrimSuffix(b.String(), "-")
	if key == "" {
		key = "track"
	}
	return key + ".mp3"
}
