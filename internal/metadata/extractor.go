// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/gopxl/beep/mp3"
)

// UnknownArtist исполнитель для файлов без тегов
const UnknownArtist = "Unknown Artist"

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artists []string
	Title   string
	Album   string
	Year    int
	Genres  []string
}

// FileInfo содержит информацию о файле
type FileInfo struct {
	Size     int64
	Duration time.Duration
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из ID3 тегов.
// Если тегов нет, метаданные строятся по имени файла source
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return e.getDefaultMetadata(source)
	}

	m, err := tag.ReadFrom(reader)
	if err != nil {
		return e.getDefaultMetadata(source)
	}

	result := e.getDefaultMetadata(source)
	if artists := SplitArtists(m.Artist()); len(artists) > 0 {
		result.Artists = artists
	}
	if title := strings.TrimSpace(m.Title()); title != "" {
		result.Title = title
	}
	result.Album = strings.TrimSpace(m.Album())
	result.Year = m.Year()
	result.Genres = splitList(m.Genre())
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка открытия файла")
	}
	defer file.Close()

	streamer, format, err := mp3.Decode(file)
	if err != nil {
		return 0, errors.Wrap(err, "ошибка декодирования MP3")
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// GetFileInfo получает информацию о файле (размер и длительность)
func (e *Extractor) GetFileInfo(filePath string) (*FileInfo, error) {
	fileInfo, err := os.Stat(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения информации о файле")
	}

	duration, err := e.GetDuration(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения длительности")
	}

	return &FileInfo{
		Size:     fileInfo.Size(),
		Duration: duration,
	}, nil
}

// SplitArtists разбивает строку исполнителей вида "A, B & C" на список
func SplitArtists(s string) []string {
	s = strings.ReplaceAll(s, " & ", ",")
	s = strings.ReplaceAll(s, " feat. ", ",")
	s = strings.ReplaceAll(s, " ft. ", ",")
	return splitList(s)
}

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == '/'
	})
	result := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			result = append(result, f)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		artists := SplitArtists(parts[0])
		if len(artists) == 0 {
			artists = []string{UnknownArtist}
		}
		return TrackMetadata{
			Artists: artists,
			Title:   strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return TrackMetadata{
		Artists: []string{UnknownArtist},
		Title:   nameWithoutExt,
	}
}
