// Package catalog содержит модель трека и неизменяемый каталог плейлиста
package catalog

import (
	_ "embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-vibes/internal/utils"
)

//go:embed mock.yaml
var mockData []byte

// ErrNotFound возвращается, если трек с указанным ID отсутствует в каталоге
var ErrNotFound = errors.New("трек не найден")

// AddedBy описывает участника, добавившего трек
type AddedBy struct {
	Name   string `yaml:"name" json:"name"`
	Avatar string `yaml:"avatar,omitempty" json:"avatar,omitempty"`
}

// Reactions счетчики реакций на трек
type Reactions struct {
	Like  int `yaml:"like" json:"like"`
	Fire  int `yaml:"fire" json:"fire"`
	Heart int `yaml:"heart" json:"heart"`
}

// Total возвращает сумму всех реакций
func (r Reactions) Total() int {
	return r.Like + r.Fire + r.Heart
}

// Track запись о треке в каталоге
type Track struct {
	ID         string    `yaml:"id" json:"id"`
	Title      string    `yaml:"title" json:"title"`
	Artists    []string  `yaml:"artists" json:"artists"`
	Album      string    `yaml:"album" json:"album"`
	Year       int       `yaml:"year,omitempty" json:"year,omitempty"`
	Genres     []string  `yaml:"genres" json:"genres"`
	DurationMS int64     `yaml:"duration_ms" json:"duration_ms"`
	AudioURL   string    `yaml:"audio_url" json:"audio_url"`
	CoverURL   string    `yaml:"cover_url,omitempty" json:"cover_url,omitempty"`
	SpotifyURL string    `yaml:"spotify_url,omitempty" json:"spotify_url,omitempty"`
	AddedAt    time.Time `yaml:"added_at" json:"added_at"`
	AddedBy    AddedBy   `yaml:"added_by" json:"added_by"`
	Reactions  Reactions `yaml:"reactions" json:"reactions"`
}

// HasGenre проверяет, относится ли трек к указанному жанру
func (t Track) HasGenre(genre string) bool {
	return slices.Contains(t.Genres, genre)
}

// ArtistLine возвращает исполнителей через запятую в порядке отображения
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Stats сводная информация о каталоге для заголовка плейлиста
type Stats struct {
	Tracks       int       `json:"tracks"`
	Reactions    int       `json:"reactions"`
	Contributors int       `json:"contributors"`
	LastAdded    time.Time `json:"last_added"`
}

// Catalog упорядоченный набор треков. Просмотр и плеер получают только копии треков
type Catalog struct {
	tracks []Track
}

type catalogFile struct {
	Tracks []Track `yaml:"tracks"`
}

// New создает каталог из списка треков, проверяя уникальность идентификаторов
func New(tracks []Track) (*Catalog, error) {
	if err := validate(tracks); err != nil {
		return nil, err
	}
	return &Catalog{tracks: slices.Clone(tracks)}, nil
}

// Mock возвращает встроенный демонстрационный каталог
func Mock() (*Catalog, error) {
	c, err := Parse(mockData)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка разбора встроенного каталога")
	}
	return c, nil
}

// Parse разбирает каталог в формате YAML
func Parse(data []byte) (*Catalog, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return &Catalog{}, nil
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "ошибка разбора данных")
	}
	return New(f.Tracks)
}

// Load загружает каталог из файла. Пустой путь или отсутствующий файл дают встроенный каталог
func Load(filePath string) (*Catalog, error) {
	if filePath == "" {
		return Mock()
	}
	c, err := readFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return Mock()
	}
	return c, err
}

// LoadFile загружает каталог из файла для редактирования. Отсутствующий файл дает пустой каталог
func LoadFile(filePath string) (*Catalog, error) {
	c, err := readFile(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return &Catalog{}, nil
	}
	return c, err
}

func readFile(filePath string) (*Catalog, error) {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "ошибка чтения файла каталога %s", path)
	}
	return Parse(data)
}

// Save сохраняет каталог в файл
func (c *Catalog) Save(filePath string) error {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(catalogFile{Tracks: c.tracks})
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации каталога")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "ошибка создания каталога для файла")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, "ошибка записи файла каталога")
	}
	return nil
}

// Len возвращает количество треков
func (c *Catalog) Len() int {
	return len(c.tracks)
}

// Tracks возвращает копию списка треков в порядке каталога
func (c *Catalog) Tracks() []Track {
	return slices.Clone(c.tracks)
}

// TrackByID возвращает трек по ID
func (c *Catalog) TrackByID(id string) (Track, error) {
	for _, t := range c.tracks {
		if t.ID == id {
			return t, nil
		}
	}
	return Track{}, errors.Wrapf(ErrNotFound, "id %q", id)
}

// Genres возвращает отсортированный список всех жанров каталога
func (c *Catalog) Genres() []string {
	seen := make(map[string]struct{})
	genres := make([]string, 0)
	for _, t := range c.tracks {
		for _, g := range t.Genres {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			genres = append(genres, g)
		}
	}
	sort.Strings(genres)
	return genres
}

// Stats считает количество треков, реакций и участников
func (c *Catalog) Stats() Stats {
	contributors := make(map[string]struct{})
	stats := Stats{Tracks: len(c.tracks)}
	for _, t := range c.tracks {
		stats.Reactions += t.Reactions.Total()
		if t.AddedBy.Name != "" {
			contributors[t.AddedBy.Name] = struct{}{}
		}
		if t.AddedAt.After(stats.LastAdded) {
			stats.LastAdded = t.AddedAt
		}
	}
	stats.Contributors = len(contributors)
	return stats
}

// AddTrack добавляет трек в конец каталога. Пустой ID генерируется автоматически
func (c *Catalog) AddTrack(track Track) (Track, error) {
	if track.ID == "" {
		track.ID = c.nextID()
	}
	candidate := append(slices.Clone(c.tracks), track)
	if err := validate(candidate); err != nil {
		return Track{}, err
	}
	c.tracks = candidate
	return track, nil
}

// RemoveTrack удаляет трек по ID и возвращает удаленную запись
func (c *Catalog) RemoveTrack(id string) (Track, error) {
	idx := slices.IndexFunc(c.tracks, func(t Track) bool { return t.ID == id })
	if idx < 0 {
		return Track{}, errors.Wrapf(ErrNotFound, "id %q", id)
	}
	removed := c.tracks[idx]
	c.tracks = slices.Delete(slices.Clone(c.tracks), idx, idx+1)
	return removed, nil
}

// nextID подбирает свободный идентификатор вида trk-N
func (c *Catalog) nextID() string {
	for n := len(c.tracks) + 1; ; n++ {
		id := fmt.Sprintf("trk-%d", n)
		if !slices.ContainsFunc(c.tracks, func(t Track) bool { return t.ID == id }) {
			return id
		}
	}
}

func validate(tracks []Track) error {
	seen := make(map[string]int, len(tracks))
	for i, t := range tracks {
		if t.ID == "" {
			return errors.Newf("трек #%d (%q): пустой id", i+1, t.Title)
		}
		if prev, ok := seen[t.ID]; ok {
			return errors.Newf("трек %q: id повторяется (записи #%d и #%d)", t.ID, prev+1, i+1)
		}
		seen[t.ID] = i
		if t.DurationMS < 0 {
			return errors.Newf("трек %q: отрицательная длительность %d", t.ID, t.DurationMS)
		}
		if t.Reactions.Like < 0 || t.Reactions.Fire < 0 || t.Reactions.Heart < 0 {
			return errors.Newf("трек %q: отрицательный счетчик реакций", t.ID)
		}
	}
	return nil
}
