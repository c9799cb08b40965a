package track

import (
	"slices"

	"github.com/hazadus/go-vibes/internal/catalog"
)

// Manager хранит состояние фильтров и видимый список треков
type Manager struct {
	catalog *catalog.Catalog
	tracks  []catalog.Track
	query   Query
	visible []catalog.Track
}

// NewManager создает новый экземпляр Manager
func NewManager(c *catalog.Catalog) *Manager {
	m := &Manager{
		catalog: c,
		tracks:  c.Tracks(),
		query:   DefaultQuery(),
	}
	m.refresh()
	return m
}

// Catalog возвращает исходный каталог
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// Query возвращает копию текущего состояния фильтров
func (m *Manager) Query() Query {
	q := m.query
	q.Genres = slices.Clone(m.query.Genres)
	return q
}

// SetQuery задает строку поиска
func (m *Manager) SetQuery(text string) {
	if m.query.Text == text {
		return
	}
	m.query.Text = text
	m.refresh()
}

// ToggleGenre включает или выключает жанр в фильтре
func (m *Manager) ToggleGenre(genre string) {
	if idx := slices.Index(m.query.Genres, genre); idx >= 0 {
		m.query.Genres = slices.Delete(m.query.Genres, idx, idx+1)
	} else {
		m.query.Genres = append(m.query.Genres, genre)
	}
	m.refresh()
}

// IsGenreSelected проверяет, выбран ли жанр
func (m *Manager) IsGenreSelected(genre string) bool {
	return slices.Contains(m.query.Genres, genre)
}

// ClearGenres снимает фильтр по жанрам
func (m *Manager) ClearGenres() {
	m.query.Genres = nil
	m.refresh()
}

// SetSort задает порядок сортировки
func (m *Manager) SetSort(key SortKey) {
	m.query.Sort = key
	m.refresh()
}

// CycleSort переключает сортировку на следующую
func (m *Manager) CycleSort() SortKey {
	m.SetSort(m.query.Sort.Next())
	return m.query.Sort
}

// Apply заменяет состояние фильтров целиком
func (m *Manager) Apply(q Query) {
	m.query = Query{Text: q.Text, Genres: slices.Clone(q.Genres), Sort: q.Sort}
	if m.query.Sort == "" {
		m.query.Sort = SortNewest
	}
	m.refresh()
}

// Reset сбрасывает поиск, жанры и сортировку
func (m *Manager) Reset() {
	m.query = DefaultQuery()
	m.refresh()
}

// Visible возвращает видимый список треков. Срез пересоздается при каждом изменении фильтров
// и не должен изменяться вызывающим кодом
func (m *Manager) Visible() []catalog.Track {
	return m.visible
}

// ListTracks возвращает все треки в порядке каталога
func (m *Manager) ListTracks() []catalog.Track {
	return m.tracks
}

func (m *Manager) refresh() {
	m.visible = Visible(m.tracks, m.query)
}
