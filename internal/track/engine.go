// Package track содержит фильтрацию и сортировку треков плейлиста
package track

import (
	"cmp"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hazadus/go-vibes/internal/catalog"
)

// ErrUnknownSort возвращается для неизвестного ключа сортировки
var ErrUnknownSort = errors.New("неизвестный порядок сортировки")

// SortKey порядок сортировки видимого списка
type SortKey string

const (
	// SortNewest сначала недавно добавленные
	SortNewest SortKey = "newest"
	// SortOldest сначала давно добавленные
	SortOldest SortKey = "oldest"
	// SortMostReacted по сумме реакций, по убыванию
	SortMostReacted SortKey = "most-reacted"
	// SortAZ по названию с учетом локали
	SortAZ SortKey = "a-z"
)

var sortKeys = []SortKey{SortNewest, SortOldest, SortMostReacted, SortAZ}

// SortKeys возвращает все ключи сортировки в порядке переключения
func SortKeys() []SortKey {
	return slices.Clone(sortKeys)
}

// ParseSortKey разбирает ключ сортировки. Пустая строка означает SortNewest
func ParseSortKey(s string) (SortKey, error) {
	if s == "" {
		return SortNewest, nil
	}
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(sortKeys, key) {
		return "", errors.Wrapf(ErrUnknownSort, "%q", s)
	}
	return key, nil
}

func (k SortKey) String() string {
	return string(k)
}

// Label возвращает подпись для отображения
func (k SortKey) Label() string {
	switch k {
	case SortOldest:
		return "Oldest"
	case SortMostReacted:
		return "Most Reacted"
	case SortAZ:
		return "A → Z"
	default:
		return "Newest"
	}
}

// Next возвращает следующий ключ сортировки по кругу
func (k SortKey) Next() SortKey {
	idx := slices.Index(sortKeys, k)
	return sortKeys[(idx+1)%len(sortKeys)]
}

// Query состояние поиска, фильтра по жанрам и сортировки.
// Пустой набор жанров означает отсутствие фильтра
type Query struct {
	Text   string
	Genres []string
	Sort   SortKey
}

// DefaultQuery возвращает состояние после сброса
func DefaultQuery() Query {
	return Query{Sort: SortNewest}
}

// IsDefault проверяет, совпадает ли состояние с состоянием после сброса
func (q Query) IsDefault() bool {
	return q.Text == "" && len(q.Genres) == 0 && (q.Sort == SortNewest || q.Sort == "")
}

// MatchesSearch проверяет вхождение текста без учета регистра в название, исполнителей или альбом
func MatchesSearch(t catalog.Track, text string) bool {
	if text == "" {
		return true
	}
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	for _, artist := range t.Artists {
		if strings.Contains(strings.ToLower(artist), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(t.Album), needle)
}

// MatchesGenres проверяет пересечение жанров трека с выбранными
func MatchesGenres(t catalog.Track, genres []string) bool {
	if len(genres) == 0 {
		return true
	}
	for _, g := range genres {
		if t.HasGenre(g) {
			return true
		}
	}
	return false
}

// Visible возвращает отфильтрованный и отсортированный список треков.
// Входной срез не изменяется, при равенстве ключей сохраняется порядок каталога
func Visible(tracks []catalog.Track, q Query) []catalog.Track {
	out := make([]catalog.Track, 0, len(tracks))
	for _, t := range tracks {
		if MatchesSearch(t, q.Text) && MatchesGenres(t, q.Genres) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, comparator(q.Sort))
	return out
}

func comparator(key SortKey) func(a, b catalog.Track) int {
	switch key {
	case SortOldest:
		return func(a, b catalog.Track) int {
			return a.AddedAt.Compare(b.AddedAt)
		}
	case SortMostReacted:
		return func(a, b catalog.Track) int {
			return cmp.Compare(b.Reactions.Total(), a.Reactions.Total())
		}
	case SortAZ:
		// collate.Collator хранит буферы, поэтому создается на каждую сортировку
		col := collate.New(language.English)
		return func(a, b catalog.Track) int {
			return col.CompareString(a.Title, b.Title)
		}
	default:
		return func(a, b catalog.Track) int {
			return b.AddedAt.Compare(a.AddedAt)
		}
	}
}
