package track

import (
	"testing"

	"github.com/hazadus/go-vibes/internal/catalog"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	c, err := catalog.Mock()
	if err != nil {
		t.Fatalf("Ошибка загрузки встроенного каталога: %v", err)
	}
	return NewManager(c)
}

func TestManagerDefaults(t *testing.T) {
	m := newTestManager(t)

	if !m.Query().IsDefault() {
		t.Errorf("Ожидалось состояние по умолчанию, получено %+v", m.Query())
	}
	if len(m.Visible()) != 12 {
		t.Fatalf("Ожидалось 12 видимых треков, получено %d", len(m.Visible()))
	}
	if m.Visible()[0].ID != "1" {
		t.Errorf("Первым по умолчанию должен быть самый новый трек, получено %s", m.Visible()[0].ID)
	}
	if len(m.ListTracks()) != 12 {
		t.Errorf("ListTracks должен возвращать весь каталог")
	}
}

func TestManagerSearch(t *testing.T) {
	m := newTestManager(t)

	m.SetQuery("burna")
	visible := m.Visible()
	if len(visible) != 1 || visible[0].Title != "Last Last" {
		t.Errorf("Поиск по исполнителю вернул %v", ids(visible))
	}

	m.SetQuery("lagos")
	if len(m.Visible()) != 1 || m.Visible()[0].ID != "1" {
		t.Errorf("Поиск по альбому вернул %v", ids(m.Visible()))
	}

	m.SetQuery("nothing-matches")
	if len(m.Visible()) != 0 {
		t.Errorf("Ожидался пустой список, получено %d", len(m.Visible()))
	}
}

func TestManagerToggleGenre(t *testing.T) {
	m := newTestManager(t)

	m.ToggleGenre("Amapiano")
	if !m.IsGenreSelected("Amapiano") {
		t.Fatal("Жанр должен быть выбран")
	}
	got := ids(m.Visible())
	if len(got) != 2 || got[0] != "10" || got[1] != "12" {
		t.Errorf("Фильтр Amapiano вернул %v", got)
	}

	m.ToggleGenre("Funk")
	if len(m.Visible()) != 3 {
		t.Errorf("Жанры должны объединяться, получено %v", ids(m.Visible()))
	}

	m.ToggleGenre("Amapiano")
	if m.IsGenreSelected("Amapiano") {
		t.Error("Повторное переключение должно снимать жанр")
	}
	if got := ids(m.Visible()); len(got) != 1 || got[0] != "7" {
		t.Errorf("Фильтр Funk вернул %v", got)
	}

	m.ClearGenres()
	if len(m.Visible()) != 12 {
		t.Errorf("После очистки жанров должен быть виден весь каталог")
	}
}

func TestManagerSortAndReset(t *testing.T) {
	m := newTestManager(t)

	if key := m.CycleSort(); key != SortOldest {
		t.Fatalf("Ожидалась сортировка oldest, получено %s", key)
	}
	if m.Visible()[0].ID != "12" {
		t.Errorf("Первым в oldest должен быть трек 12, получено %s", m.Visible()[0].ID)
	}

	m.SetSort(SortMostReacted)
	top := m.Visible()[:3]
	// 39 реакций у треков 2, 4 и 12, порядок каталога сохраняется
	if top[0].ID != "2" || top[1].ID != "4" || top[2].ID != "12" {
		t.Errorf("Неверный порядок most-reacted: %v", ids(top))
	}

	m.SetQuery("a")
	m.ToggleGenre("Pop")
	m.Reset()
	if !m.Query().IsDefault() {
		t.Errorf("После сброса ожидалось состояние по умолчанию, получено %+v", m.Query())
	}
	if len(m.Visible()) != 12 {
		t.Errorf("После сброса должен быть виден весь каталог")
	}
}

func TestManagerQueryIsCopy(t *testing.T) {
	m := newTestManager(t)
	m.ToggleGenre("Pop")

	q := m.Query()
	q.Genres[0] = "Rock"

	if !m.IsGenreSelected("Pop") {
		t.Error("Изменение копии не должно влиять на состояние менеджера")
	}
}

func TestManagerApply(t *testing.T) {
	m := newTestManager(t)
	m.Apply(Query{Text: "night", Genres: []string{"R&B"}})

	got := ids(m.Visible())
	if len(got) != 1 || got[0] != "9" {
		t.Errorf("Apply вернул %v", got)
	}
	if m.Query().Sort != SortNewest {
		t.Errorf("Пустая сортировка должна стать newest, получено %s", m.Query().Sort)
	}
}
