// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/playback"
	"github.com/hazadus/go-vibes/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().Bold(true)
	metaStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	currentItemStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	emptyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0, 1, 4)
)

// TrackSelectedMsg отправляется при выборе трека для воспроизведения
type TrackSelectedMsg struct {
	Track catalog.Track
}

// TrackDetailsMsg отправляется при открытии подробностей о треке
type TrackDetailsMsg struct {
	Track catalog.Track
}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track catalog.Track
}

func (i trackItem) FilterValue() string {
	return i.track.Title
}

// rowState общие для всех строк данные о текущем воспроизведении
type rowState struct {
	currentID  string
	playing    bool
	dateLayout string
	now        func() time.Time
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct {
	state *rowState
}

func (d trackItemDelegate) Height() int                             { return 2 }
func (d trackItemDelegate) Spacing() int                            { return 1 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	t := i.track
	current := t.ID == d.state.currentID

	marker := "  "
	if current {
		marker = "⏸ "
		if d.state.playing {
			marker = "▶ "
		}
	}

	right := fmt.Sprintf("👍 %d  🔥 %d  💜 %d   %s",
		t.Reactions.Like, t.Reactions.Fire, t.Reactions.Heart, utils.FormatDuration(t.DurationMS))

	width := m.Width() - 6
	titleWidth := max(10, width-lipgloss.Width(right)-lipgloss.Width(marker)-2)
	title := utils.TruncateString(t.Title, titleWidth)
	gap := max(1, width-lipgloss.Width(marker)-lipgloss.Width(title)-lipgloss.Width(right))

	line1 := marker + titleStyle.Render(title) + strings.Repeat(" ", gap) + right
	line2 := "  " + metaStyle.Render(utils.TruncateString(subtitle(t, d.state), max(10, width-2)))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}
	if current {
		line1 = currentItemStyle.Render(line1)
	}

	fmt.Fprint(w, fn(line1+"\n"+line2))
}

// subtitle возвращает строку "исполнители • альбом (год) • добавил • когда"
func subtitle(t catalog.Track, state *rowState) string {
	parts := []string{t.ArtistLine()}

	album := t.Album
	if t.Year > 0 {
		album = fmt.Sprintf("%s (%d)", album, t.Year)
	}
	if strings.TrimSpace(album) != "" {
		parts = append(parts, album)
	}

	if t.AddedBy.Name != "" {
		parts = append(parts, t.AddedBy.Name)
	}
	if !t.AddedAt.IsZero() {
		parts = append(parts, utils.FormatAddedTimeLayout(t.AddedAt, state.now(), state.dateLayout))
	}
	return strings.Join(parts, " • ")
}

// Model представляет модель экрана списка треков
type Model struct {
	list  list.Model
	state *rowState
}

// NewModel создает новую модель списка треков
func NewModel(tracks []catalog.Track, dateLayout string) *Model {
	state := &rowState{dateLayout: dateLayout, now: time.Now}

	l := list.New(toItems(tracks), trackItemDelegate{state: state}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	l.Styles.PaginationStyle = paginationStyle

	return &Model{
		list:  l,
		state: state,
	}
}

func toItems(tracks []catalog.Track) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetTracks заменяет видимый список. Выделение остается на том же треке, если он виден
func (m *Model) SetTracks(tracks []catalog.Track) {
	selectedID := ""
	if t, ok := m.Selected(); ok {
		selectedID = t.ID
	}

	m.list.SetItems(toItems(tracks))

	idx := 0
	for i, t := range tracks {
		if t.ID == selectedID {
			idx = i
			break
		}
	}
	m.list.Select(idx)
}

// SetSession обновляет отметку текущего трека
func (m *Model) SetSession(s playback.Session) {
	m.state.currentID = ""
	if s.Track != nil {
		m.state.currentID = s.Track.ID
	}
	m.state.playing = s.IsPlaying
}

// SetSize задает размеры списка
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, max(height, 3))
}

// Selected возвращает трек под курсором
func (m *Model) Selected() (catalog.Track, bool) {
	item, ok := m.list.SelectedItem().(trackItem)
	if !ok {
		return catalog.Track{}, false
	}
	return item.track, true
}

// Len возвращает количество строк
func (m *Model) Len() int {
	return len(m.list.Items())
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			if t, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return TrackSelectedMsg{Track: t}
				}
			}
			return m, nil

		case "d":
			if t, ok := m.Selected(); ok {
				return m, func() tea.Msg {
					return TrackDetailsMsg{Track: t}
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if len(m.list.Items()) == 0 {
		return emptyStyle.Render("Ничего не найдено. Нажмите r, чтобы сбросить поиск и фильтры")
	}
	return m.list.View()
}
