// Package details содержит экран подробностей о треке для TUI
package details

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/utils"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	footerStyle = lipgloss.NewStyle().Padding(0, 2)
)

// GoBackMsg отправляется при закрытии подробностей
type GoBackMsg struct{}

// Model представляет экран подробностей о треке
type Model struct {
	track      catalog.Track
	dateLayout string
	now        func() time.Time
	width      int
}

// NewModel создает экран подробностей
func NewModel(t catalog.Track, dateLayout string) *Model {
	return &Model{
		track:      t,
		dateLayout: dateLayout,
		now:        time.Now,
	}
}

// Track возвращает отображаемый трек
func (m *Model) Track() catalog.Track {
	return m.track
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "d":
			return m, func() tea.Msg {
				return GoBackMsg{}
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
	}

	return m, nil
}

// View отображает модель
func (m *Model) View() string {
	t := m.track
	var b strings.Builder

	b.WriteString(titleStyle.Render(t.Title))
	b.WriteString("\n")

	year := ""
	if t.Year > 0 {
		year = fmt.Sprint(t.Year)
	}
	added := ""
	if !t.AddedAt.IsZero() {
		added = fmt.Sprintf("%s (%s)", t.AddedAt.Format(m.layout()+" 15:04"),
			utils.FormatAddedTimeLayout(t.AddedAt, m.now(), m.dateLayout))
	}

	fields := []struct {
		label string
		value string
	}{
		{"Исполнители:", t.ArtistLine()},
		{"Альбом:", t.Album},
		{"Год:", year},
		{"Жанры:", strings.Join(t.Genres, ", ")},
		{"Длительность:", utils.FormatDuration(t.DurationMS)},
		{"Добавил:", t.AddedBy.Name},
		{"Добавлен:", added},
		{"Реакции:", fmt.Sprintf("👍 %d  🔥 %d  💜 %d", t.Reactions.Like, t.Reactions.Fire, t.Reactions.Heart)},
		{"Spotify:", t.SpotifyURL},
		{"Аудио:", t.AudioURL},
		{"ID:", t.ID},
	}

	valueWidth := 0
	if m.width > 0 {
		valueWidth = max(10, m.width-lipgloss.Width(labelStyle.Render(""))-6)
	}

	for _, f := range fields {
		if f.value == "" {
			continue
		}
		value := f.value
		if valueWidth > 0 {
			value = utils.TruncateString(value, valueWidth)
		}
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(" ")
		b.WriteString(valueStyle.Render(value))
		b.WriteString("\n")
	}

	actions := "Enter: воспроизвести • y: копировать ссылку • Y: ссылка на плейлист"
	if t.SpotifyURL != "" {
		actions += " • o: открыть в Spotify"
	}
	b.WriteString(helpStyle.Render(actions + " • esc: назад"))

	return footerStyle.Render(b.String())
}

func (m *Model) layout() string {
	if m.dateLayout == "" {
		return utils.DateLayout
	}
	return m.dateLayout
}
