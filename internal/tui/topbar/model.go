// Package topbar содержит заголовок плейлиста, строку поиска и фильтры по жанрам
package topbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/track"
	"github.com/hazadus/go-vibes/internal/utils"
)

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	subtitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	sortStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("170"))
	chipStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Padding(0, 1)
	activeChip     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 1)
	cursorChip     = lipgloss.NewStyle().Underline(true)
	filterStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	containerStyle = lipgloss.NewStyle().Padding(1, 2, 0, 2)
)

// Model состояние верхней панели
type Model struct {
	title      string
	subtitle   string
	stats      catalog.Stats
	genres     []string
	dateLayout string
	now        func() time.Time

	input        textinput.Model
	chipsFocused bool
	chipCursor   int
	width        int
}

// NewModel создает верхнюю панель для каталога
func NewModel(title, subtitle string, c *catalog.Catalog, dateLayout string) *Model {
	input := textinput.New()
	input.Prompt = "🔍 "
	input.Placeholder = "Поиск по названию, исполнителю или альбому (/)"
	input.CharLimit = 128

	return &Model{
		title:      title,
		subtitle:   subtitle,
		stats:      c.Stats(),
		genres:     c.Genres(),
		dateLayout: dateLayout,
		now:        time.Now,
		input:      input,
	}
}

// SetWidth задает ширину панели
func (m *Model) SetWidth(width int) {
	m.width = width
	m.input.Width = max(10, width-10)
}

// Searching сообщает, находится ли фокус в строке поиска
func (m *Model) Searching() bool {
	return m.input.Focused()
}

// FocusSearch переводит фокус в строку поиска
func (m *Model) FocusSearch() tea.Cmd {
	m.chipsFocused = false
	return m.input.Focus()
}

// BlurSearch убирает фокус из строки поиска, текст сохраняется
func (m *Model) BlurSearch() {
	m.input.Blur()
}

// Value возвращает текст поиска
func (m *Model) Value() string {
	return m.input.Value()
}

// SetValue заменяет текст поиска
func (m *Model) SetValue(s string) {
	m.input.SetValue(s)
}

// Genres возвращает жанры каталога в порядке отображения
func (m *Model) Genres() []string {
	return m.genres
}

// ChipsFocused сообщает, выбираются ли сейчас жанры
func (m *Model) ChipsFocused() bool {
	return m.chipsFocused
}

// ToggleChips включает или выключает выбор жанров
func (m *Model) ToggleChips() {
	if len(m.genres) == 0 {
		m.chipsFocused = false
		return
	}
	m.chipsFocused = !m.chipsFocused
	if m.chipsFocused {
		m.input.Blur()
	}
}

// MoveChip сдвигает курсор по жанрам без перехода по кругу
func (m *Model) MoveChip(delta int) {
	if len(m.genres) == 0 {
		return
	}
	m.chipCursor = min(max(m.chipCursor+delta, 0), len(m.genres)-1)
}

// CurrentChip возвращает жанр под курсором
func (m *Model) CurrentChip() (string, bool) {
	if m.chipCursor < 0 || m.chipCursor >= len(m.genres) {
		return "", false
	}
	return m.genres[m.chipCursor], true
}

// Update передает сообщение строке поиска, пока она в фокусе
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if !m.input.Focused() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View отображает заголовок, статистику, поиск и фильтры для текущего запроса
func (m *Model) View(q track.Query, visible int) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🎧 " + m.title))
	if m.subtitle != "" {
		b.WriteString("  ")
		b.WriteString(subtitleStyle.Render(m.subtitle))
	}
	b.WriteString("\n")
	b.WriteString(statsStyle.Render(m.statsLine()))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")

	b.WriteString(m.chipsLine(q))
	b.WriteString("\n")

	sort := sortStyle.Render(fmt.Sprintf("Сортировка: %s", q.Sort.Label()))
	count := statsStyle.Render(fmt.Sprintf("Показано %d из %d", visible, m.stats.Tracks))
	b.WriteString(sort + "  " + count)

	if len(q.Genres) > 0 {
		b.WriteString("\n")
		b.WriteString(filterStyle.Render(fmt.Sprintf("Фильтры: %s • c: Clear all", strings.Join(q.Genres, ", "))))
	}

	return containerStyle.Render(b.String())
}

func (m *Model) statsLine() string {
	parts := []string{
		fmt.Sprintf("%d треков", m.stats.Tracks),
		fmt.Sprintf("%d реакций", m.stats.Reactions),
		fmt.Sprintf("%d участников", m.stats.Contributors),
	}
	if !m.stats.LastAdded.IsZero() {
		parts = append(parts, "Last added "+utils.FormatAddedTimeLayout(m.stats.LastAdded, m.now(), m.dateLayout))
	}
	return strings.Join(parts, " • ")
}

func (m *Model) chipsLine(q track.Query) string {
	if len(m.genres) == 0 {
		return statsStyle.Render("Жанры не указаны")
	}

	chips := make([]string, 0, len(m.genres))
	for i, g := range m.genres {
		style := chipStyle
		for _, selected := range q.Genres {
			if selected == g {
				style = activeChip
				break
			}
		}
		if m.chipsFocused && i == m.chipCursor {
			style = style.Inherit(cursorChip)
		}
		chips = append(chips, style.Render(g))
	}

	line := strings.Join(chips, " ")
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width - 4).Render(line)
	}
	return line
}
