// Package player содержит панель воспроизведения и полноэкранный плеер для TUI
package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-vibes/internal/playback"
	"github.com/hazadus/go-vibes/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	statusStyle = lipgloss.NewStyle().
			Bold(true)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	expandedStyle = lipgloss.NewStyle().Padding(1, 4)
)

// Model отображает состояние воспроизведения
type Model struct {
	progressBar progress.Model
	dateLayout  string
	now         func() time.Time
	width       int
}

// NewModel создает новую модель плеера
func NewModel(dateLayout string) *Model {
	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 40

	return &Model{
		progressBar: prog,
		dateLayout:  dateLayout,
		now:         time.Now,
	}
}

// SetWidth задает ширину, прогресс-бар растягивается до 60 символов
func (m *Model) SetWidth(width int) {
	m.width = width
	m.progressBar.Width = max(10, min(60, width-30))
}

// ViewCompact отображает панель воспроизведения под списком треков
func (m *Model) ViewCompact(s playback.Session) string {
	if !s.Active() {
		return barStyle.Render(trackInfoStyle.Render("Ничего не играет • Enter: воспроизвести выбранный трек"))
	}

	t := s.Track
	info := fmt.Sprintf("%s %s  %s",
		statusIcon(s.State),
		titleStyle.Render(utils.TruncateString(t.Title, 40)),
		trackInfoStyle.Render(utils.TruncateString(t.ArtistLine(), 30)),
	)
	return barStyle.Render(info + "\n" + m.progressLine(s))
}

// ViewExpanded отображает полноэкранный плеер
func (m *Model) ViewExpanded(s playback.Session) string {
	if !s.Active() {
		return expandedStyle.Render(fmt.Sprintf(
			"%s\n\n%s",
			titleStyle.Render("🎵 Воспроизведение"),
			controlsStyle.Render("Выберите трек в списке • e/esc: назад к списку"),
		))
	}

	t := s.Track

	title := titleStyle.Render("🎵 " + t.Title)
	var info strings.Builder
	fmt.Fprintf(&info, "🎤 %s\n", t.ArtistLine())
	album := t.Album
	if t.Year > 0 {
		album = fmt.Sprintf("%s (%d)", album, t.Year)
	}
	fmt.Fprintf(&info, "💿 %s\n", album)
	if len(t.Genres) > 0 {
		fmt.Fprintf(&info, "🏷  %s\n", strings.Join(t.Genres, ", "))
	}
	if t.AddedBy.Name != "" {
		added := t.AddedBy.Name
		if !t.AddedAt.IsZero() {
			added += " • " + utils.FormatAddedTimeLayout(t.AddedAt, m.now(), m.dateLayout)
		}
		fmt.Fprintf(&info, "🙋 %s\n", added)
	}
	fmt.Fprintf(&info, "👍 %d  🔥 %d  💜 %d", t.Reactions.Like, t.Reactions.Fire, t.Reactions.Heart)

	statusText := statusStyle.Render(fmt.Sprintf("%s %s", statusIcon(s.State), formatStatus(s.State)))

	controls := controlsStyle.Render(
		"Пробел: пауза/воспроизведение • n/p: следующий/предыдущий • ,/.: перемотка • e/esc: назад к списку",
	)

	return expandedStyle.Render(fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n\n%s",
		title,
		trackInfoStyle.Render(info.String()),
		statusText,
		m.progressLine(s),
		controls,
	))
}

// progressLine отображает прогресс-бар и время m:ss / m:ss
func (m *Model) progressLine(s playback.Session) string {
	total := "--:--"
	if s.DurationMS > 0 {
		total = utils.FormatTime(s.DurationMS)
	}
	return fmt.Sprintf("%s  %s / %s", m.progressBar.ViewAs(s.Progress()), utils.FormatTime(s.PositionMS), total)
}

func statusIcon(state playback.State) string {
	switch state {
	case playback.StateLoading:
		return "⏳"
	case playback.StatePlaying:
		return "▶"
	case playback.StatePaused:
		return "⏸"
	case playback.StateFailed:
		return "⚠"
	default:
		return "⏹"
	}
}

func formatStatus(state playback.State) string {
	switch state {
	case playback.StateLoading:
		return "Загрузка"
	case playback.StatePlaying:
		return "Воспроизведение"
	case playback.StatePaused:
		return "Пауза"
	case playback.StateFailed:
		return "Ошибка"
	default:
		return "Остановлено"
	}
}
