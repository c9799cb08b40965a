// Package app содержит основную логику TUI приложения
package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/config"
	"github.com/hazadus/go-vibes/internal/playback"
	"github.com/hazadus/go-vibes/internal/player"
	"github.com/hazadus/go-vibes/internal/system"
	"github.com/hazadus/go-vibes/internal/track"
	"github.com/hazadus/go-vibes/internal/tui/details"
	tuiPlayer "github.com/hazadus/go-vibes/internal/tui/player"
	"github.com/hazadus/go-vibes/internal/tui/topbar"
	"github.com/hazadus/go-vibes/internal/tui/tracklist"
)

var (
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5f5f")).Bold(true).Padding(0, 2)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Padding(0, 2)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 2)
	quitTextStyle = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// screenType определяет тип текущего экрана
type screenType int

const (
	// tracklistScreen - экран списка треков
	tracklistScreen screenType = iota
	// playerScreen - полноэкранный плеер
	playerScreen
	// detailsScreen - подробности о треке
	detailsScreen
)

// PlayerEventMsg событие медиаресурса, доставленное в цикл событий
type PlayerEventMsg struct {
	Sub   *player.Subscription
	Event player.Event
}

// subscriptionClosedMsg подписка заменена новой загрузкой или ресурс закрыт
type subscriptionClosedMsg struct {
	Sub *player.Subscription
}

// linkResultMsg результат копирования или открытия ссылки
type linkResultMsg struct {
	text string
	err  error
}

// MainModel представляет главную модель TUI
type MainModel struct {
	cfg        *config.Config
	manager    *track.Manager
	controller *playback.Controller

	currentScreen  screenType
	topbarModel    *topbar.Model
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	detailsModel   *details.Model

	listening *player.Subscription
	status    string
	width     int
	height    int
	quitting  bool

	copyText func(string) error
	openURL  func(string) error
}

// NewMainModel создает новую главную модель
func NewMainModel(cfg *config.Config, c *catalog.Catalog, res player.Resource) *MainModel {
	manager := track.NewManager(c)

	return &MainModel{
		cfg:     cfg,
		manager: manager,
		controller: playback.NewController(res, manager.Visible, playback.Options{
			AutoSkipFailed: cfg.Playback.AutoSkipFailed,
		}),
		currentScreen:  tracklistScreen,
		topbarModel:    topbar.NewModel(cfg.Playlist.Title, cfg.Playlist.Subtitle, c, cfg.DateLayout),
		tracklistModel: tracklist.NewModel(manager.Visible(), cfg.DateLayout),
		playerModel:    tuiPlayer.NewModel(cfg.DateLayout),
		copyText:       system.CopyText,
		openURL:        system.OpenURL,
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return m.tracklistModel.Init()
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m *MainModel) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.detailsModel != nil {
			m.detailsModel, _ = m.detailsModel.Update(msg)
		}
		return nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case PlayerEventMsg:
		return m.handlePlayerEvent(msg)

	case subscriptionClosedMsg:
		if msg.Sub == m.listening {
			m.listening = nil
		}
		return nil

	case tracklist.TrackSelectedMsg:
		m.controller.Play(msg.Track)
		return m.syncSubscription()

	case tracklist.TrackDetailsMsg:
		m.openDetails(msg.Track)
		return nil

	case details.GoBackMsg:
		m.currentScreen = tracklistScreen
		m.detailsModel = nil
		return nil

	case linkResultMsg:
		if msg.err != nil {
			m.status = "Не удалось выполнить действие, подробности в журнале"
		} else {
			m.status = msg.text
		}
		return nil
	}

	// мигание курсора и прочие служебные сообщения
	if m.topbarModel.Searching() {
		var cmd tea.Cmd
		m.topbarModel, cmd = m.topbarModel.Update(msg)
		return cmd
	}
	return nil
}

func (m *MainModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return m.quit()
	}
	m.status = ""

	if m.topbarModel.Searching() {
		switch key {
		case "esc", "enter":
			m.topbarModel.BlurSearch()
			return nil
		}
		var cmd tea.Cmd
		m.topbarModel, cmd = m.topbarModel.Update(msg)
		m.manager.SetQuery(m.topbarModel.Value())
		m.refreshList()
		return cmd
	}

	if m.topbarModel.ChipsFocused() {
		switch key {
		case "left", "h":
			m.topbarModel.MoveChip(-1)
			return nil
		case "right", "l":
			m.topbarModel.MoveChip(1)
			return nil
		case " ":
			if genre, ok := m.topbarModel.CurrentChip(); ok {
				m.manager.ToggleGenre(genre)
				m.refreshList()
			}
			return nil
		case "esc", "f":
			m.topbarModel.ToggleChips()
			return nil
		}
	}

	switch key {
	case "q":
		return m.quit()

	case "/":
		m.showList()
		return m.topbarModel.FocusSearch()

	case "f":
		m.showList()
		m.topbarModel.ToggleChips()
		return nil

	case "c":
		m.manager.ClearGenres()
		m.refreshList()
		return nil

	case "s":
		m.manager.CycleSort()
		m.refreshList()
		return nil

	case "r":
		m.manager.Reset()
		m.topbarModel.SetValue("")
		m.refreshList()
		return nil

	case " ":
		m.controller.PlayPause()
		return m.syncSubscription()

	case "n":
		m.controller.Next()
		return m.syncSubscription()

	case "p":
		m.controller.Prev()
		return m.syncSubscription()

	case ",":
		m.controller.SeekBy(-int64(m.cfg.Playback.SeekStepMS))
		return nil

	case ".":
		m.controller.SeekBy(int64(m.cfg.Playback.SeekStepMS))
		return nil

	case "e":
		if m.currentScreen == playerScreen {
			m.currentScreen = tracklistScreen
		} else {
			m.currentScreen = playerScreen
			m.detailsModel = nil
		}
		return nil

	case "x":
		m.controller.DismissNotice()
		return nil

	case "y":
		t, ok := m.targetTrack()
		if !ok {
			return nil
		}
		return m.copyCmd(trackLink(t), "Ссылка на трек скопирована")

	case "Y":
		return m.copyCmd(m.playlistLink(), "Ссылка на плейлист скопирована")

	case "o":
		url := m.cfg.Playlist.SpotifyURL
		if t, ok := m.targetTrack(); ok && t.SpotifyURL != "" {
			url = t.SpotifyURL
		}
		return m.openCmd(url)
	}

	switch m.currentScreen {
	case playerScreen:
		switch key {
		case "esc":
			m.currentScreen = tracklistScreen
		case "d":
			if t := m.controller.Current(); t != nil {
				m.openDetails(*t)
			}
		}
		return nil

	case detailsScreen:
		if key == "enter" && m.detailsModel != nil {
			m.controller.Play(m.detailsModel.Track())
			return m.syncSubscription()
		}
		var cmd tea.Cmd
		m.detailsModel, cmd = m.detailsModel.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	return cmd
}

// handlePlayerEvent передает событие контроллеру и продолжает слушать актуальную подписку
func (m *MainModel) handlePlayerEvent(msg PlayerEventMsg) tea.Cmd {
	wasCurrent := msg.Sub == m.listening
	m.controller.Handle(msg.Event)

	if cmd := m.syncSubscription(); cmd != nil {
		return cmd
	}
	if wasCurrent && m.listening != nil {
		return listenForEvents(m.listening)
	}
	return nil
}

// syncSubscription начинает слушать подписку контроллера, если она сменилась.
// На каждую подписку приходится не больше одного слушателя
func (m *MainModel) syncSubscription() tea.Cmd {
	sub := m.controller.Subscription()
	if sub == nil || sub == m.listening {
		return nil
	}
	m.listening = sub
	return listenForEvents(sub)
}

// listenForEvents ждет следующее событие подписки
func listenForEvents(sub *player.Subscription) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-sub.Events:
			return PlayerEventMsg{Sub: sub, Event: ev}
		case <-sub.Done:
			return subscriptionClosedMsg{Sub: sub}
		}
	}
}

func (m *MainModel) refreshList() {
	m.tracklistModel.SetTracks(m.manager.Visible())
}

func (m *MainModel) showList() {
	m.currentScreen = tracklistScreen
	m.detailsModel = nil
}

func (m *MainModel) openDetails(t catalog.Track) {
	m.detailsModel = details.NewModel(t, m.cfg.DateLayout)
	if m.width > 0 {
		m.detailsModel, _ = m.detailsModel.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	m.currentScreen = detailsScreen
}

// targetTrack возвращает трек для действий со ссылками: открытый в подробностях,
// выделенный в списке или текущий
func (m *MainModel) targetTrack() (catalog.Track, bool) {
	switch m.currentScreen {
	case detailsScreen:
		if m.detailsModel != nil {
			return m.detailsModel.Track(), true
		}
	case tracklistScreen:
		if t, ok := m.tracklistModel.Selected(); ok {
			return t, true
		}
	}
	if t := m.controller.Current(); t != nil {
		return *t, true
	}
	return catalog.Track{}, false
}

func trackLink(t catalog.Track) string {
	if t.SpotifyURL != "" {
		return t.SpotifyURL
	}
	return t.AudioURL
}

func (m *MainModel) playlistLink() string {
	if m.cfg.Playlist.ShareURL != "" {
		return m.cfg.Playlist.ShareURL
	}
	return m.cfg.Playlist.SpotifyURL
}

func (m *MainModel) copyCmd(text, done string) tea.Cmd {
	if text == "" {
		m.status = "Ссылка недоступна"
		return nil
	}
	copyText := m.copyText
	return func() tea.Msg {
		if err := copyText(text); err != nil {
			return linkResultMsg{err: err}
		}
		return linkResultMsg{text: done}
	}
}

func (m *MainModel) openCmd(url string) tea.Cmd {
	if url == "" {
		m.status = "Ссылка на Spotify недоступна"
		return nil
	}
	openURL := m.openURL
	return func() tea.Msg {
		if err := openURL(url); err != nil {
			return linkResultMsg{err: err}
		}
		return linkResultMsg{text: "Ссылка открыта"}
	}
}

func (m *MainModel) quit() tea.Cmd {
	m.quitting = true
	if err := m.controller.Close(); err != nil {
		zlog.Warn().Err(err).Msg("ошибка закрытия плеера")
	}
	return tea.Quit
}

// layout пересчитывает размеры списка под заголовок и панель воспроизведения
func (m *MainModel) layout() {
	m.tracklistModel.SetSession(m.controller.Snapshot())
	if m.width == 0 {
		return
	}
	m.topbarModel.SetWidth(m.width)
	m.playerModel.SetWidth(m.width)

	header := m.topbarModel.View(m.manager.Query(), len(m.manager.Visible()))
	footer := m.footerView(true)
	m.tracklistModel.SetSize(m.width, m.height-lipgloss.Height(header)-lipgloss.Height(footer))
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	switch m.currentScreen {
	case tracklistScreen:
		header := m.topbarModel.View(m.manager.Query(), len(m.manager.Visible()))
		return header + "\n" + m.tracklistModel.View() + "\n" + m.footerView(true)

	case playerScreen:
		return m.playerModel.ViewExpanded(m.controller.Snapshot()) + "\n" + m.footerView(false)

	case detailsScreen:
		if m.detailsModel != nil {
			return m.detailsModel.View() + "\n" + m.footerView(true)
		}
		return "Ошибка: модель подробностей не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// footerView отображает сообщение о сбое, панель воспроизведения и подсказки
func (m *MainModel) footerView(withBar bool) string {
	s := m.controller.Snapshot()
	var lines []string

	if s.Notice != nil {
		text := "⚠ " + s.Notice.Message() + " • x: скрыть"
		if s.State == playback.StateFailed {
			text += " • пробел: повторить"
		}
		lines = append(lines, noticeStyle.Render(text))
	}

	if withBar {
		lines = append(lines, m.playerModel.ViewCompact(s))
	}

	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}

	lines = append(lines, helpStyle.Render(m.helpText()))
	return strings.Join(lines, "\n")
}

func (m *MainModel) helpText() string {
	switch {
	case m.topbarModel.Searching():
		return "Введите текст для поиска • enter/esc: готово"
	case m.topbarModel.ChipsFocused():
		return "←/→: выбор жанра • пробел: включить/выключить • c: снять все • esc/f: готово"
	case m.currentScreen == playerScreen:
		return "d: подробности • y: ссылка • o: Spotify • q: выход"
	default:
		return "/: поиск • f: жанры • s: сортировка • r: сброс • enter: играть • пробел: пауза • n/p • ,/.: перемотка • e: плеер • d: подробности • q: выход"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() error {
	return m.controller.Close()
}
