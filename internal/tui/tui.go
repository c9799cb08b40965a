// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/config"
	"github.com/hazadus/go-vibes/internal/player"
	"github.com/hazadus/go-vibes/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	config   *config.Config
	catalog  *catalog.Catalog
	resource player.Resource
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(cfg *config.Config, c *catalog.Catalog, res player.Resource) *App {
	return &App{
		config:   cfg,
		catalog:  c,
		resource: res,
	}
}

// Model создает главную модель приложения
func (tuiApp *App) Model() *app.MainModel {
	return app.NewMainModel(tuiApp.config, tuiApp.catalog, tuiApp.resource)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	model := tuiApp.Model()

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()

	// Закрываем плеер после завершения программы
	if closeErr := model.Close(); closeErr != nil {
		zlog.Warn().Err(closeErr).Msg("ошибка закрытия плеера")
	}

	return err
}
