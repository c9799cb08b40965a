package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/config"
	"github.com/hazadus/go-vibes/internal/logger"
	"github.com/hazadus/go-vibes/internal/player"
	"github.com/hazadus/go-vibes/internal/spotify"
)

const appVersion = "0.3.0"

// Application хранит конфигурацию и каталог, общие для всех команд
type Application struct {
	Config  *config.Config
	Catalog *catalog.Catalog

	// newResource и newFetcher подменяются в тестах
	newResource func() (player.Resource, error)
	newFetcher  func(ctx context.Context) (playlistFetcher, error)
}

// playlistFetcher загружает плейлист Spotify
type playlistFetcher interface {
	FetchPlaylist(ctx context.Context, playlistURL string) (*spotify.Playlist, error)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Ошибка: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "ошибка загрузки .env")
	}

	cfg, err := config.LoadConfig(config.DefaultPath)
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки конфигурации")
	}

	closeLog, err := logger.Init(logger.Config{
		Output: cfg.Log.Output,
		Level:  cfg.Log.Level,
		File:   cfg.Log.File,
	})
	if err != nil {
		return errors.Wrap(err, "ошибка настройки журнала")
	}
	defer func() {
		_ = closeLog()
	}()

	c, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки каталога")
	}
	zlog.Debug().Int("tracks", c.Len()).Str("path", cfg.CatalogPath).Msg("каталог загружен")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{
		Config:  cfg,
		Catalog: c,
	}

	return app.createRootCommand(ctx).ExecuteContext(ctx)
}
