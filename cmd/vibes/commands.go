package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/player"
	"github.com/hazadus/go-vibes/internal/s3"
	"github.com/hazadus/go-vibes/internal/spotify"
	"github.com/hazadus/go-vibes/internal/streaming"
	"github.com/hazadus/go-vibes/internal/track"
)

// createRootCommand создает корневую команду с настроенными подкомандами.
// Без подкоманды запускается TUI
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "vibes",
		Short:         "Terminal viewer and player for a community playlist",
		Long:          `Browse, filter and play tracks of a shared community playlist in the terminal.`,
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createTUICommand())
	rootCmd.AddCommand(app.createListCommand())
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createRemoveCommand(ctx))
	rootCmd.AddCommand(app.createFetchCommand(ctx))
	rootCmd.AddCommand(app.createServeCommand(ctx))

	return rootCmd
}

// queryFlags флаги фильтрации для команд list и play
type queryFlags struct {
	text   string
	genres []string
	sort   string
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.text, "query", "q", "", "search in title, artists and album")
	cmd.Flags().StringArrayVarP(&f.genres, "genre", "g", nil, "genre filter, may be repeated")
	cmd.Flags().StringVarP(&f.sort, "sort", "s", "newest", "sort order: newest, oldest, most-reacted, a-z")
}

func (f *queryFlags) query() (track.Query, error) {
	key, err := track.ParseSortKey(f.sort)
	if err != nil {
		return track.Query{}, err
	}
	return track.Query{
		Text:   f.text,
		Genres: f.genres,
		Sort:   key,
	}, nil
}

// resource создает медиаресурс для воспроизведения
func (app *Application) resource() (player.Resource, error) {
	if app.newResource != nil {
		return app.newResource()
	}

	var objects streaming.ObjectStore
	if app.Config.HasStorage() {
		storage, err := app.storage()
		if err != nil {
			return nil, err
		}
		objects = storage
	}

	opener := streaming.NewOpener(app.Config.BufferSize(), objects)
	interval := time.Duration(app.Config.Playback.ProgressIntervalMS) * time.Millisecond
	return player.NewBeepResource(opener, interval), nil
}

// storage создает клиент S3 по настройкам приложения
func (app *Application) storage() (*s3.Uploader, error) {
	aws := app.Config.AWS
	uploader, err := s3.NewUploader(&s3.Config{
		Region:     aws.Region,
		AccessKey:  aws.AccessKey,
		SecretKey:  aws.SecretKey,
		Endpoint:   aws.Endpoint,
		BucketName: aws.BucketName,
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка создания S3 клиента")
	}
	return uploader, nil
}

// fetcher создает клиент Spotify
func (app *Application) fetcher(ctx context.Context) (playlistFetcher, error) {
	if app.newFetcher != nil {
		return app.newFetcher(ctx)
	}
	if !app.Config.HasSpotify() {
		return nil, errors.New("не заданы ключи Spotify: укажите spotify.client_id и spotify.client_secret")
	}
	return spotify.New(ctx, spotify.Config{
		ClientID:     app.Config.Spotify.ClientID,
		ClientSecret: app.Config.Spotify.ClientSecret,
		Market:       app.Config.Spotify.Market,
	})
}

// editableCatalog загружает файл каталога для изменения
func (app *Application) editableCatalog() (*catalog.Catalog, error) {
	if app.Config.CatalogPath == "" {
		return nil, errors.New("не задан catalog_path в конфигурации")
	}
	c, err := catalog.LoadFile(app.Config.CatalogPath)
	if err != nil {
		return nil, errors.Wrap(err, "ошибка загрузки каталога")
	}
	return c, nil
}

// saveCatalog сохраняет каталог и делает его текущим для приложения
func (app *Application) saveCatalog(c *catalog.Catalog) error {
	if err := c.Save(app.Config.CatalogPath); err != nil {
		return errors.Wrap(err, "ошибка сохранения каталога")
	}
	app.Catalog = c
	return nil
}
