package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/spotify"
)

const defaultPlaylistFile = "playlist-details.json"

// createFetchCommand создает команду fetch-playlist с привязкой к экземпляру приложения
func (app *Application) createFetchCommand(ctx context.Context) *cobra.Command {
	var (
		outPath string
		merge   bool
	)
	cmd := &cobra.Command{
		Use:   "fetch-playlist [url or id]",
		Short: "Fetch playlist details from Spotify",
		Long: `Fetch a Spotify playlist with its tracks and write it to a JSON file.
Without an argument the playlist.spotify_url from the config is used.
With --merge new tracks are appended to the catalog file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			playlistURL := app.Config.Playlist.SpotifyURL
			if len(args) > 0 {
				playlistURL = args[0]
			}
			if playlistURL == "" {
				return errors.New("не указан плейлист: передайте URL или задайте playlist.spotify_url")
			}
			return app.fetchPlaylist(ctx, cmd.OutOrStdout(), playlistURL, outPath, merge)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", defaultPlaylistFile, "JSON file for playlist details, empty to skip")
	cmd.Flags().BoolVar(&merge, "merge", false, "append new tracks to the catalog file")
	return cmd
}

func (app *Application) fetchPlaylist(ctx context.Context, out io.Writer, playlistURL, outPath string, merge bool) error {
	client, err := app.fetcher(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "🌐 Загружаем плейлист из Spotify: %s\n", playlistURL)

	playlist, err := client.FetchPlaylist(ctx, playlistURL)
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки плейлиста")
	}

	fmt.Fprintf(out, "✅ Плейлист «%s»: %d треков\n", playlist.Name, len(playlist.Tracks))

	if outPath != "" {
		if err := spotify.WritePlaylistJSON(outPath, playlist); err != nil {
			return err
		}
		fmt.Fprintf(out, "📦 Данные плейлиста сохранены в %s\n", outPath)
	}

	if !merge {
		return nil
	}

	c, err := app.editableCatalog()
	if err != nil {
		return err
	}

	added, err := mergeTracks(c, playlist.Tracks)
	if err != nil {
		return err
	}

	if err := app.saveCatalog(c); err != nil {
		return err
	}

	fmt.Fprintf(out, "📦 Добавлено новых треков: %d, каталог: %s\n", added, app.Config.CatalogPath)
	return nil
}

// mergeTracks добавляет в каталог треки, которых в нем еще нет
func mergeTracks(c *catalog.Catalog, tracks []catalog.Track) (int, error) {
	added := 0
	for _, t := range tracks {
		if _, err := c.TrackByID(t.ID); err == nil {
			continue
		}
		if _, err := c.AddTrack(t); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
