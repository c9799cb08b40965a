package main

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// createRemoveCommand создает команду remove с привязкой к экземпляру приложения
func (app *Application) createRemoveCommand(ctx context.Context) *cobra.Command {
	var keepFile bool
	cmd := &cobra.Command{
		Use:     "remove [track id]",
		Aliases: []string{"delete"},
		Short:   "Remove a track from the catalog",
		Long:    `Remove a track from the catalog file and delete its audio from S3 storage when it is stored there.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.removeTrack(ctx, cmd.OutOrStdout(), args[0], keepFile)
		},
	}
	cmd.Flags().BoolVar(&keepFile, "keep-file", false, "do not delete the audio file from S3")
	return cmd
}

func (app *Application) removeTrack(ctx context.Context, out io.Writer, id string, keepFile bool) error {
	c, err := app.editableCatalog()
	if err != nil {
		return err
	}

	t, err := c.TrackByID(id)
	if err != nil {
		return errors.Wrap(err, "ошибка поиска трека")
	}

	fmt.Fprintf(out, "🗑️  Удаляем трек: %s - %s\n", t.ArtistLine(), t.Title)

	// Удаляем файл из S3, если он хранится в нашем бакете
	if !keepFile && t.AudioURL != "" && app.Config.HasStorage() {
		if err := app.deleteFromStorage(ctx, t.AudioURL); err != nil {
			// продолжаем, даже если не удалось удалить из S3
			fmt.Fprintf(out, "⚠️  Предупреждение: не удалось удалить файл из S3: %v\n", err)
		} else {
			fmt.Fprintln(out, "✅ Файл успешно удален из S3")
		}
	}

	if _, err := c.RemoveTrack(id); err != nil {
		return errors.Wrap(err, "ошибка удаления трека из каталога")
	}

	if err := app.saveCatalog(c); err != nil {
		return err
	}

	fmt.Fprintln(out, "✅ Трек успешно удален из каталога")
	return nil
}

func (app *Application) deleteFromStorage(ctx context.Context, fileURL string) error {
	storage, err := app.storage()
	if err != nil {
		return err
	}

	key, err := storage.KeyFromURL(fileURL)
	if err != nil {
		return errors.Wrap(err, "ошибка извлечения ключа из URL")
	}

	return storage.DeleteFile(ctx, key)
}
