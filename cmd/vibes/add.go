package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/metadata"
	"github.com/hazadus/go-vibes/internal/uploader"
	"github.com/hazadus/go-vibes/internal/utils"
)

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var addedBy string
	cmd := &cobra.Command{
		Use:   "add [file path]",
		Short: "Upload an mp3 file to S3 and add it to the catalog",
		Long:  `Upload an mp3 file to S3 storage with progress tracking and append the track to the catalog file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Создаем контекст с таймаутом для загрузки (10 минут)
			uploadCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			return app.uploadTrack(uploadCtx, cmd.OutOrStdout(), args[0], addedBy)
		},
	}
	cmd.Flags().StringVar(&addedBy, "by", os.Getenv("USER"), "name of the contributor")
	return cmd
}

// uploadTrack загружает файл в S3 с отображением прогресса и добавляет трек в каталог
func (app *Application) uploadTrack(ctx context.Context, out io.Writer, filePath, addedBy string) error {
	if !app.Config.HasStorage() {
		return errors.New("хранилище S3 не настроено: укажите aws.bucket_name и ключи доступа")
	}

	c, err := app.editableCatalog()
	if err != nil {
		return err
	}

	storage, err := app.storage()
	if err != nil {
		return err
	}

	// Создаем сервис загрузки
	uploadService := uploader.NewService(storage, c)

	// Получаем информацию о файле для отображения
	fileInfo, err := metadata.NewExtractor().GetFileInfo(filePath)
	if err != nil {
		return errors.Wrap(err, "ошибка получения информации о файле")
	}

	fmt.Fprintf(out, "📤 Загружаем файл в S3:\n")
	fmt.Fprintf(out, "   Файл: %s\n", filePath)
	fmt.Fprintf(out, "   Размер: %s\n", utils.FormatFileSize(fileInfo.Size))
	fmt.Fprintf(out, "   Бакет: %s\n", storage.Bucket())
	fmt.Fprintln(out)

	// Создаем канал для отслеживания прогресса
	progressChan := make(chan int64)
	progressDone := make(chan struct{})

	go func() {
		defer close(progressDone)
		startTime := time.Now()

		for {
			select {
			case progress, ok := <-progressChan:
				if !ok {
					return
				}
				if progress > 0 && fileInfo.Size > 0 {
					printUploadProgress(out, progress, fileInfo.Size, time.Since(startTime))
				}
			case <-ctx.Done():
				fmt.Fprintf(out, "\n🚫 Загрузка отменена\n")
				return
			}
		}
	}()

	result, err := uploadService.UploadFile(ctx, filePath, func(bytesRead int64) {
		select {
		case progressChan <- bytesRead:
		case <-progressDone:
		}
	})

	close(progressChan)
	<-progressDone

	if err != nil {
		return errors.Wrap(err, "ошибка загрузки файла")
	}

	// Проверяем, не была ли операция отменена
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), "операция отменена")
	}

	fmt.Fprintf(out, "\n✅ Файл успешно загружен в S3!\n")
	fmt.Fprintf(out, "   URL: %s\n", result.URL)

	added, err := uploadService.AddToCatalog(result, catalog.AddedBy{Name: addedBy})
	if err != nil {
		return err
	}

	if err := app.saveCatalog(c); err != nil {
		return err
	}

	fmt.Fprintf(out, "\n📦 Трек %s (%s) добавлен в %s\n", added.ID, added.Title, app.Config.CatalogPath)
	return nil
}

func printUploadProgress(out io.Writer, progress, size int64, elapsed time.Duration) {
	percentage := float64(progress) / float64(size) * 100

	// Вычисляем скорость загрузки
	var speed float64
	if elapsed > 0 {
		speed = float64(progress) / elapsed.Seconds()
	}

	// Вычисляем оставшееся время
	var remaining time.Duration
	if speed > 0 {
		remaining = time.Duration(float64(size-progress)/speed) * time.Second
	}

	fmt.Fprintf(out, "\r📊 Прогресс: %.1f%% | Скорость: %s/s | Прошло: %s | Осталось: %s",
		percentage,
		utils.FormatFileSize(int64(speed)),
		utils.FormatDuration(elapsed.Milliseconds()),
		utils.FormatDuration(remaining.Milliseconds()))
}
