package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/track"
	"github.com/hazadus/go-vibes/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand() *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks of the playlist",
		Long:  `Display the playlist filtered and sorted the same way as in the TUI.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			app.listTracks(cmd.OutOrStdout(), q)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (app *Application) listTracks(out io.Writer, q track.Query) {
	if app.Catalog.Len() == 0 {
		fmt.Fprintln(out, "📚 Каталог пуст. Добавьте треки с помощью команды 'add' или 'fetch-playlist'.")
		return
	}

	visible := track.Visible(app.Catalog.Tracks(), q)
	if len(visible) == 0 {
		fmt.Fprintln(out, "🔍 Ничего не найдено. Измените запрос или фильтры по жанрам.")
		return
	}

	fmt.Fprintf(out, "📚 Показано треков: %d из %d (сортировка: %s)\n\n",
		len(visible), app.Catalog.Len(), q.Sort.Label())

	// Выводим заголовок таблицы
	fmt.Fprintln(out, tableRow("ID", "Исполнители", "Название", "Альбом", "Длит.", "Реакции", "Добавлен"))
	fmt.Fprintln(out, strings.Repeat("-", 132))

	now := time.Now()
	for _, t := range visible {
		fmt.Fprintln(out, tableRow(
			t.ID,
			t.ArtistLine(),
			t.Title,
			t.Album,
			utils.FormatDuration(t.DurationMS),
			fmt.Sprint(t.Reactions.Total()),
			addedColumn(t, now, app.Config.DateLayout),
		))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "💡 Используйте 'vibes play [ID]' для воспроизведения трека")
}

var columnWidths = []int{12, 26, 28, 20, 7, 8, 22}

// tableRow выравнивает колонки по ширине на экране, а не по числу байт
func tableRow(cols ...string) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		width := columnWidths[i]
		cells[i] = runewidth.FillRight(utils.TruncateString(col, width), width)
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}

func addedColumn(t catalog.Track, now time.Time, layout string) string {
	if t.AddedAt.IsZero() {
		return "N/A"
	}
	return utils.FormatAddedTimeLayout(t.AddedAt, now, layout) + " • " + t.AddedBy.Name
}
