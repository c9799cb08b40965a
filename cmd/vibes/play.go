package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/playback"
	"github.com/hazadus/go-vibes/internal/player"
	"github.com/hazadus/go-vibes/internal/track"
	"github.com/hazadus/go-vibes/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	var flags queryFlags
	cmd := &cobra.Command{
		Use:   "play [track id]",
		Short: "Play a track without the TUI",
		Long: `Play a track by its ID, or the first visible track when no ID is given.
Next and previous follow the list filtered by --query, --genre and --sort.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := flags.query()
			if err != nil {
				return err
			}
			id := ""
			if len(args) > 0 {
				id = args[0]
			}

			enableRawMode()
			defer disableRawMode()

			return app.playTrack(ctx, cmd.OutOrStdout(), id, q, readKeys(os.Stdin))
		},
	}
	flags.register(cmd)
	return cmd
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // не критично: без raw режима клавиши приходят после Enter
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readKeys читает одиночные символы из r до ошибки чтения
func readKeys(r io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buffer := make([]byte, 1)
		for {
			if _, err := r.Read(buffer); err != nil {
				return
			}
			keys <- buffer[0]
		}
	}()
	return keys
}

// playTrack воспроизводит трек и обрабатывает события ресурса и клавиши в одном цикле
func (app *Application) playTrack(ctx context.Context, out io.Writer, id string, q track.Query, keys <-chan byte) error {
	manager := track.NewManager(app.Catalog)
	manager.Apply(q)

	first, err := app.startTrack(manager, id)
	if err != nil {
		return err
	}

	res, err := app.resource()
	if err != nil {
		return err
	}

	controller := playback.NewController(res, manager.Visible, playback.Options{
		AutoSkipFailed: app.Config.Playback.AutoSkipFailed,
	})
	defer func() {
		if err := controller.Close(); err != nil {
			zlog.Warn().Err(err).Msg("ошибка закрытия плеера")
		}
	}()

	controller.Play(first)
	printNowPlaying(out, first)

	fmt.Fprintf(out, "🎮 Управление:\n")
	fmt.Fprintf(out, "   [Пробел] - пауза/воспроизведение\n")
	fmt.Fprintf(out, "   [n] / [p] - следующий / предыдущий трек\n")
	fmt.Fprintf(out, "   [,] / [.] - перемотка назад / вперед\n")
	fmt.Fprintf(out, "   [q] или [Ctrl+C] - остановить и выйти\n")
	fmt.Fprintln(out)

	step := int64(app.Config.Playback.SeekStepMS)

	// Главный цикл обработки событий
	for {
		sub := controller.Subscription()
		if sub == nil {
			return nil
		}
		currentID := first.ID
		if cur := controller.Current(); cur != nil {
			currentID = cur.ID
		}

		select {
		case ev := <-sub.Events:
			if !controller.Handle(ev) {
				continue
			}
			s := controller.Snapshot()
			switch {
			case s.Track != nil && s.Track.ID != currentID:
				if ev.Kind == player.EventError && s.Notice != nil {
					fmt.Fprintf(out, "\n⚠️  %s\n", s.Notice.Message())
				}
				fmt.Fprintln(out)
				printNowPlaying(out, *s.Track)
			case s.State == playback.StateFailed:
				fmt.Fprintf(out, "\n❌ %s\n", s.Notice.Message())
				fmt.Fprintln(out, "   [Пробел] - повторить, [n] - следующий трек")
			case ev.Kind == player.EventEnded:
				fmt.Fprintln(out, "\n✅ Воспроизведение завершено")
				return nil
			default:
				displayProgress(out, s)
			}

		case <-sub.Done:
			// подписка заменена новым источником или ресурс закрыт
			if controller.Subscription() == sub {
				return nil
			}

		case key, ok := <-keys:
			if !ok {
				keys = nil
				continue
			}
			if quit := handleKey(controller, key, step); quit {
				fmt.Fprintln(out, "\n⏹️  Воспроизведение остановлено пользователем")
				return nil
			}
			s := controller.Snapshot()
			if s.Track != nil && s.Track.ID != currentID {
				fmt.Fprintln(out)
				printNowPlaying(out, *s.Track)
				continue
			}
			displayProgress(out, s)

		case <-ctx.Done():
			fmt.Fprintln(out, "\n⏹️  Воспроизведение остановлено пользователем")
			return nil
		}
	}
}

// startTrack выбирает трек для начала воспроизведения
func (app *Application) startTrack(manager *track.Manager, id string) (catalog.Track, error) {
	if id != "" {
		t, err := app.Catalog.TrackByID(id)
		if err != nil {
			return catalog.Track{}, errors.Wrap(err, "ошибка поиска трека")
		}
		return t, nil
	}

	visible := manager.Visible()
	if len(visible) == 0 {
		return catalog.Track{}, errors.New("нет треков для воспроизведения")
	}
	return visible[0], nil
}

// handleKey применяет нажатую клавишу к контроллеру. Возвращает true для выхода
func handleKey(controller *playback.Controller, key byte, stepMS int64) bool {
	switch key {
	case ' ', '\n', '\r':
		controller.PlayPause()
	case 'n':
		controller.Next()
	case 'p':
		controller.Prev()
	case ',':
		controller.SeekBy(-stepMS)
	case '.':
		controller.SeekBy(stepMS)
	case 'q':
		return true
	}
	return false
}

func printNowPlaying(out io.Writer, t catalog.Track) {
	fmt.Fprintf(out, "🎵 Сейчас играет:\n")
	fmt.Fprintf(out, "   ID: %s\n", t.ID)
	fmt.Fprintf(out, "   Исполнители: %s\n", t.ArtistLine())
	fmt.Fprintf(out, "   Название: %s\n", t.Title)
	if t.Album != "" {
		fmt.Fprintf(out, "   Альбом: %s\n", t.Album)
	}
	if t.DurationMS > 0 {
		fmt.Fprintf(out, "   Продолжительность: %s\n", utils.FormatDuration(t.DurationMS))
	}
	fmt.Fprintln(out)
}

// displayProgress отображает прогресс воспроизведения в одной строке
func displayProgress(out io.Writer, s playback.Session) {
	icon := "⏱️"
	status := "Загрузка"
	switch s.State {
	case playback.StatePlaying:
		icon, status = "▶️", "Воспроизведение"
	case playback.StatePaused:
		icon, status = "⏸️", "Пауза"
	case playback.StateFailed:
		icon, status = "⚠️", "Ошибка"
	}

	total := "--:--"
	percent := "??%"
	if s.DurationMS > 0 {
		total = utils.FormatTime(s.DurationMS)
		percent = fmt.Sprintf("%.1f%%", s.Progress()*100)
	}

	fmt.Fprintf(out, "\r\033[K%s  %s | %s / %s | Статус: %s",
		icon, percent, utils.FormatTime(s.PositionMS), total, status)
}
