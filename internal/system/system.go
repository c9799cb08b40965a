// Package system работает с буфером обмена и внешними приложениями
package system

import (
	"os/exec"
	"runtime"

	"github.com/atotto/clipboard"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// ErrEmptyValue возвращается для пустой ссылки
var ErrEmptyValue = errors.New("пустое значение")

var (
	writeClipboard = clipboard.WriteAll
	startCommand   = func(cmd *exec.Cmd) error { return cmd.Start() }
)

// CopyText копирует текст в буфер обмена. Ошибка только пишется в журнал и возвращается для подсказки в интерфейсе
func CopyText(text string) error {
	if text == "" {
		return ErrEmptyValue
	}
	if err := writeClipboard(text); err != nil {
		zlog.Warn().Err(err).Msg("не удалось скопировать в буфер обмена")
		return errors.Wrap(err, "ошибка копирования в буфер обмена")
	}
	zlog.Debug().Str("text", text).Msg("скопировано в буфер обмена")
	return nil
}

// OpenURL открывает адрес в приложении по умолчанию и не ждет его завершения
func OpenURL(url string) error {
	if url == "" {
		return ErrEmptyValue
	}

	cmd, err := openCommand(runtime.GOOS, url)
	if err != nil {
		zlog.Warn().Err(err).Str("url", url).Msg("не удалось открыть ссылку")
		return err
	}

	if err := startCommand(cmd); err != nil {
		zlog.Warn().Err(err).Str("url", url).Msg("не удалось открыть ссылку")
		return errors.Wrap(err, "ошибка запуска приложения")
	}
	return nil
}

func openCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, errors.Newf("неподдерживаемая платформа: %s", goos)
	}
}
