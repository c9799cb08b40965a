// Package utils содержит утилитарные функции, используемые в разных частях приложения
package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// DateLayout формат календарной даты для треков, добавленных больше недели назад
const DateLayout = "Jan 2, 2006"

// FormatTime форматирует позицию воспроизведения в миллисекундах в формат m:ss
func FormatTime(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// FormatDuration форматирует длительность трека в миллисекундах в формат m:ss
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatAddedTime возвращает относительное время добавления трека:
// "Just now", "Xh ago", "Xd ago" или календарную дату для треков старше недели
func FormatAddedTime(addedAt, now time.Time) string {
	return FormatAddedTimeLayout(addedAt, now, DateLayout)
}

// FormatAddedTimeLayout как FormatAddedTime, но с заданным форматом календарной даты
func FormatAddedTimeLayout(addedAt, now time.Time, layout string) string {
	if layout == "" {
		layout = DateLayout
	}
	diff := now.Sub(addedAt)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case hours < 1:
		return "Just now"
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return addedAt.Format(layout)
	}
}

// TruncateString обрезает строку до указанной ширины на экране, добавляя "..." если строка длиннее
func TruncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// ExpandHome раскрывает тильду в начале пути в домашний каталог пользователя
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}

// FormatFileSize форматирует размер файла в читаемом виде
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
