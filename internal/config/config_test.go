package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}
	return configPath
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	clearEnv(t)
	configPath := writeConfig(t, `
catalog_path: ~/music/catalog.yaml
playlist:
  title: "Friday Mix"
  share_url: "https://example.com/share"
playback:
  auto_skip_failed: false
  seek_step_ms: 10000
aws:
  bucket_name: test-bucket
  access_key: test-access-key
  secret_key: test-secret-key
  region: eu-central-1
  endpoint: https://storage.example.com
server:
  addr: ":9090"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, "music/catalog.yaml"); cfg.CatalogPath != expected {
		t.Errorf("Ожидался CatalogPath: %s, получено: %s", expected, cfg.CatalogPath)
	}
	if cfg.Playlist.Title != "Friday Mix" {
		t.Errorf("Ожидался Title: Friday Mix, получено: %s", cfg.Playlist.Title)
	}
	if cfg.Playlist.Subtitle != "One community playlist from Slack #music" {
		t.Errorf("Подзаголовок по умолчанию не установлен: %s", cfg.Playlist.Subtitle)
	}
	if cfg.Playback.AutoSkipFailed {
		t.Error("Значение auto_skip_failed из файла должно иметь приоритет над значением по умолчанию")
	}
	if cfg.Playback.SeekStepMS != 10000 {
		t.Errorf("Ожидался SeekStepMS: 10000, получено: %d", cfg.Playback.SeekStepMS)
	}
	if cfg.Playback.ProgressIntervalMS != 500 {
		t.Errorf("Ожидался ProgressIntervalMS по умолчанию: 500, получено: %d", cfg.Playback.ProgressIntervalMS)
	}
	if cfg.AWS.Region != "eu-central-1" {
		t.Errorf("Ожидался Region: eu-central-1, получено: %s", cfg.AWS.Region)
	}
	if !cfg.HasStorage() {
		t.Error("Хранилище должно считаться настроенным")
	}
	if cfg.HasSpotify() {
		t.Error("Ключи Spotify не заданы")
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Ожидался Addr: :9090, получено: %s", cfg.Server.Addr)
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Отсутствующий файл не должен приводить к ошибке: %v", err)
	}

	if cfg.CatalogPath != "" {
		t.Errorf("По умолчанию используется встроенный каталог, получено: %s", cfg.CatalogPath)
	}
	if cfg.Playlist.Title != "HNG Vibes" {
		t.Errorf("Ожидался Title по умолчанию: HNG Vibes, получено: %s", cfg.Playlist.Title)
	}
	if !cfg.Playback.AutoSkipFailed {
		t.Error("auto_skip_failed по умолчанию включен")
	}
	if cfg.BufferSize() != 256*1024 {
		t.Errorf("Ожидался размер буфера 256 KB, получено: %d", cfg.BufferSize())
	}
	if cfg.DateLayout != "Jan 2, 2006" {
		t.Errorf("Ожидался DateLayout по умолчанию, получено: %s", cfg.DateLayout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Ожидался Addr по умолчанию: :8080, получено: %s", cfg.Server.Addr)
	}

	home, _ := os.UserHomeDir()
	if expected := filepath.Join(home, ".vibes/vibes.log"); cfg.Log.File != expected {
		t.Errorf("Ожидался файл журнала %s, получено: %s", expected, cfg.Log.File)
	}
}

func TestEnvVarOverride(t *testing.T) {
	configPath := writeConfig(t, `
aws:
  bucket_name: default-bucket
  access_key: default-key
  secret_key: default-secret
spotify:
  client_id: file-id
`)

	t.Setenv("AWS_ACCESS_KEY_ID", "env-key")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if cfg.AWS.AccessKey != "env-key" {
		t.Errorf("Ожидался AccessKey из окружения: env-key, получено: %s", cfg.AWS.AccessKey)
	}
	if cfg.AWS.SecretKey != "default-secret" {
		t.Errorf("Пустая переменная окружения не должна переопределять значение: %s", cfg.AWS.SecretKey)
	}
	if cfg.AWS.BucketName != "default-bucket" {
		t.Errorf("Ожидался BucketName из файла: default-bucket, получено: %s", cfg.AWS.BucketName)
	}
	if cfg.Spotify.ClientID != "env-id" || cfg.Spotify.ClientSecret != "env-secret" {
		t.Errorf("Ключи Spotify не переопределены: %s / %s", cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	}
	if !cfg.HasSpotify() {
		t.Error("Ключи Spotify должны считаться заданными")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `playlist:
  title: "test"
invalid_field: [unclosed array
`)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Ожидалась ошибка при загрузке некорректного YAML")
	}
	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"слишком маленький шаг перемотки", "playback:\n  seek_step_ms: 10\n", "SeekStepMS"},
		{"неизвестный уровень журнала", "log:\n  level: verbose\n", "Level"},
		{"неверный рынок Spotify", "spotify:\n  market: USA\n", "Market"},
		{"пустой заголовок", "playlist:\n  title: \"\"\n", "Title"},
		{"неверный адрес", "playlist:\n  share_url: not-a-url\n", "ShareURL"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, test.content))
			if err == nil {
				t.Fatal("Ожидалась ошибка проверки конфигурации")
			}
			if !strings.Contains(err.Error(), test.field) {
				t.Errorf("Ошибка должна упоминать поле %s: %v", test.field, err)
			}
		})
	}
}
