// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-vibes/internal/utils"
)

// DefaultPath путь к файлу конфигурации по умолчанию
const DefaultPath = "~/.vibes/config.yaml"

// Config структура для хранения конфигурации приложения
type Config struct {
	// CatalogPath путь к YAML файлу каталога. Пустой путь означает встроенный каталог
	CatalogPath string         `yaml:"catalog_path"`
	DateLayout  string         `yaml:"date_layout" default:"Jan 2, 2006"`
	Playlist    PlaylistConfig `yaml:"playlist"`
	Playback    PlaybackConfig `yaml:"playback"`
	Log         LogConfig      `yaml:"log"`
	AWS         AWSConfig      `yaml:"aws"`
	Spotify     SpotifyConfig  `yaml:"spotify"`
	Server      ServerConfig   `yaml:"server"`
}

// PlaylistConfig заголовок плейлиста
type PlaylistConfig struct {
	Title      string `yaml:"title" default:"HNG Vibes" validate:"required"`
	Subtitle   string `yaml:"subtitle" default:"One community playlist from Slack #music"`
	ShareURL   string `yaml:"share_url" validate:"omitempty,url"`
	SpotifyURL string `yaml:"spotify_url" validate:"omitempty,url"`
}

// PlaybackConfig настройки воспроизведения
type PlaybackConfig struct {
	AutoSkipFailed     bool `yaml:"auto_skip_failed" default:"true"`
	SeekStepMS         int  `yaml:"seek_step_ms" default:"5000" validate:"gte=100,lte=60000"`
	ProgressIntervalMS int  `yaml:"progress_interval_ms" default:"500" validate:"gte=50,lte=5000"`
	BufferSizeKB       int  `yaml:"buffer_size_kb" default:"256" validate:"gte=4,lte=65536"`
}

// LogConfig настройки журнала
type LogConfig struct {
	Output string `yaml:"output" default:"file"`
	Level  string `yaml:"level" default:"info" validate:"omitempty,oneof=debug info warn warning error"`
	File   string `yaml:"file" default:"~/.vibes/vibes.log"`
}

// AWSConfig настройки S3 совместимого хранилища
type AWSConfig struct {
	BucketName string `yaml:"bucket_name"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Region     string `yaml:"region" default:"us-east-1"`
	Endpoint   string `yaml:"endpoint" validate:"omitempty,url"`
}

// SpotifyConfig настройки Spotify API
type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	Market       string `yaml:"market" validate:"omitempty,len=2"`
}

// ServerConfig настройки HTTP API
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

// Default возвращает конфигурацию со значениями по умолчанию
func Default() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.Wrap(err, "ошибка установки значений по умолчанию")
	}
	return cfg, nil
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, используются значения по умолчанию. Переменные окружения
// имеют приоритет над значениями из файла для ключей доступа
func LoadConfig(filePath string) (*Config, error) {
	path, err := utils.ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "ошибка чтения файла конфигурации")
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "ошибка разбора yaml конфигурации")
		}
	}

	cfg.overrideFromEnv()

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// overrideFromEnv переопределяет ключи доступа из переменных окружения
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("AWS_ACCESS_KEY_ID"); v != "" {
		c.AWS.AccessKey = v
	}
	if v := os.Getenv("AWS_SECRET_ACCESS_KEY"); v != "" {
		c.AWS.SecretKey = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.CatalogPath, err = utils.ExpandHome(c.CatalogPath); err != nil {
		return err
	}
	if c.Log.File, err = utils.ExpandHome(c.Log.File); err != nil {
		return err
	}
	return nil
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "ошибка проверки конфигурации")
	}
	return nil
}

// HasStorage сообщает, настроено ли S3 хранилище
func (c *Config) HasStorage() bool {
	return c.AWS.BucketName != "" && c.AWS.AccessKey != "" && c.AWS.SecretKey != ""
}

// HasSpotify сообщает, заданы ли ключи Spotify API
func (c *Config) HasSpotify() bool {
	return c.Spotify.ClientID != "" && c.Spotify.ClientSecret != ""
}

// BufferSize возвращает размер буфера потокового чтения в байтах
func (c *Config) BufferSize() int {
	return c.Playback.BufferSizeKB * 1024
}
