// Package spotify загружает плейлист из Spotify Web API и преобразует его в треки каталога
package spotify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hazadus/go-vibes/internal/catalog"
)

const (
	pageLimit   = 100
	artistBatch = 50
)

// Config настройки клиента Spotify
type Config struct {
	ClientID     string
	ClientSecret string
	Market       string
}

// api подмножество методов Spotify Web API, которое использует клиент
type api interface {
	GetPlaylist(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.FullPlaylist, error)
	GetPlaylistItems(ctx context.Context, playlistID spotify.ID, opts ...spotify.RequestOption) (*spotify.PlaylistItemPage, error)
	GetArtists(ctx context.Context, ids ...spotify.ID) ([]*spotify.FullArtist, error)
}

// Client клиент Spotify API
type Client struct {
	client     api
	market     string
	maxRetries int
	retryDelay time.Duration
}

// Playlist снимок плейлиста
type Playlist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Owner       string          `json:"owner,omitempty"`
	URL         string          `json:"url,omitempty"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Tracks      []catalog.Track `json:"tracks"`
}

// New создает клиент, авторизованный через client credentials
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("не заданы ключи Spotify API")
	}

	auth := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}
	httpClient := auth.Client(ctx)

	return newClient(spotify.New(httpClient), cfg.Market), nil
}

func newClient(client api, market string) *Client {
	return &Client{
		client:     client,
		market:     market,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

func (c *Client) options(opts ...spotify.RequestOption) []spotify.RequestOption {
	if c.market != "" {
		opts = append(opts, spotify.Market(c.market))
	}
	return opts
}

// FetchPlaylist загружает плейлист со всеми треками
func (c *Client) FetchPlaylist(ctx context.Context, playlistURL string) (*Playlist, error) {
	playlistID := extractPlaylistID(playlistURL)
	if playlistID == "" {
		return nil, errors.New("неверный адрес плейлиста")
	}

	var full *spotify.FullPlaylist
	err := c.retry(func() error {
		p, err := c.client.GetPlaylist(ctx, spotify.ID(playlistID), c.options()...)
		if err != nil {
			return err
		}
		full = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка загрузки плейлиста")
	}

	items, err := c.PlaylistItems(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	genres, err := c.artistGenres(ctx, items)
	if err != nil {
		// без жанров плейлист все равно пригоден для просмотра
		zlog.Warn().Err(err).Msg("не удалось получить жанры исполнителей")
	}

	owner := full.Owner.DisplayName
	if owner == "" {
		owner = full.Owner.ID
	}

	zlog.Info().Str("playlist", playlistID).Int("items", len(items)).Msg("плейлист загружен")

	return &Playlist{
		ID:          string(full.ID),
		Name:        full.Name,
		Description: full.Description,
		Owner:       owner,
		URL:         full.ExternalURLs["spotify"],
		FetchedAt:   time.Now().UTC(),
		Tracks:      ToCatalogTracks(items, genres),
	}, nil
}

// PlaylistItems загружает все элементы плейлиста постранично
func (c *Client) PlaylistItems(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error) {
	var items []spotify.PlaylistItem
	offset := 0

	for {
		var page *spotify.PlaylistItemPage
		err := c.retry(func() error {
			p, err := c.client.GetPlaylistItems(ctx, spotify.ID(playlistID),
				c.options(spotify.Limit(pageLimit), spotify.Offset(offset))...,
			)
			if err != nil {
				return err
			}
			page = p
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(err, "ошибка загрузки треков плейлиста")
		}

		items = append(items, page.Items...)
		if len(page.Items) < pageLimit {
			break
		}
		offset += pageLimit
	}

	return items, nil
}

// artistGenres возвращает жанры исполнителей треков по ID исполнителя
func (c *Client) artistGenres(ctx context.Context, items []spotify.PlaylistItem) (map[spotify.ID][]string, error) {
	var ids []spotify.ID
	seen := make(map[spotify.ID]bool)
	for _, item := range items {
		if item.Track.Track == nil {
			continue
		}
		for _, a := range item.Track.Track.Artists {
			if a.ID != "" && !seen[a.ID] {
				seen[a.ID] = true
				ids = append(ids, a.ID)
			}
		}
	}

	genres := make(map[spotify.ID][]string, len(ids))
	for i := 0; i < len(ids); i += artistBatch {
		end := min(i+artistBatch, len(ids))
		batch := ids[i:end]

		var artists []*spotify.FullArtist
		err := c.retry(func() error {
			a, err := c.client.GetArtists(ctx, batch...)
			if err != nil {
				return err
			}
			artists = a
			return nil
		})
		if err != nil {
			return genres, errors.Wrap(err, "ошибка загрузки исполнителей")
		}

		for _, a := range artists {
			if a != nil {
				genres[a.ID] = a.Genres
			}
		}
	}

	return genres, nil
}

// ToCatalogTracks преобразует элементы плейлиста в треки каталога.
// Локальные файлы и подкасты пропускаются
func ToCatalogTracks(items []spotify.PlaylistItem, artistGenres map[spotify.ID][]string) []catalog.Track {
	title := cases.Title(language.English)
	tracks := make([]catalog.Track, 0, len(items))

	for _, item := range items {
		ft := item.Track.Track
		if item.IsLocal || ft == nil || ft.ID == "" {
			continue
		}

		t := catalog.Track{
			ID:         string(ft.ID),
			Title:      ft.Name,
			Album:      ft.Album.Name,
			Year:       releaseYear(ft.Album.ReleaseDate),
			DurationMS: int64(ft.Duration),
			AudioURL:   ft.PreviewURL,
			SpotifyURL: ft.ExternalURLs["spotify"],
			AddedBy: catalog.AddedBy{
				Name: item.AddedBy.DisplayName,
			},
		}
		if t.AddedBy.Name == "" {
			t.AddedBy.Name = item.AddedBy.ID
		}
		if len(item.AddedBy.Images) > 0 {
			t.AddedBy.Avatar = item.AddedBy.Images[0].URL
		}
		if len(ft.Album.Images) > 0 {
			t.CoverURL = ft.Album.Images[0].URL
		}
		if addedAt, err := time.Parse(time.RFC3339, item.AddedAt); err == nil {
			t.AddedAt = addedAt
		}

		seen := make(map[string]bool)
		for _, a := range ft.Artists {
			t.Artists = append(t.Artists, a.Name)
			for _, g := range artistGenres[a.ID] {
				g = title.String(g)
				if !seen[g] {
					seen[g] = true
					t.Genres = append(t.Genres, g)
				}
			}
		}

		tracks = append(tracks, t)
	}

	return tracks
}

// WritePlaylistJSON сохраняет снимок плейлиста в JSON файл
func WritePlaylistJSON(path string, p *Playlist) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, "ошибка сериализации плейлиста")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "ошибка создания каталога")
		}
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return errors.Wrap(err, "ошибка записи файла плейлиста")
	}
	return nil
}

// releaseYear извлекает год из даты выпуска вида 2020, 2020-10 или 2020-10-30
func releaseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// retry повторяет запрос с линейно растущей задержкой
func (c *Client) retry(fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelay * time.Duration(i+1))
		}
	}
	return errors.Wrap(lastErr, "превышено число попыток")
}

// isRetryable проверяет, можно ли повторить запрос после ошибки
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractPlaylistID извлекает ID плейлиста из адреса или URI Spotify
func extractPlaylistID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:playlist:") {
		return strings.TrimPrefix(input, "spotify:playlist:")
	}

	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/playlist/") {
		parts := strings.Split(input, "/playlist/")
		if len(parts) >= 2 {
			id := strings.Split(parts[len(parts)-1], "?")[0]
			return strings.TrimRight(id, "/")
		}
	}

	return input
}
