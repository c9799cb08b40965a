package streaming

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/hazadus/go-vibes/internal/utils"
)

// ErrUnsupportedSource возвращается для локатора, который нельзя открыть
var ErrUnsupportedSource = errors.New("неподдерживаемый источник аудио")

// ObjectStore хранилище объектов, из которого читаются локаторы s3://bucket/key
type ObjectStore interface {
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// Opener открывает аудиоисточник по локатору
type Opener struct {
	BufferSize int
	Objects    ObjectStore
	Client     *http.Client
}

// NewOpener создает Opener с общим HTTP клиентом для потокового чтения
func NewOpener(bufferSize int, objects ObjectStore) *Opener {
	return &Opener{
		BufferSize: bufferSize,
		Objects:    objects,
		Client:     newHTTPClient(),
	}
}

// Open открывает источник: http(s) как поток, s3:// через хранилище объектов, остальное как локальный файл
func (o *Opener) Open(ctx context.Context, locator string) (io.ReadCloser, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, errors.Wrap(ErrUnsupportedSource, "пустой адрес")
	}

	scheme := ""
	if idx := strings.Index(locator, "://"); idx > 0 {
		scheme = strings.ToLower(locator[:idx])
	}

	switch scheme {
	case "http", "https":
		r, err := NewReader(ctx, o.Client, locator, o.BufferSize)
		if err != nil {
			return nil, err
		}
		return r, nil
	case "s3":
		bucket, key, err := ParseS3Locator(locator)
		if err != nil {
			return nil, err
		}
		if o.Objects == nil {
			return nil, errors.Wrapf(ErrUnsupportedSource, "хранилище S3 не настроено для %s", locator)
		}
		return o.Objects.Open(ctx, bucket, key)
	case "", "file":
		path, err := utils.ExpandHome(strings.TrimPrefix(locator, "file://"))
		if err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrap(err, "ошибка открытия файла")
		}
		return f, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedSource, "схема %q", scheme)
	}
}

// ParseS3Locator разбирает локатор вида s3://bucket/path/to/key
func ParseS3Locator(locator string) (bucket, key string, err error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", "", errors.Wrap(err, "неверный локатор S3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.Wrapf(ErrUnsupportedSource, "неполный локатор S3 %q", locator)
	}
	return bucket, key, nil
}
