// Package streaming открывает аудиоисточники: HTTP-потоки, объекты S3 и локальные файлы
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultBufferSize размер буфера потокового чтения по умолчанию
const DefaultBufferSize = 256 * 1024

// Reader буферизованный HTTP-поток. Seek переоткрывает поток Range-запросом,
// поэтому декодер может вычислить длительность и перематывать трек
type Reader struct {
	ctx        context.Context
	client     *http.Client
	url        string
	bufferSize int

	reader *bufio.Reader
	resp   *http.Response
	offset int64
	size   int64
}

var _ io.ReadSeekCloser = (*Reader)(nil)

// newHTTPClient создает HTTP клиент без общего таймаута для длительного потокового чтения
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			IdleConnTimeout:       300 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}

// NewReader открывает HTTP-поток. Чтение прекращается при отмене контекста
func NewReader(ctx context.Context, client *http.Client, url string, bufferSize int) (*Reader, error) {
	if client == nil {
		client = newHTTPClient()
	}
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	sr := &Reader{
		ctx:        ctx,
		client:     client,
		url:        url,
		bufferSize: bufferSize,
		size:       -1,
	}
	if err := sr.open(0); err != nil {
		return nil, err
	}
	return sr, nil
}

// open запрашивает поток с указанного смещения
func (sr *Reader) open(offset int64) error {
	req, err := http.NewRequestWithContext(sr.ctx, http.MethodGet, sr.url, nil)
	if err != nil {
		return errors.Wrap(err, "ошибка создания запроса")
	}

	req.Header.Set("Accept-Encoding", "identity") // сжатие мешает декодеру
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("User-Agent", "go-vibes/1.0")

	resp, err := sr.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "ошибка выполнения запроса")
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		if sr.size < 0 {
			sr.size = totalSize(resp.Header.Get("Content-Range"))
		}
	case http.StatusOK:
		if sr.size < 0 {
			sr.size = resp.ContentLength
		}
		// сервер отдал поток целиком: пропускаем байты до нужного смещения
		if offset > 0 {
			if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
				resp.Body.Close()
				return errors.Wrap(err, "ошибка перемотки потока")
			}
		}
	default:
		resp.Body.Close()
		return errors.Newf("ошибка HTTP: %s", resp.Status)
	}

	sr.resp = resp
	sr.reader = bufio.NewReaderSize(resp.Body, sr.bufferSize)
	sr.offset = offset
	return nil
}

// totalSize извлекает полный размер из заголовка вида "bytes 0-99/1000"
func totalSize(contentRange string) int64 {
	idx := strings.LastIndex(contentRange, "/")
	if idx < 0 {
		return -1
	}
	size, err := strconv.ParseInt(strings.TrimSpace(contentRange[idx+1:]), 10, 64)
	if err != nil {
		return -1
	}
	return size
}

// Read реализует интерфейс io.Reader для потокового чтения
func (sr *Reader) Read(p []byte) (n int, err error) {
	if sr.reader == nil {
		return 0, io.EOF
	}
	n, err = sr.reader.Read(p)
	sr.offset += int64(n)
	return n, err
}

// Seek реализует io.Seeker. Короткий переход вперед выполняется внутри буфера,
// остальные переходы открывают поток заново с нового смещения
func (sr *Reader) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = sr.offset + offset
	case io.SeekEnd:
		if sr.size < 0 {
			return 0, errors.New("размер потока неизвестен")
		}
		target = sr.size + offset
	default:
		return 0, errors.Newf("неверное значение whence: %d", whence)
	}

	if target < 0 {
		return 0, errors.Newf("отрицательная позиция: %d", target)
	}
	if target == sr.offset {
		return target, nil
	}

	if sr.reader != nil && target > sr.offset && target-sr.offset <= int64(sr.reader.Buffered()) {
		n, err := sr.reader.Discard(int(target - sr.offset))
		sr.offset += int64(n)
		return sr.offset, err
	}

	sr.closeBody()
	if sr.size >= 0 && target >= sr.size {
		sr.offset = target
		return target, nil
	}
	if err := sr.open(target); err != nil {
		return 0, err
	}
	return target, nil
}

// Close закрывает соединение. Повторный вызов ничего не делает
func (sr *Reader) Close() error {
	return sr.closeBody()
}

func (sr *Reader) closeBody() error {
	if sr.resp == nil {
		return nil
	}
	err := sr.resp.Body.Close()
	sr.resp = nil
	sr.reader = nil
	return err
}

// Size возвращает размер потока в байтах или -1, если сервер его не сообщил
func (sr *Reader) Size() int64 {
	return sr.size
}
