package streaming

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

type rangeRecorder struct {
	mu     sync.Mutex
	ranges []string
}

func (r *rangeRecorder) add(v string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges = append(r.ranges, v)
}

func (r *rangeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ranges...)
}

func TestReaderSeekWithRange(t *testing.T) {
	data := testData(1000)
	rec := &rangeRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.Header.Get("Range"))
		http.ServeContent(w, r, "song.mp3", time.Time{}, bytes.NewReader(data))
	}))
	defer server.Close()

	sr, err := NewReader(context.Background(), nil, server.URL, 16)
	require.NoError(t, err)
	defer sr.Close()

	assert.Equal(t, int64(1000), sr.Size())

	buf := make([]byte, 10)
	_, err = io.ReadFull(sr, buf)
	require.NoError(t, err)
	assert.Equal(t, data[:10], buf)

	pos, err := sr.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Equal(t, int64(10), pos)
	assert.Len(t, rec.all(), 1, "текущая позиция не требует нового запроса")

	pos, err = sr.Seek(500, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(500), pos)
	_, err = io.ReadFull(sr, buf)
	require.NoError(t, err)
	assert.Equal(t, data[500:510], buf)
	assert.Contains(t, rec.all(), "bytes=500-")

	pos, err = sr.Seek(-10, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(990), pos)
	tail, err := io.ReadAll(sr)
	require.NoError(t, err)
	assert.Equal(t, data[990:], tail)

	pos, err = sr.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), pos)
	n, err := sr.Read(buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)

	_, err = sr.Seek(0, io.SeekStart)
	require.NoError(t, err)
	all, err := io.ReadAll(sr)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	_, err = sr.Seek(-1, io.SeekStart)
	assert.Error(t, err)
}

func TestReaderSeekWithoutRangeSupport(t *testing.T) {
	data := testData(1000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		_, _ = w.Write(data)
	}))
	defer server.Close()

	sr, err := NewReader(context.Background(), nil, server.URL, 16)
	require.NoError(t, err)
	defer sr.Close()

	assert.Equal(t, int64(1000), sr.Size())

	pos, err := sr.Seek(600, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(600), pos)

	buf := make([]byte, 5)
	_, err = io.ReadFull(sr, buf)
	require.NoError(t, err)
	assert.Equal(t, data[600:605], buf)
}

func TestReaderCloseTwice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("mp3"))
	}))
	defer server.Close()

	sr, err := NewReader(context.Background(), nil, server.URL, 0)
	require.NoError(t, err)
	require.NoError(t, sr.Close())
	assert.NoError(t, sr.Close())

	n, err := sr.Read(make([]byte, 4))
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestTotalSize(t *testing.T) {
	assert.Equal(t, int64(1000), totalSize("bytes 0-999/1000"))
	assert.Equal(t, int64(-1), totalSize("bytes 0-999/*"))
	assert.Equal(t, int64(-1), totalSize(""))
}
