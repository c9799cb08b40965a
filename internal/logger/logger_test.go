package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestInitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vibes.log")

	closeLog, err := Init(Config{Output: "file", Level: "warn", File: path})
	require.NoError(t, err)

	zlog.Info().Msg("не попадет в журнал")
	zlog.Warn().Str("track", "1").Msg("ошибка воспроизведения")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"track":"1"`)
	assert.NotContains(t, string(data), "не попадет")
}

func TestInitFileWithoutPath(t *testing.T) {
	_, err := Init(Config{Output: "file"})
	assert.Error(t, err)
}

func TestInitDiscard(t *testing.T) {
	closeLog, err := Init(Config{Output: "discard", Level: "debug"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	assert.NoError(t, closeLog())
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
