package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTracks() []Track {
	return []Track{
		{
			ID:         "a",
			Title:      "Alpha",
			Artists:    []string{"First", "Second"},
			Album:      "One",
			Genres:     []string{"Pop"},
			DurationMS: 180000,
			AddedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			AddedBy:    AddedBy{Name: "Ada"},
			Reactions:  Reactions{Like: 1, Fire: 2, Heart: 3},
		},
		{
			ID:        "b",
			Title:     "Beta",
			Artists:   []string{"Third"},
			Genres:    []string{"Rock", "Pop"},
			AddedAt:   time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
			AddedBy:   AddedBy{Name: "Tunde"},
			Reactions: Reactions{Like: 4},
		},
	}
}

func TestMock(t *testing.T) {
	c, err := Mock()
	require.NoError(t, err)

	assert.Equal(t, 12, c.Len())
	stats := c.Stats()
	assert.Equal(t, 12, stats.Tracks)
	assert.Equal(t, 296, stats.Reactions)
	assert.Equal(t, 5, stats.Contributors)
	assert.Equal(t, time.Date(2025, 10, 12, 18, 24, 0, 0, time.UTC), stats.LastAdded.UTC())

	assert.Equal(t, []string{
		"Afrobeats", "Afropop", "Alternative", "Amapiano", "Electronic",
		"Funk", "Indie", "Pop", "R&B", "Synthwave",
	}, c.Genres())

	for _, tr := range c.Tracks() {
		assert.NotEmpty(t, tr.AudioURL, "у трека %s нет audio_url", tr.ID)
		assert.NotEmpty(t, tr.Artists, "у трека %s нет исполнителей", tr.ID)
	}
}

func TestNewRejectsInvalidTracks(t *testing.T) {
	tests := []struct {
		name   string
		tracks []Track
	}{
		{"пустой id", []Track{{Title: "x"}}},
		{"повтор id", []Track{{ID: "a"}, {ID: "a"}}},
		{"отрицательная длительность", []Track{{ID: "a", DurationMS: -1}}},
		{"отрицательные реакции", []Track{{ID: "a", Reactions: Reactions{Fire: -2}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tracks)
			assert.Error(t, err)
		})
	}
}

func TestTracksReturnsCopy(t *testing.T) {
	c, err := New(sampleTracks())
	require.NoError(t, err)

	tracks := c.Tracks()
	tracks[0].Title = "changed"

	tr, err := c.TrackByID("a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", tr.Title)
}

func TestTrackByID(t *testing.T) {
	c, err := New(sampleTracks())
	require.NoError(t, err)

	tr, err := c.TrackByID("b")
	require.NoError(t, err)
	assert.Equal(t, "Beta", tr.Title)

	_, err = c.TrackByID("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTrackHelpers(t *testing.T) {
	tr := sampleTracks()[0]
	assert.True(t, tr.HasGenre("Pop"))
	assert.False(t, tr.HasGenre("pop"))
	assert.Equal(t, "First, Second", tr.ArtistLine())
	assert.Equal(t, 6, tr.Reactions.Total())
}

func TestLoadFallsBackToMock(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, c.Len())

	c, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 12, c.Len())
}

func TestLoadFileMissingGivesEmpty(t *testing.T) {
	c, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracks: [\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")

	c, err := New(sampleTracks())
	require.NoError(t, err)
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())

	tr, err := loaded.TrackByID("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second"}, tr.Artists)
	assert.True(t, tr.AddedAt.Equal(sampleTracks()[0].AddedAt))
}

func TestAddTrack(t *testing.T) {
	c, err := New(sampleTracks())
	require.NoError(t, err)

	added, err := c.AddTrack(Track{Title: "Gamma"})
	require.NoError(t, err)
	assert.Equal(t, "trk-3", added.ID)
	assert.Equal(t, 3, c.Len())

	_, err = c.AddTrack(Track{ID: "a", Title: "Duplicate"})
	assert.Error(t, err)
	assert.Equal(t, 3, c.Len())
}

func TestRemoveTrack(t *testing.T) {
	c, err := New(sampleTracks())
	require.NoError(t, err)

	removed, err := c.RemoveTrack("a")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", removed.Title)
	assert.Equal(t, 1, c.Len())

	_, err = c.RemoveTrack("a")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatsIgnoresEmptyContributor(t *testing.T) {
	tracks := sampleTracks()
	tracks = append(tracks, Track{ID: "c", AddedBy: AddedBy{Name: "Ada"}}, Track{ID: "d"})

	c, err := New(tracks)
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 4, stats.Tracks)
	assert.Equal(t, 10, stats.Reactions)
	assert.Equal(t, 2, stats.Contributors)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), stats.LastAdded)
}
