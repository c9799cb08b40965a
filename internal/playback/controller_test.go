package playback

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/player"
)

func testTracks() []catalog.Track {
	return []catalog.Track{
		{ID: "a", Title: "Alpha", AudioURL: "a.mp3", Genres: []string{"Pop"}},
		{ID: "b", Title: "Bravo", AudioURL: "b.mp3", Genres: []string{"Funk"}},
		{ID: "c", Title: "Charlie", AudioURL: "c.mp3", Genres: []string{"Pop"}},
	}
}

type fixture struct {
	res     *player.Mock
	ctrl    *Controller
	visible []catalog.Track
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{res: player.NewMock(), visible: testTracks()}
	f.ctrl = NewController(f.res, func() []catalog.Track { return f.visible }, opts)
	return f
}

// playReady запускает трек и подтверждает готовность источника
func (f *fixture) playReady(t *testing.T, tr catalog.Track, d time.Duration) {
	t.Helper()
	f.ctrl.Play(tr)
	require.True(t, f.ctrl.Handle(f.res.Ready(d)))
}

func TestInitialState(t *testing.T) {
	f := newFixture(t, Options{})
	s := f.ctrl.Snapshot()

	assert.Equal(t, StateIdle, s.State)
	assert.False(t, s.Active())
	assert.Nil(t, f.ctrl.Subscription())

	f.ctrl.PlayPause()
	f.ctrl.SeekTo(1000)
	assert.False(t, f.ctrl.Next())
	assert.False(t, f.ctrl.Prev())
	assert.Equal(t, StateIdle, f.ctrl.Snapshot().State)
	assert.Empty(t, f.res.Loads)
}

func TestPlayLoadsTrack(t *testing.T) {
	f := newFixture(t, Options{})
	tracks := testTracks()

	f.ctrl.Play(tracks[0])
	s := f.ctrl.Snapshot()
	assert.Equal(t, StateLoading, s.State)
	assert.True(t, s.IsPlaying)
	assert.Equal(t, int64(0), s.PositionMS)
	assert.Equal(t, int64(0), s.DurationMS)
	assert.Equal(t, []string{"a.mp3"}, f.res.Loads)
	assert.Same(t, f.res.Current(), f.ctrl.Subscription())

	require.True(t, f.ctrl.Handle(f.res.Ready(3*time.Minute)))
	s = f.ctrl.Snapshot()
	assert.Equal(t, StatePlaying, s.State)
	assert.Equal(t, int64(180000), s.DurationMS)
	assert.True(t, f.res.IsPlaying())
}

func TestPlaySameTrackToggles(t *testing.T) {
	f := newFixture(t, Options{})
	a := testTracks()[0]
	f.playReady(t, a, 3*time.Minute)
	f.ctrl.Handle(f.res.Advance(42 * time.Second))

	f.ctrl.Play(a)
	s := f.ctrl.Snapshot()
	assert.Equal(t, StatePaused, s.State)
	assert.False(t, s.IsPlaying)
	assert.Equal(t, int64(42000), s.PositionMS)
	assert.Len(t, f.res.Loads, 1, "источник не перезагружается")

	f.ctrl.Play(a)
	assert.Equal(t, StatePlaying, f.ctrl.Snapshot().State)
	assert.Equal(t, int64(42000), f.ctrl.Snapshot().PositionMS)
}

func TestPlayPauseWhileLoading(t *testing.T) {
	f := newFixture(t, Options{})
	f.ctrl.Play(testTracks()[0])

	f.ctrl.PlayPause()
	s := f.ctrl.Snapshot()
	assert.Equal(t, StateLoading, s.State)
	assert.False(t, s.IsPlaying)

	f.ctrl.Handle(f.res.Ready(time.Minute))
	assert.Equal(t, StatePaused, f.ctrl.Snapshot().State)
	assert.False(t, f.res.IsPlaying())
}

func TestNewTrackReplacesPrevious(t *testing.T) {
	f := newFixture(t, Options{})
	tracks := testTracks()
	f.playReady(t, tracks[0], time.Minute)
	first := f.ctrl.Subscription()
	stale := f.res.Advance(10 * time.Second)

	f.ctrl.Play(tracks[1])
	assert.True(t, first.Closed(), "подписка прошлого трека отсоединена")
	assert.Equal(t, "b", f.ctrl.Snapshot().Track.ID)

	assert.False(t, f.ctrl.Handle(stale), "события прошлой загрузки игнорируются")
	assert.Equal(t, int64(0), f.ctrl.Snapshot().PositionMS)
}

func TestNextPrev(t *testing.T) {
	f := newFixture(t, Options{})
	tracks := testTracks()
	f.playReady(t, tracks[0], time.Minute)

	assert.False(t, f.ctrl.Prev(), "на первом треке prev ничего не делает")
	assert.Equal(t, "a", f.ctrl.Snapshot().Track.ID)

	assert.True(t, f.ctrl.Next())
	assert.Equal(t, "b", f.ctrl.Snapshot().Track.ID)
	assert.Equal(t, StateLoading, f.ctrl.Snapshot().State)

	assert.True(t, f.ctrl.Next())
	f.ctrl.Handle(f.res.Ready(time.Minute))
	f.ctrl.Handle(f.res.Advance(20 * time.Second))

	before := f.ctrl.Snapshot()
	loads := len(f.res.Loads)
	assert.False(t, f.ctrl.Next(), "на последнем треке next ничего не делает")
	assert.Equal(t, before, f.ctrl.Snapshot())
	assert.Len(t, f.res.Loads, loads)

	assert.True(t, f.ctrl.Prev())
	assert.Equal(t, "b", f.ctrl.Snapshot().Track.ID)
}

func TestPrevRespectsFilteredView(t *testing.T) {
	tracks := testTracks()

	f := newFixture(t, Options{})
	f.ctrl.Play(tracks[0])
	f.ctrl.Play(tracks[1])
	assert.True(t, f.ctrl.Prev())
	assert.Equal(t, "a", f.ctrl.Snapshot().Track.ID)

	f = newFixture(t, Options{})
	f.ctrl.Play(tracks[0])
	f.ctrl.Play(tracks[1])
	// фильтр по жанру убрал A из видимого списка
	f.visible = []catalog.Track{tracks[1]}
	assert.False(t, f.ctrl.Prev())
	assert.Equal(t, "b", f.ctrl.Snapshot().Track.ID)

	// текущий трек пропал из списка
	f.visible = []catalog.Track{tracks[0], tracks[2]}
	assert.False(t, f.ctrl.Next())
	assert.False(t, f.ctrl.Prev())
}

func TestSeekClamps(t *testing.T) {
	f := newFixture(t, Options{})
	f.playReady(t, testTracks()[0], 3*time.Minute)

	f.ctrl.SeekTo(-50)
	assert.Equal(t, int64(0), f.ctrl.Snapshot().PositionMS)

	f.ctrl.SeekTo(180000 + 1000)
	assert.Equal(t, int64(180000), f.ctrl.Snapshot().PositionMS)

	f.ctrl.SeekTo(60000)
	assert.Equal(t, int64(60000), f.ctrl.Snapshot().PositionMS)
	assert.Equal(t, []time.Duration{0, 3 * time.Minute, time.Minute}, f.res.Seeks)
	assert.True(t, f.ctrl.Snapshot().IsPlaying, "перемотка не меняет is_playing")

	f.ctrl.PlayPause()
	f.ctrl.SeekBy(-5000)
	s := f.ctrl.Snapshot()
	assert.Equal(t, int64(55000), s.PositionMS)
	assert.False(t, s.IsPlaying)
}

func TestSeekUnknownDuration(t *testing.T) {
	f := newFixture(t, Options{})
	f.ctrl.Play(testTracks()[0])

	f.ctrl.SeekTo(1000)
	assert.Empty(t, f.res.Seeks, "во время загрузки перемотка не выполняется")

	f.ctrl.Handle(f.res.Ready(0))
	f.ctrl.SeekTo(1000)
	assert.Empty(t, f.res.Seeks, "без длительности перемотка не выполняется")
	assert.Equal(t, StatePlaying, f.ctrl.Snapshot().State)
}

func TestDurationFallsBackToCatalog(t *testing.T) {
	f := newFixture(t, Options{})
	tr := testTracks()[0]
	tr.DurationMS = 180000
	f.playReady(t, tr, 0)

	s := f.ctrl.Snapshot()
	assert.Equal(t, StatePlaying, s.State)
	assert.Equal(t, int64(180000), s.DurationMS)

	f.ctrl.SeekTo(5000)
	assert.Equal(t, []time.Duration{5 * time.Second}, f.res.Seeks)

	// окончание без длительности от ресурса ставит позицию в конец трека по каталогу
	f.visible = []catalog.Track{tr}
	assert.True(t, f.ctrl.Handle(f.res.Finish()))
	s = f.ctrl.Snapshot()
	assert.Equal(t, StatePaused, s.State)
	assert.Equal(t, int64(180000), s.PositionMS)
}

func TestEndedAdvances(t *testing.T) {
	f := newFixture(t, Options{})
	tracks := testTracks()
	f.playReady(t, tracks[1], time.Minute)

	assert.True(t, f.ctrl.Handle(f.res.Finish()))
	s := f.ctrl.Snapshot()
	assert.Equal(t, "c", s.Track.ID)
	assert.Equal(t, StateLoading, s.State)
	assert.True(t, s.IsPlaying)
}

func TestEndedOnLastTrackPauses(t *testing.T) {
	f := newFixture(t, Options{})
	f.playReady(t, testTracks()[2], 2*time.Minute)
	f.ctrl.Handle(f.res.Advance(119 * time.Second))

	assert.True(t, f.ctrl.Handle(f.res.Finish()))
	s := f.ctrl.Snapshot()
	assert.Equal(t, "c", s.Track.ID)
	assert.Equal(t, StatePaused, s.State)
	assert.False(t, s.IsPlaying)
	assert.Equal(t, int64(120000), s.PositionMS)
	assert.Len(t, f.res.Loads, 1)

	// повторный запуск начинает трек сначала
	f.ctrl.PlayPause()
	s = f.ctrl.Snapshot()
	assert.Equal(t, StatePlaying, s.State)
	assert.Equal(t, int64(0), s.PositionMS)
	assert.Equal(t, []time.Duration{0}, f.res.Seeks)
}

func TestFailureWithoutAutoSkip(t *testing.T) {
	f := newFixture(t, Options{})
	f.ctrl.Play(testTracks()[0])

	assert.True(t, f.ctrl.Handle(f.res.Fail(errors.New("404"))))
	s := f.ctrl.Snapshot()
	assert.Equal(t, StateFailed, s.State)
	assert.False(t, s.IsPlaying)
	require.NotNil(t, s.Notice)
	assert.Equal(t, "a", s.Notice.TrackID)
	assert.Contains(t, s.Notice.Message(), "Alpha")
	assert.Contains(t, s.Notice.Message(), "404")

	// в состоянии Failed переключатель повторяет загрузку
	f.ctrl.PlayPause()
	s = f.ctrl.Snapshot()
	assert.Equal(t, StateLoading, s.State)
	assert.Nil(t, s.Notice)
	assert.Equal(t, []string{"a.mp3", "a.mp3"}, f.res.Loads)
}

func TestFailureAutoSkip(t *testing.T) {
	f := newFixture(t, Options{AutoSkipFailed: true})
	tracks := testTracks()
	f.ctrl.Play(tracks[1])

	f.ctrl.Handle(f.res.Fail(errors.New("decode")))
	s := f.ctrl.Snapshot()
	assert.Equal(t, "c", s.Track.ID)
	assert.Equal(t, StateLoading, s.State)
	require.NotNil(t, s.Notice)
	assert.Equal(t, "b", s.Notice.TrackID)

	// последний трек: переходить некуда
	f.ctrl.Handle(f.res.Fail(errors.New("decode")))
	s = f.ctrl.Snapshot()
	assert.Equal(t, "c", s.Track.ID)
	assert.Equal(t, StateFailed, s.State)

	f.ctrl.DismissNotice()
	assert.Nil(t, f.ctrl.Snapshot().Notice)
}

func TestPositionEventsClamp(t *testing.T) {
	f := newFixture(t, Options{})
	f.playReady(t, testTracks()[0], 10*time.Second)

	f.ctrl.Handle(f.res.Advance(15 * time.Second))
	assert.Equal(t, int64(10000), f.ctrl.Snapshot().PositionMS)
	assert.InDelta(t, 1.0, f.ctrl.Snapshot().Progress(), 0.0001)
}

func TestSnapshotIsCopy(t *testing.T) {
	f := newFixture(t, Options{})
	f.ctrl.Play(testTracks()[0])

	s := f.ctrl.Snapshot()
	s.Track.Title = "changed"
	assert.Equal(t, "Alpha", f.ctrl.Snapshot().Track.Title)
	assert.True(t, s.IsCurrent("a"))
	assert.False(t, s.IsCurrent("b"))
}

func TestClose(t *testing.T) {
	f := newFixture(t, Options{})
	f.playReady(t, testTracks()[0], time.Minute)
	sub := f.ctrl.Subscription()
	ev := f.res.Advance(time.Second)

	require.NoError(t, f.ctrl.Close())
	assert.True(t, f.res.IsClosed())
	assert.True(t, sub.Closed())
	assert.Nil(t, f.ctrl.Subscription())
	assert.False(t, f.ctrl.Handle(ev))
	assert.Equal(t, StateIdle, f.ctrl.Snapshot().State)

	f.ctrl.Play(testTracks()[1])
	assert.Len(t, f.res.Loads, 1, "после Close треки не загружаются")
	require.NoError(t, f.ctrl.Close())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "playing", StatePlaying.String())
	assert.Equal(t, "paused", StatePaused.String())
	assert.Equal(t, "failed", StateFailed.String())
}
