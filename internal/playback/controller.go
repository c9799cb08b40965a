package playback

import (
	"time"

	zlog "github.com/rs/zerolog/log"

	"github.com/hazadus/go-vibes/internal/catalog"
	"github.com/hazadus/go-vibes/internal/player"
)

// Options настройки контроллера воспроизведения
type Options struct {
	// AutoSkipFailed переключает на следующий видимый трек, если источник не загрузился
	AutoSkipFailed bool
}

// Controller единственный владелец медиаресурса и состояния воспроизведения.
// Методы вызываются только из одного цикла событий.
type Controller struct {
	res     player.Resource
	visible func() []catalog.Track
	opts    Options

	sub        *player.Subscription
	track      *catalog.Track
	state      State
	playing    bool
	positionMS int64
	durationMS int64
	ended      bool
	notice     *Notice
	closed     bool
}

// NewController создает контроллер. visible возвращает текущий отфильтрованный список треков
func NewController(res player.Resource, visible func() []catalog.Track, opts Options) *Controller {
	if visible == nil {
		visible = func() []catalog.Track { return nil }
	}
	return &Controller{
		res:     res,
		visible: visible,
		opts:    opts,
	}
}

// Play начинает воспроизведение трека с начала. Для текущего трека переключает паузу
func (c *Controller) Play(t catalog.Track) {
	if c.closed {
		return
	}
	if c.track != nil && c.track.ID == t.ID {
		c.PlayPause()
		return
	}
	c.load(t)
}

func (c *Controller) load(t catalog.Track) {
	c.track = &t
	c.sub = c.res.Load(t.AudioURL)
	c.state = StateLoading
	c.playing = true
	c.positionMS = 0
	c.durationMS = 0
	c.ended = false
	c.res.Play()

	zlog.Debug().Str("track", t.ID).Str("src", t.AudioURL).Uint64("seq", c.sub.Seq).Msg("загрузка трека")
}

// PlayPause переключает воспроизведение и паузу текущего трека
func (c *Controller) PlayPause() {
	if c.closed || c.track == nil {
		return
	}

	switch c.state {
	case StateFailed:
		c.Retry()
		return
	case StateLoading:
		// до готовности источника меняется только запрошенное состояние
		c.playing = !c.playing
		if c.playing {
			c.res.Play()
		} else {
			c.res.Pause()
		}
		return
	}

	if c.playing {
		c.playing = false
		c.state = StatePaused
		c.res.Pause()
		return
	}

	if c.ended {
		c.ended = false
		c.positionMS = 0
		c.res.Seek(0)
	}
	c.playing = true
	c.state = StatePlaying
	c.res.Play()
}

// Next переключает на следующий трек видимого списка. Возвращает false, если переключения не было
func (c *Controller) Next() bool {
	return c.step(1)
}

// Prev переключает на предыдущий трек видимого списка. Возвращает false, если переключения не было
func (c *Controller) Prev() bool {
	return c.step(-1)
}

func (c *Controller) step(delta int) bool {
	if c.closed || c.track == nil {
		return false
	}

	tracks := c.visible()
	for i := range tracks {
		if tracks[i].ID != c.track.ID {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(tracks) {
			return false
		}
		c.load(tracks[j])
		return true
	}
	return false
}

// SeekTo перематывает текущий трек на позицию в миллисекундах.
// Позиция ограничивается диапазоном [0, длительность]. Пока длительность неизвестна, вызов ничего не делает
func (c *Controller) SeekTo(positionMS int64) {
	if c.closed || c.track == nil || c.durationMS <= 0 {
		return
	}
	if c.state != StatePlaying && c.state != StatePaused {
		return
	}

	if positionMS < 0 {
		positionMS = 0
	}
	if positionMS > c.durationMS {
		positionMS = c.durationMS
	}

	c.res.Seek(time.Duration(positionMS) * time.Millisecond)
	c.positionMS = positionMS
	if positionMS < c.durationMS {
		c.ended = false
	}
}

// SeekBy сдвигает позицию на deltaMS миллисекунд
func (c *Controller) SeekBy(deltaMS int64) {
	c.SeekTo(c.positionMS + deltaMS)
}

// Handle применяет событие ресурса. События прошлых загрузок игнорируются.
// Возвращает true, если состояние изменилось
func (c *Controller) Handle(ev player.Event) bool {
	if c.closed || c.sub == nil || c.track == nil || ev.Seq != c.sub.Seq {
		return false
	}

	switch ev.Kind {
	case player.EventPosition:
		pos := ev.Position.Milliseconds()
		if c.durationMS > 0 && pos > c.durationMS {
			pos = c.durationMS
		}
		c.positionMS = pos
		return true

	case player.EventDuration:
		// источник без длины (поток без Content-Length): берем длительность из каталога
		d := ev.Duration.Milliseconds()
		if d <= 0 {
			d = c.track.DurationMS
		}
		c.durationMS = d
		if c.state == StateLoading {
			if c.playing {
				c.state = StatePlaying
			} else {
				c.state = StatePaused
			}
		}
		return true

	case player.EventEnded:
		if c.Next() {
			return true
		}
		if d := ev.Duration.Milliseconds(); d > 0 {
			c.durationMS = d
		}
		c.positionMS = c.durationMS
		c.playing = false
		c.ended = true
		c.state = StatePaused
		c.res.Pause()
		return true

	case player.EventError:
		c.notice = &Notice{TrackID: c.track.ID, Title: c.track.Title, Err: ev.Err}
		zlog.Warn().Err(ev.Err).Str("track", c.track.ID).Msg("ошибка воспроизведения")

		if c.opts.AutoSkipFailed && c.Next() {
			return true
		}
		c.state = StateFailed
		c.playing = false
		c.res.Pause()
		return true
	}

	return false
}

// Retry повторно загружает текущий трек
func (c *Controller) Retry() {
	if c.closed || c.track == nil {
		return
	}
	if c.notice != nil && c.notice.TrackID == c.track.ID {
		c.notice = nil
	}
	c.load(*c.track)
}

// DismissNotice скрывает сообщение о сбое
func (c *Controller) DismissNotice() {
	c.notice = nil
}

// Subscription возвращает подписку на события текущего источника
func (c *Controller) Subscription() *player.Subscription {
	return c.sub
}

// Current возвращает текущий трек или nil
func (c *Controller) Current() *catalog.Track {
	if c.track == nil {
		return nil
	}
	t := *c.track
	return &t
}

// Snapshot возвращает копию состояния воспроизведения
func (c *Controller) Snapshot() Session {
	s := Session{
		Track:      c.Current(),
		State:      c.state,
		IsPlaying:  c.playing,
		PositionMS: c.positionMS,
		DurationMS: c.durationMS,
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	return s
}

// Close отписывается от событий, освобождает ресурс и сбрасывает сессию
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.sub = nil
	c.track = nil
	c.state = StateIdle
	c.playing = false
	c.positionMS = 0
	c.durationMS = 0
	c.notice = nil
	return c.res.Close()
}
