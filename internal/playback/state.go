package playback

import (
	"fmt"

	"github.com/hazadus/go-vibes/internal/catalog"
)

// State состояние сессии воспроизведения
type State int

const (
	// StateIdle текущего трека нет
	StateIdle State = iota
	// StateLoading трек назначен, источник еще не готов
	StateLoading
	// StatePlaying источник воспроизводится
	StatePlaying
	// StatePaused воспроизведение приостановлено
	StatePaused
	// StateFailed источник текущего трека не удалось загрузить
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Notice сообщение о сбое воспроизведения, которое пользователь может скрыть
type Notice struct {
	TrackID string
	Title   string
	Err     error
}

// Message возвращает текст сообщения для отображения
func (n Notice) Message() string {
	if n.Err == nil {
		return fmt.Sprintf("Не удалось воспроизвести «%s»", n.Title)
	}
	return fmt.Sprintf("Не удалось воспроизвести «%s»: %v", n.Title, n.Err)
}

// Session снимок состояния воспроизведения
type Session struct {
	Track      *catalog.Track
	State      State
	IsPlaying  bool
	PositionMS int64
	// DurationMS равна 0, пока длительность неизвестна
	DurationMS int64
	Notice     *Notice
}

// Active сообщает, назначен ли текущий трек
func (s Session) Active() bool {
	return s.Track != nil
}

// IsCurrent сообщает, является ли трек с указанным ID текущим
func (s Session) IsCurrent(id string) bool {
	return s.Track != nil && s.Track.ID == id
}

// Progress возвращает долю проигранного в диапазоне [0, 1]
func (s Session) Progress() float64 {
	if s.DurationMS <= 0 {
		return 0
	}
	p := float64(s.PositionMS) / float64(s.DurationMS)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
