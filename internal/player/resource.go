// Package player содержит медиаресурс для воспроизведения аудио и события, которые он публикует
package player

import (
	"sync"
	"time"
)

const eventBufferSize = 16

// EventKind тип события медиаресурса
type EventKind int

const (
	// EventPosition позиция воспроизведения изменилась
	EventPosition EventKind = iota
	// EventDuration источник готов, длительность известна (0, если определить не удалось)
	EventDuration
	// EventEnded воспроизведение дошло до конца
	EventEnded
	// EventError источник не удалось открыть или декодировать
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventPosition:
		return "position"
	case EventDuration:
		return "duration"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event событие медиаресурса. Seq совпадает с номером загрузки, к которой относится событие
type Event struct {
	Seq      uint64
	Kind     EventKind
	Position time.Duration
	Duration time.Duration
	Err      error
}

// Resource единственный аудиоресурс приложения.
// Load назначает новый источник и закрывает подписку предыдущего
type Resource interface {
	Load(src string) *Subscription
	Play()
	Pause()
	Seek(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	Close() error
}

// Subscription события одного загруженного источника.
// Done закрывается, когда источник заменен или ресурс закрыт
type Subscription struct {
	Seq    uint64
	Events <-chan Event
	Done   <-chan struct{}

	eventCh   chan Event
	doneCh    chan struct{}
	closeOnce sync.Once
}

func newSubscription(seq uint64) *Subscription {
	s := &Subscription{
		Seq:     seq,
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

// Closed проверяет, отключена ли подписка
func (s *Subscription) Closed() bool {
	select {
	case <-s.doneCh:
		return true
	default:
		return false
	}
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() {
		close(s.doneCh)
	})
}

// send отправляет событие без блокировки. При переполненном буфере событие отбрасывается
func (s *Subscription) send(e Event) {
	if s.Closed() {
		return
	}
	e.Seq = s.Seq
	select {
	case s.eventCh <- e:
	default:
	}
}

// sendFinal доставляет завершающее событие (ended, error), ожидая места в буфере,
// пока подписка не закрыта
func (s *Subscription) sendFinal(e Event) {
	e.Seq = s.Seq
	select {
	case s.eventCh <- e:
	case <-s.doneCh:
	}
}
