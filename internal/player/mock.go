package player

import (
	"time"
)

// Mock тестовый медиаресурс: запоминает вызовы и позволяет публиковать события вручную
type Mock struct {
	seq      uint64
	sub      *Subscription
	playing  bool
	position time.Duration
	duration time.Duration
	closed   bool

	Loads      []string
	Seeks      []time.Duration
	PlayCalls  int
	PauseCalls int
}

var _ Resource = (*Mock)(nil)

// NewMock создает тестовый медиаресурс
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Load(src string) *Subscription {
	if m.sub != nil {
		m.sub.close()
	}
	m.seq++
	m.sub = newSubscription(m.seq)
	m.Loads = append(m.Loads, src)
	m.playing = false
	m.position = 0
	m.duration = 0
	return m.sub
}

func (m *Mock) Play() {
	m.PlayCalls++
	m.playing = true
}

func (m *Mock) Pause() {
	m.PauseCalls++
	m.playing = false
}

func (m *Mock) Seek(pos time.Duration) {
	m.Seeks = append(m.Seeks, pos)
	m.position = pos
}

func (m *Mock) Position() time.Duration { return m.position }

func (m *Mock) Duration() time.Duration { return m.duration }

func (m *Mock) Close() error {
	m.closed = true
	if m.sub != nil {
		m.sub.close()
		m.sub = nil
	}
	return nil
}

// IsPlaying сообщает, был ли последним вызван Play
func (m *Mock) IsPlaying() bool { return m.playing }

// IsClosed сообщает, был ли вызван Close
func (m *Mock) IsClosed() bool { return m.closed }

// Current возвращает подписку текущего источника
func (m *Mock) Current() *Subscription { return m.sub }

// Ready имитирует готовность источника с указанной длительностью
func (m *Mock) Ready(duration time.Duration) Event {
	m.duration = duration
	return m.emit(Event{Kind: EventDuration, Duration: duration})
}

// Advance имитирует изменение позиции воспроизведения
func (m *Mock) Advance(pos time.Duration) Event {
	m.position = pos
	return m.emit(Event{Kind: EventPosition, Position: pos})
}

// Finish имитирует окончание трека
func (m *Mock) Finish() Event {
	m.position = m.duration
	m.playing = false
	return m.emit(Event{Kind: EventEnded, Position: m.duration, Duration: m.duration})
}

// Fail имитирует ошибку загрузки источника
func (m *Mock) Fail(err error) Event {
	return m.emit(Event{Kind: EventError, Err: err})
}

// emit отправляет событие в текущую подписку и возвращает его с номером загрузки
func (m *Mock) emit(e Event) Event {
	if m.sub == nil {
		return e
	}
	m.sub.send(e)
	e.Seq = m.sub.Seq
	return e
}
