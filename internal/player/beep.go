package player

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	zlog "github.com/rs/zerolog/log"
)

// DefaultProgressInterval период публикации позиции воспроизведения
const DefaultProgressInterval = 500 * time.Millisecond

// Opener открывает источник аудио по локатору
type Opener interface {
	Open(ctx context.Context, locator string) (io.ReadCloser, error)
}

// Output устройство вывода звука. Потоки воспроизводятся вместе, Lock блокирует их чтение
type Output interface {
	Init(sampleRate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Clear()
	Lock()
	Unlock()
	Close()
}

// speakerOutput вывод через динамики
type speakerOutput struct{}

func (speakerOutput) Init(sampleRate beep.SampleRate, bufferSize int) error {
	return speaker.Init(sampleRate, bufferSize)
}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Clear()               { speaker.Clear() }
func (speakerOutput) Lock()                { speaker.Lock() }
func (speakerOutput) Unlock()              { speaker.Unlock() }
func (speakerOutput) Close()               { speaker.Close() }

// BeepResource медиаресурс на основе beep: декодирует MP3 и выводит звук через Output
type BeepResource struct {
	opener           Opener
	out              Output
	progressInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	mutex  sync.Mutex

	seq        uint64
	sub        *Subscription
	loadCancel context.CancelFunc
	wantPlay   bool

	isInitialized bool
	sampleRate    beep.SampleRate

	body     io.ReadCloser
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	output   beep.Streamer
	finished bool
}

var _ Resource = (*BeepResource)(nil)

// NewBeepResource создает новый медиаресурс с выводом через динамики
func NewBeepResource(opener Opener, progressInterval time.Duration) *BeepResource {
	return NewBeepResourceWithOutput(opener, speakerOutput{}, progressInterval)
}

// NewBeepResourceWithOutput создает медиаресурс с указанным устройством вывода
func NewBeepResourceWithOutput(opener Opener, out Output, progressInterval time.Duration) *BeepResource {
	if progressInterval <= 0 {
		progressInterval = DefaultProgressInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &BeepResource{
		opener:           opener,
		out:              out,
		progressInterval: progressInterval,
		ctx:              ctx,
		cancel:           cancel,
	}
}

// Load останавливает текущий источник и асинхронно открывает новый
func (r *BeepResource) Load(src string) *Subscription {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.stopInternal()

	r.seq++
	sub := newSubscription(r.seq)
	r.sub = sub
	r.wantPlay = false

	if r.ctx.Err() != nil {
		sub.close()
		return sub
	}

	loadCtx, cancel := context.WithCancel(r.ctx)
	r.loadCancel = cancel
	go r.load(loadCtx, sub, src)

	return sub
}

func (r *BeepResource) load(ctx context.Context, sub *Subscription, src string) {
	body, err := r.opener.Open(ctx, src)
	if err != nil {
		sub.sendFinal(Event{Kind: EventError, Err: errors.Wrap(err, "ошибка открытия источника")})
		return
	}

	streamer, format, err := mp3.Decode(body)
	if err != nil {
		body.Close()
		sub.sendFinal(Event{Kind: EventError, Err: errors.Wrap(err, "ошибка декодирования MP3")})
		return
	}

	r.mutex.Lock()
	if r.seq != sub.Seq || ctx.Err() != nil {
		r.mutex.Unlock()
		streamer.Close()
		body.Close()
		return
	}

	if !r.isInitialized {
		// вывод инициализируется один раз, остальные треки ресэмплируются под его частоту
		if err := r.out.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			r.mutex.Unlock()
			streamer.Close()
			body.Close()
			sub.sendFinal(Event{Kind: EventError, Err: errors.Wrap(err, "ошибка инициализации динамиков")})
			return
		}
		r.isInitialized = true
		r.sampleRate = format.SampleRate
	}

	r.body = body
	r.streamer = streamer
	r.format = format
	r.ctrl = &beep.Ctrl{Streamer: streamer, Paused: !r.wantPlay}
	r.output = r.ctrl
	if format.SampleRate != r.sampleRate {
		r.output = beep.Resample(4, format.SampleRate, r.sampleRate, r.ctrl)
	}
	r.finished = false
	r.startInternal(sub.Seq)
	duration := r.durationInternal()
	r.mutex.Unlock()

	zlog.Debug().Str("src", src).Dur("duration", duration).Uint64("seq", sub.Seq).Msg("источник загружен")
	sub.send(Event{Kind: EventDuration, Duration: duration})

	go r.monitorProgress(ctx, sub)
}

// startInternal запускает вывод текущего потока (должен вызываться под мьютексом)
func (r *BeepResource) startInternal(seq uint64) {
	r.out.Play(beep.Seq(r.output, beep.Callback(func() {
		// callback выполняется под блокировкой вывода
		go r.onFinished(seq)
	})))
}

func (r *BeepResource) onFinished(seq uint64) {
	r.mutex.Lock()
	if r.seq != seq || r.sub == nil {
		r.mutex.Unlock()
		return
	}
	r.finished = true
	sub := r.sub
	duration := r.durationInternal()
	r.mutex.Unlock()

	sub.sendFinal(Event{Kind: EventEnded, Position: duration, Duration: duration})
}

// Play запускает воспроизведение. До готовности источника запоминает запрос
func (r *BeepResource) Play() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.wantPlay = true
	if r.ctrl == nil {
		return
	}
	r.out.Lock()
	r.ctrl.Paused = false
	r.out.Unlock()

	if r.finished {
		r.restartInternal(0)
	}
}

// Pause приостанавливает воспроизведение
func (r *BeepResource) Pause() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.wantPlay = false
	if r.ctrl == nil {
		return
	}
	r.out.Lock()
	r.ctrl.Paused = true
	r.out.Unlock()
}

// Seek перематывает текущий источник
func (r *BeepResource) Seek(pos time.Duration) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.streamer == nil {
		return
	}
	if r.finished {
		r.restartInternal(pos)
		r.notifyPosition()
		return
	}

	r.out.Lock()
	err := r.streamer.Seek(r.clampSample(pos))
	r.out.Unlock()
	if err != nil {
		zlog.Warn().Err(err).Dur("pos", pos).Msg("ошибка перемотки")
		return
	}
	r.notifyPosition()
}

// restartInternal возвращает завершившийся поток в вывод с указанной позиции
func (r *BeepResource) restartInternal(pos time.Duration) {
	if err := r.streamer.Seek(r.clampSample(pos)); err != nil {
		zlog.Warn().Err(err).Msg("ошибка перезапуска потока")
		return
	}
	r.finished = false
	r.startInternal(r.seq)
}

func (r *BeepResource) clampSample(pos time.Duration) int {
	n := r.format.SampleRate.N(pos)
	if n < 0 {
		n = 0
	}
	if length := r.streamer.Len(); length > 0 && n >= length {
		n = length - 1
	}
	return n
}

func (r *BeepResource) notifyPosition() {
	if r.sub != nil {
		r.sub.send(Event{Kind: EventPosition, Position: r.positionInternal()})
	}
}

// Position возвращает текущую позицию воспроизведения
func (r *BeepResource) Position() time.Duration {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.positionInternal()
}

// Duration возвращает длительность источника или 0, если она неизвестна
func (r *BeepResource) Duration() time.Duration {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.durationInternal()
}

func (r *BeepResource) positionInternal() time.Duration {
	if r.streamer == nil {
		return 0
	}
	r.out.Lock()
	defer r.out.Unlock()
	return r.format.SampleRate.D(r.streamer.Position())
}

func (r *BeepResource) durationInternal() time.Duration {
	if r.streamer == nil {
		return 0
	}
	length := r.streamer.Len()
	if length <= 0 {
		return 0
	}
	return r.format.SampleRate.D(length)
}

// monitorProgress публикует позицию, пока источник загружен
func (r *BeepResource) monitorProgress(ctx context.Context, sub *Subscription) {
	ticker := time.NewTicker(r.progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done:
			return
		case <-ticker.C:
			r.mutex.Lock()
			if r.seq != sub.Seq || r.ctrl == nil {
				r.mutex.Unlock()
				return
			}
			r.out.Lock()
			paused := r.ctrl.Paused
			pos := r.format.SampleRate.D(r.streamer.Position())
			r.out.Unlock()
			finished := r.finished
			r.mutex.Unlock()

			if !paused && !finished {
				sub.send(Event{Kind: EventPosition, Position: pos})
			}
		}
	}
}

// stopInternal закрывает текущий источник и подписку (должен вызываться под мьютексом)
func (r *BeepResource) stopInternal() {
	if r.loadCancel != nil {
		r.loadCancel()
		r.loadCancel = nil
	}

	if r.ctrl != nil {
		r.out.Clear()
		r.ctrl = nil
		r.output = nil
	}

	if r.streamer != nil {
		r.streamer.Close()
		r.streamer = nil
	}

	if r.body != nil {
		r.body.Close()
		r.body = nil
	}

	if r.sub != nil {
		r.sub.close()
		r.sub = nil
	}
	r.finished = false
}

// Close останавливает воспроизведение и освобождает ресурсы
func (r *BeepResource) Close() error {
	r.cancel()

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.stopInternal()
	if r.isInitialized {
		r.out.Close()
		r.isInitialized = false
	}
	return nil
}
