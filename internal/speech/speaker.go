package speech

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// AudioPlayer plays WAV audio, blocking until done or stopped.
type AudioPlayer interface {
	Play(wav []byte) error
	Stop()
}

// SpeakerOption configures the Speaker.
type SpeakerOption func(*Speaker)

// WithCacheDir persists synthesized audio under dir.
func WithCacheDir(dir string) SpeakerOption {
	return func(s *Speaker) { s.cacheDir = dir }
}

// WithOnSpeaking installs a callback fired when speech starts and stops.
func WithOnSpeaking(fn func(speaking bool)) SpeakerOption {
	return func(s *Speaker) { s.onSpeaking = fn }
}

// Speaker serializes spoken lines: one voice at a time, highest priority
// first. Each line is synthesized once and cached.
type Speaker struct {
	tts    Synthesizer
	player AudioPlayer
	log    *logger.Logger
	cache  *AudioCache

	cacheDir   string
	onSpeaking func(bool)

	mu          sync.Mutex
	queue       []request
	speaking    bool
	interrupted bool
	wake        chan struct{}
}

// NewSpeaker creates a speaker. Call Start to begin playback.
func NewSpeaker(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		tts:    tts,
		player: player,
		log:    log,
		wake:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = NewAudioCache(tts.Voice(), s.cacheDir, log)
	return s
}

// SetOnSpeaking replaces the speaking callback.
func (s *Speaker) SetOnSpeaking(fn func(speaking bool)) {
	s.mu.Lock()
	s.onSpeaking = fn
	s.mu.Unlock()
}

// Say queues text. Queuing a normal or higher line drops pending hints.
func (s *Speaker) Say(text string, priority Priority) {
	if text == "" {
		return
	}
	s.mu.Lock()
	if priority >= PriorityNormal {
		kept := s.queue[:0]
		for _, r := range s.queue {
			if r.priority > PriorityLow {
				kept = append(kept, r)
			}
		}
		s.queue = kept
	}
	s.queue = append(s.queue, request{text: text, priority: priority, queuedAt: time.Now()})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// IsSpeaking reports whether a line is being synthesized or played, or
// lines are waiting.
func (s *Speaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speaking || len(s.queue) > 0
}

// Interrupt clears the queue and cuts the current line short.
func (s *Speaker) Interrupt() {
	s.mu.Lock()
	s.queue = s.queue[:0]
	s.interrupted = true
	s.mu.Unlock()
	s.player.Stop()
	s.log.Debug("speaker: interrupted")
}

// Prefetch synthesizes texts into the cache in the background.
func (s *Speaker) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" || s.cache.Has(text) {
			continue
		}
		go func(t string) {
			if _, err := s.audio(ctx, t); err != nil {
				s.log.Debug("speaker: prefetch %q: %v", truncate(t, 40), err)
			}
		}(text)
	}
}

// Start runs the playback loop until ctx is cancelled. Non-blocking.
func (s *Speaker) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				s.drain(ctx)
			}
		}
	}()
}

func (s *Speaker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		s.mu.Lock()
		s.interrupted = false
		req, ok := s.next()
		started := ok && !s.speaking
		if started {
			s.speaking = true
		}
		s.mu.Unlock()
		if started {
			s.notify(true)
		}
		if !ok {
			break
		}

		s.log.Debug("speaker: %q (waited %s)", truncate(req.text, 60), time.Since(req.queuedAt).Round(time.Millisecond))
		wav, err := s.audio(ctx, req.text)
		if err != nil {
			s.log.Warn("speaker: synthesis failed: %v", err)
			continue
		}
		s.mu.Lock()
		skip := s.interrupted
		s.mu.Unlock()
		if skip {
			continue
		}
		if err := s.player.Play(wav); err != nil {
			s.log.Warn("speaker: playback failed: %v", err)
		}
	}

	s.mu.Lock()
	stopped := s.speaking
	s.speaking = false
	s.mu.Unlock()
	if stopped {
		s.notify(false)
	}
}

// next pops the highest-priority request, oldest first. Caller holds mu.
func (s *Speaker) next() (request, bool) {
	if len(s.queue) == 0 {
		return request{}, false
	}
	best := 0
	for i, r := range s.queue {
		if r.priority > s.queue[best].priority {
			best = i
		}
	}
	r := s.queue[best]
	s.queue = append(s.queue[:best], s.queue[best+1:]...)
	return r, true
}

func (s *Speaker) notify(speaking bool) {
	s.mu.Lock()
	fn := s.onSpeaking
	s.mu.Unlock()
	if fn != nil {
		fn(speaking)
	}
}

func (s *Speaker) audio(ctx context.Context, text string) ([]byte, error) {
	if wav, ok := s.cache.Get(text); ok {
		return wav, nil
	}
	wav, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Put(text, wav)
	return wav, nil
}
