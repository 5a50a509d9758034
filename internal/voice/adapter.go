// Package voice keeps a continuous speech recognizer alive while voice
// input is enabled and turns its results into utterances.
package voice

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ domain.VoiceInput = (*Adapter)(nil)

// Settings are handed to the engine on every session.
type Settings struct {
	Locale     string
	Continuous bool
	Interim    bool
}

// Batch is one engine result event: a list of results, each a list of
// alternatives.
type Batch [][]string

// Engine is a speech recognizer. Run performs one recognition session and
// blocks until it ends, on silence, on error, or when ctx is cancelled.
// Every finalized result batch is passed to emit.
type Engine interface {
	Probe() error
	Run(ctx context.Context, settings Settings, emit func(Batch)) error
}

// Option configures the Adapter.
type Option func(*Adapter)

// WithLocale sets the recognition locale.
func WithLocale(locale string) Option {
	return func(a *Adapter) { a.settings.Locale = locale }
}

// WithErrorBackoff sets how long to wait before restarting after an
// engine error.
func WithErrorBackoff(d time.Duration) Option {
	return func(a *Adapter) { a.errorBackoff = d }
}

// WithBufferSize sets how many undelivered utterances are kept.
func WithBufferSize(n int) Option {
	return func(a *Adapter) { a.bufSize = n }
}

// Adapter supervises an Engine. While enabled it restarts the engine each
// time a session ends; at most one session runs at any time.
type Adapter struct {
	engine       Engine
	log          *logger.Logger
	settings     Settings
	errorBackoff time.Duration
	bufSize      int
	available    bool

	mu      sync.Mutex
	enabled bool
	cancel  context.CancelFunc
	done    chan struct{} // closed when the current supervisor returns

	active atomic.Int32
	peak   atomic.Int32
	out    chan string
}

// New creates an adapter and probes the engine once. If the probe fails
// the adapter is permanently inert: Start does nothing and no utterance is
// ever emitted.
func New(engine Engine, log *logger.Logger, opts ...Option) *Adapter {
	a := &Adapter{
		engine:       engine,
		log:          log,
		settings:     Settings{Locale: "en-US", Continuous: true, Interim: false},
		errorBackoff: 500 * time.Millisecond,
		bufSize:      8,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.out = make(chan string, a.bufSize)

	if engine == nil {
		log.Warn("voice: no engine configured, voice input disabled")
		return a
	}
	if err := engine.Probe(); err != nil {
		log.Warn("voice: %v: %v", domain.ErrVoiceInert, err)
		return a
	}
	a.available = true
	return a
}

// Available reports whether the probe succeeded.
func (a *Adapter) Available() bool { return a.available }

// Utterances returns the channel of lower-cased, trimmed utterances.
func (a *Adapter) Utterances() <-chan string { return a.out }

// Enabled reports whether recognition is switched on.
func (a *Adapter) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Start begins continuous recognition. It is a no-op when already running
// or when the adapter is inert.
func (a *Adapter) Start() {
	if !a.available {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		return
	}
	a.enabled = true

	prev := a.done
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	go a.supervise(ctx, prev, done)
	a.log.Debug("voice: started (%s)", a.settings.Locale)
}

// Stop halts recognition and suppresses the auto-restart. Utterances not
// yet consumed are dropped. Calling Stop when stopped is a no-op.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if !a.enabled {
		a.mu.Unlock()
		return
	}
	// The flag goes down before the session is cancelled so the
	// supervisor never sees an end event with the flag still up.
	a.enabled = false
	a.cancel()
	a.mu.Unlock()

	a.drain()
	a.log.Debug("voice: stopped")
}

// Release stops recognition and waits for the engine to return.
func (a *Adapter) Release() {
	a.Stop()
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done != nil {
		<-done
	}
	a.drain()
}

// ActiveSessions returns how many engine sessions are running right now.
func (a *Adapter) ActiveSessions() int { return int(a.active.Load()) }

// PeakSessions returns the largest number of concurrent sessions seen.
func (a *Adapter) PeakSessions() int { return int(a.peak.Load()) }

func (a *Adapter) drain() {
	for {
		select {
		case <-a.out:
		default:
			return
		}
	}
}

// supervise runs engine sessions back to back until ctx is cancelled. It
// waits for the previous supervisor first so sessions never overlap.
func (a *Adapter) supervise(ctx context.Context, prev <-chan struct{}, done chan struct{}) {
	defer close(done)
	if prev != nil {
		select {
		case <-prev:
		case <-ctx.Done():
			<-prev
			return
		}
	}

	for ctx.Err() == nil {
		err := a.runSession(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			// Engine errors never end the loop.
			a.log.Warn("voice: engine error: %v", err)
			select {
			case <-time.After(a.errorBackoff):
			case <-ctx.Done():
				return
			}
		}
		if !a.Enabled() {
			return
		}
		a.log.Debug("voice: session ended, restarting")
	}
}

func (a *Adapter) runSession(ctx context.Context) error {
	n := a.active.Add(1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	defer a.active.Add(-1)

	return a.engine.Run(ctx, a.settings, func(b Batch) {
		text := lastAlternative(b)
		if text == "" {
			return
		}
		select {
		case a.out <- text:
			a.log.Debug("voice: heard %q", text)
		case <-ctx.Done():
		}
	})
}

// lastAlternative picks the most recent alternative of the most recent
// result, lower-cased and trimmed.
func lastAlternative(b Batch) string {
	if len(b) == 0 {
		return ""
	}
	last := b[len(b)-1]
	if len(last) == 0 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(last[len(last)-1]))
}

// ── NoEngine ─────────────────────────────────────────────────────

// NoEngine is a platform without speech recognition.
type NoEngine struct{}

// Probe always fails.
func (NoEngine) Probe() error { return domain.ErrVoiceInert }

// Run fails immediately.
func (NoEngine) Run(context.Context, Settings, func(Batch)) error { return domain.ErrVoiceInert }
