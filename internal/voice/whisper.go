package voice

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

// SpeakingGate tells the engine when spoken feedback is playing, so it can
// throw away what the microphone picks up meanwhile.
type SpeakingGate interface {
	IsSpeaking() bool
}

// WhisperOption configures the WhisperEngine.
type WhisperOption func(*WhisperEngine)

// WithChunkDuration sets how long each recorded chunk lasts.
func WithChunkDuration(d time.Duration) WhisperOption {
	return func(w *WhisperEngine) { w.chunk = d }
}

// WithSilenceChunks sets how many silent chunks in a row end a session.
func WithSilenceChunks(n int) WhisperOption {
	return func(w *WhisperEngine) { w.silenceChunks = n }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) WhisperOption {
	return func(w *WhisperEngine) { w.tempDir = dir }
}

// WithSpeakingGate installs the echo gate.
func WithSpeakingGate(g SpeakingGate) WhisperOption {
	return func(w *WhisperEngine) { w.gate = g }
}

// WithDeviceProbe replaces the capture-device probe.
func WithDeviceProbe(fn func() error) WhisperOption {
	return func(w *WhisperEngine) { w.probeDevice = fn }
}

// WhisperEngine recognizes speech with a local whisper.cpp binary. A
// session records fixed-length chunks and ends after a run of silent
// chunks, like a browser recognizer timing out on silence.
type WhisperEngine struct {
	whisperBin    string
	modelPath     string
	tempDir       string
	chunk         time.Duration
	silenceChunks int
	gate          SpeakingGate
	probeDevice   func() error
	log           *logger.Logger
}

// Compile-time interface check.
var _ Engine = (*WhisperEngine)(nil)

// NewWhisperEngine creates an engine.
//
//   - whisperBin: path to the whisper-cli executable
//   - modelPath:  path to the GGML model file
func NewWhisperEngine(whisperBin, modelPath string, log *logger.Logger, opts ...WhisperOption) *WhisperEngine {
	w := &WhisperEngine{
		whisperBin:    whisperBin,
		modelPath:     modelPath,
		tempDir:       ".foodvision-stt",
		chunk:         3 * time.Second,
		silenceChunks: 3,
		probeDevice:   ProbeCaptureDevice,
		log:           log,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Probe checks the binary, the model file and that a capture device exists.
func (w *WhisperEngine) Probe() error {
	if _, err := exec.LookPath(w.whisperBin); err != nil {
		return fmt.Errorf("whisper binary %q: %w", w.whisperBin, err)
	}
	if _, err := os.Stat(w.modelPath); err != nil {
		return fmt.Errorf("whisper model: %w", err)
	}
	if w.probeDevice != nil {
		if err := w.probeDevice(); err != nil {
			return err
		}
	}
	return nil
}

// Run records until a run of silent chunks or until ctx is cancelled.
func (w *WhisperEngine) Run(ctx context.Context, settings Settings, emit func(Batch)) error {
	w.log.Debug("whisper: session start (locale=%s, chunk=%s)", settings.Locale, w.chunk)
	silent := 0
	for ctx.Err() == nil {
		if w.speaking() {
			select {
			case <-time.After(200 * time.Millisecond):
			case <-ctx.Done():
			}
			continue
		}

		text, err := w.recordChunk(ctx)
		if err != nil {
			return err
		}
		// Feedback started while recording; the chunk holds our own voice.
		if w.speaking() {
			w.log.Debug("whisper: discarding chunk recorded over feedback")
			continue
		}

		text = cleanTranscription(text)
		if text == "" {
			silent++
			if silent >= w.silenceChunks {
				w.log.Debug("whisper: session end on silence")
				return nil
			}
			continue
		}
		silent = 0
		emit(Batch{{text}})
	}
	return nil
}

func (w *WhisperEngine) speaking() bool {
	return w.gate != nil && w.gate.IsSpeaking()
}

// recordChunk does one recording cycle and returns the transcribed text.
func (w *WhisperEngine) recordChunk(ctx context.Context) (string, error) {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := w.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		w.whisperBin,
		w.modelPath,
		w.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", fmt.Errorf("whisper: transcriber init: %w", err)
	}
	if err := t.Start(); err != nil {
		return "", fmt.Errorf("whisper: recording start: %w", err)
	}

	select {
	case <-time.After(w.chunk):
	case <-ctx.Done():
		t.Stop()
		wg.Wait()
		return "", nil
	}

	t.Stop()
	wg.Wait()
	return result, nil
}

// ProbeCaptureDevice checks that the audio backend lists at least one
// capture device.
func ProbeCaptureDevice() error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(string) {})
	if err != nil {
		return fmt.Errorf("audio context: %w", err)
	}
	defer func() {
		_ = mctx.Uninit()
		mctx.Free()
	}()

	devices, err := mctx.Devices(malgo.Capture)
	if err != nil {
		return fmt.Errorf("malgo devices: %w", err)
	}
	if len(devices) == 0 {
		return fmt.Errorf("no capture device")
	}
	return nil
}

// ── Transcription cleanup ────────────────────────────────────────

// annotation matches whisper sound annotations like "(keyboard
// clicking)" or "[laughter]".
var annotation = regexp.MustCompile(`[\(\[][a-zA-Z_][a-zA-Z_\s]*[\)\]]`)

// timestamp matches "[00:00:00.000 --> 00:00:05.000]".
var timestamp = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\.\d{3} --> \d{2}:\d{2}:\d{2}\.\d{3}\]`)

// hallucinations are what whisper tends to produce from silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription strips whisper artifacts and known hallucinations.
func cleanTranscription(s string) string {
	s = timestamp.ReplaceAllString(s, " ")
	s = annotation.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}
