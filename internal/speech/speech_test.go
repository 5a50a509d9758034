package speech

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

type fakeTTS struct {
	mu    sync.Mutex
	calls []string
	fail  bool
}

func (f *fakeTTS) Voice() string { return "test-voice" }

func (f *fakeTTS) Synthesize(_ context.Context, text string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.fail {
		return nil, errors.New("quota exceeded")
	}
	return []byte("wav:" + text), nil
}

func (f *fakeTTS) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePlayer struct {
	mu     sync.Mutex
	played []string
}

func (f *fakePlayer) Play(wav []byte) error {
	f.mu.Lock()
	f.played = append(f.played, string(wav))
	f.mu.Unlock()
	return nil
}

func (f *fakePlayer) Stop() {}

func (f *fakePlayer) list() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestSpeakerPlaysAndReportsSpeaking(t *testing.T) {
	tts := &fakeTTS{}
	player := &fakePlayer{}

	var mu sync.Mutex
	var changes []bool
	s := NewSpeaker(tts, player, logger.New(logger.LevelOff, nil), WithOnSpeaking(func(on bool) {
		mu.Lock()
		changes = append(changes, on)
		mu.Unlock()
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	s.Say("Detected pizza", PriorityNormal)
	waitFor(t, "playback", func() bool { return len(player.list()) == 1 })
	waitFor(t, "quiet", func() bool { return !s.IsSpeaking() })

	s.Say("Detected pizza", PriorityNormal)
	waitFor(t, "second playback", func() bool { return len(player.list()) == 2 })

	if n := tts.callCount(); n != 1 {
		t.Errorf("expected one synthesis thanks to the cache, got %d", n)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(changes) < 2 || !changes[0] || changes[1] {
		t.Errorf("expected on/off notifications, got %v", changes)
	}
}

func TestSpeakerPriorityAndHintFlush(t *testing.T) {
	s := NewSpeaker(&fakeTTS{}, &fakePlayer{}, logger.New(logger.LevelOff, nil))
	s.Say("hint", PriorityLow)
	s.Say("normal", PriorityNormal)
	s.Say("urgent", PriorityHigh)

	s.mu.Lock()
	defer s.mu.Unlock()
	first, _ := s.next()
	second, _ := s.next()
	_, more := s.next()
	if first.text != "urgent" || second.text != "normal" || more {
		t.Errorf("unexpected order %q, %q (more=%v)", first.text, second.text, more)
	}
}

func TestSpeakerSurvivesSynthesisFailure(t *testing.T) {
	tts := &fakeTTS{fail: true}
	player := &fakePlayer{}
	s := NewSpeaker(tts, player, logger.New(logger.LevelOff, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	s.Say("Network error", PriorityHigh)
	waitFor(t, "attempt", func() bool { return tts.callCount() == 1 })
	waitFor(t, "quiet", func() bool { return !s.IsSpeaking() })
	if len(player.list()) != 0 {
		t.Error("nothing should be played after a failed synthesis")
	}
}

func TestAudioCacheDiskLayer(t *testing.T) {
	dir := t.TempDir()
	log := logger.New(logger.LevelOff, nil)

	c1 := NewAudioCache("v", dir, log)
	c1.Put("hello", []byte("audio"))

	c2 := NewAudioCache("v", dir, log)
	got, ok := c2.Get("hello")
	if !ok || string(got) != "audio" {
		t.Fatalf("expected disk hit, got %q %v", got, ok)
	}
	if !c2.Has("hello") {
		t.Error("expected Has after promotion")
	}

	other := NewAudioCache("other-voice", dir, log)
	if _, ok := other.Get("hello"); ok {
		t.Error("a different voice must not share entries")
	}
	hits, misses := other.Stats()
	if hits != 0 || misses != 1 {
		t.Errorf("unexpected stats %d/%d", hits, misses)
	}
}

func TestAzureClientSendsEscapedSSML(t *testing.T) {
	var body, key, format string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		key = r.Header.Get("Ocp-Apim-Subscription-Key")
		format = r.Header.Get("X-Microsoft-OutputFormat")
		w.Write([]byte("RIFF"))
	}))
	defer srv.Close()

	c := NewAzureClient("secret", "westeurope", logger.New(logger.LevelOff, nil),
		WithEndpoint(srv.URL), WithVoice("en-GB-SoniaNeural"), WithLocale("en-GB"))
	audio, err := c.Synthesize(context.Background(), "Fish & chips <3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "RIFF" {
		t.Errorf("unexpected audio %q", audio)
	}
	if key != "secret" || format != DefaultAudioFormat {
		t.Errorf("unexpected headers key=%q format=%q", key, format)
	}
	if !strings.Contains(body, "Fish &amp; chips &lt;3") || !strings.Contains(body, "en-GB-SoniaNeural") {
		t.Errorf("unexpected ssml %q", body)
	}
}

func TestAzureClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := NewAzureClient("bad", "x", logger.New(logger.LevelOff, nil), WithEndpoint(srv.URL))
	if _, err := c.Synthesize(context.Background(), "hi"); err == nil {
		t.Fatal("expected error on 401")
	}
}

func TestPCMData(t *testing.T) {
	wav := []byte("RIFF\x00\x00\x00\x00WAVE")
	wav = appendChunk(wav, "fmt ", make([]byte, 16))
	wav = appendChunk(wav, "LIST", []byte{1, 2, 3}) // odd size, padded
	wav = appendChunk(wav, "data", []byte{9, 8, 7, 6})

	pcm, err := pcmData(wav)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(pcm) != string([]byte{9, 8, 7, 6}) {
		t.Errorf("unexpected pcm %v", pcm)
	}
	if _, err := pcmData([]byte("nope")); err == nil {
		t.Error("expected error for non-WAV input")
	}
}

func appendChunk(b []byte, id string, data []byte) []byte {
	b = append(b, id...)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(data)))
	b = append(b, data...)
	if len(data)%2 == 1 {
		b = append(b, 0)
	}
	return b
}

type recordingSayer struct{ lines []string }

func (r *recordingSayer) Say(text string, _ Priority) { r.lines = append(r.lines, text) }

type recordingNotifier struct{ printed []string }

func (r *recordingNotifier) Notify(_ context.Context, m string) error {
	r.printed = append(r.printed, m)
	return nil
}

func (r *recordingNotifier) NotifyUrgent(_ context.Context, m string) error {
	r.printed = append(r.printed, "!"+m)
	return nil
}

func TestSpeakingNotifier(t *testing.T) {
	text := &recordingNotifier{}
	sayer := &recordingSayer{}
	n := NewSpeakingNotifier(text, sayer, logger.New(logger.LevelOff, nil))

	_ = n.Notify(context.Background(), "[2] calzone")
	_ = n.NotifyUrgent(context.Background(), "\x1b[31mNetwork error\x1b[0m")

	if len(text.printed) != 2 || text.printed[1] != "!\x1b[31mNetwork error\x1b[0m" {
		t.Errorf("unexpected printed lines %q", text.printed)
	}
	if len(sayer.lines) != 2 || sayer.lines[0] != "calzone" || sayer.lines[1] != "Network error" {
		t.Errorf("unexpected spoken lines %q", sayer.lines)
	}
}
