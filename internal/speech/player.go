package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

// Compile-time interface check.
var _ AudioPlayer = (*Player)(nil)

// Player plays 16-bit mono WAV through the system audio device.
type Player struct {
	otoCtx *oto.Context
	log    *logger.Logger

	mu      sync.Mutex
	current *oto.Player
}

// NewPlayer opens the audio device. It fails when no output is available.
func NewPlayer(log *logger.Logger) (*Player, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, err
	}
	<-ready
	log.Debug("player: ready (%d Hz, %d ch)", SampleRate, ChannelCount)
	return &Player{otoCtx: otoCtx, log: log}, nil
}

// Play blocks until wav has been played or Stop is called.
func (p *Player) Play(wav []byte) error {
	pcm, err := pcmData(wav)
	if err != nil {
		return err
	}

	pl := p.otoCtx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.current = pl
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.current = nil
		p.mu.Unlock()
	}()

	pl.Play()
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for pl.IsPlaying() {
		<-tick.C
	}
	return pl.Close()
}

// Stop cuts the current playback short. It is safe when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current != nil {
		p.current.Pause()
	}
}

// pcmData returns the payload of the WAV "data" chunk.
func pcmData(wav []byte) ([]byte, error) {
	if len(wav) < 12 || string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("player: not a RIFF/WAVE stream")
	}
	for pos := 12; pos+8 <= len(wav); {
		id := string(wav[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		body := pos + 8
		if id == "data" {
			end := body + size
			if end > len(wav) || size < 0 {
				end = len(wav)
			}
			return wav[body:end], nil
		}
		pos = body + size + size%2
	}
	return nil, errors.New("player: no data chunk")
}
