package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/foodvision/internal/logger"
)

// AudioCache keeps synthesized audio in memory and, when dir is set, on
// disk across runs. Keys are sha256(voice + ":" + text), so changing the
// voice never replays stale audio.
type AudioCache struct {
	voice string
	dir   string
	log   *logger.Logger

	mu  sync.RWMutex
	mem map[string][]byte

	hits, misses atomic.Int64
}

// NewAudioCache creates a cache. An empty dir keeps it in memory only.
func NewAudioCache(voice, dir string, log *logger.Logger) *AudioCache {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Warn("tts cache: %v; falling back to memory only", err)
			dir = ""
		}
	}
	return &AudioCache{voice: voice, dir: dir, log: log, mem: make(map[string][]byte)}
}

// Get returns cached audio for text, promoting disk hits to memory.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.key(text)

	c.mu.RLock()
	data, ok := c.mem[key]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return data, true
	}

	if c.dir != "" {
		if data, err := os.ReadFile(c.path(key)); err == nil {
			c.mu.Lock()
			c.mem[key] = data
			c.mu.Unlock()
			c.hits.Add(1)
			c.log.Debug("tts cache: disk hit %s", key[:12])
			return data, true
		}
	}
	c.misses.Add(1)
	return nil, false
}

// Put stores audio for text.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.key(text)
	c.mu.Lock()
	c.mem[key] = audio
	c.mu.Unlock()

	if c.dir == "" {
		return
	}
	if err := os.WriteFile(c.path(key), audio, 0o644); err != nil {
		c.log.Warn("tts cache: write %s: %v", key[:12], err)
	}
}

// Has reports whether text is cached in memory or on disk.
func (c *AudioCache) Has(text string) bool {
	key := c.key(text)
	c.mu.RLock()
	_, ok := c.mem[key]
	c.mu.RUnlock()
	if ok || c.dir == "" {
		return ok
	}
	_, err := os.Stat(c.path(key))
	return err == nil
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *AudioCache) key(text string) string {
	sum := sha256.Sum256([]byte(c.voice + ":" + text))
	return hex.EncodeToString(sum[:])
}

func (c *AudioCache) path(key string) string {
	return filepath.Join(c.dir, key+".wav")
}
