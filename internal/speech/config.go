// Package speech speaks short status lines: Azure text-to-speech, a
// two-tier audio cache and oto playback behind a single-voice queue.
package speech

import "time"

// DefaultVoice is used when AZURE_SPEECH_VOICE is unset.
const DefaultVoice = "en-US-AvaNeural"

// DefaultAudioFormat is what Azure returns and the player expects.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Playback parameters matching DefaultAudioFormat.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// Priority orders queued lines. Higher speaks first.
type Priority int

const (
	PriorityLow    Priority = iota // hints
	PriorityNormal                 // detections, page changes
	PriorityHigh                   // failures
)

// request is a queued line.
type request struct {
	text     string
	priority Priority
	queuedAt time.Time
}
