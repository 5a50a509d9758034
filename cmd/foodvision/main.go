// Foodvision is a terminal client for the food recognition server: snap a
// photo, see what was detected, pick a dish and read its recipe, by
// keyboard or by voice.
//
// Usage:
//
//	foodvision [-server URL] [-verbose] [-quiet] [-no-voice] [-no-speech]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hammamikhairi/foodvision/internal/bridge"
	"github.com/hammamikhairi/foodvision/internal/config"
	"github.com/hammamikhairi/foodvision/internal/controller"
	"github.com/hammamikhairi/foodvision/internal/conversation"
	"github.com/hammamikhairi/foodvision/internal/display"
	"github.com/hammamikhairi/foodvision/internal/domain"
	"github.com/hammamikhairi/foodvision/internal/logger"
	"github.com/hammamikhairi/foodvision/internal/speech"
	"github.com/hammamikhairi/foodvision/internal/voice"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", cfg.Log.File, "file to write logs to (use \"stderr\" to log to console)")
	server := flag.String("server", cfg.Server.BaseURL, "base URL of the food vision server")
	requestTimeout := flag.Duration("request-timeout", cfg.Server.RequestTimeout, "per-request timeout (0 waits forever)")
	noPush := flag.Bool("no-push", false, "do not open the push channel")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	noVoice := flag.Bool("no-voice", !cfg.Voice.Enabled, "disable voice commands")
	whisperBin := flag.String("whisper-bin", cfg.Voice.WhisperBin, "path to the whisper-cpp CLI binary")
	whisperModel := flag.String("whisper-model", cfg.Voice.WhisperModel, "path to the Whisper GGML model file")
	recordSecs := flag.Int("record-secs", cfg.Voice.RecordSecs, "seconds per voice recording chunk")
	flag.Parse()

	cfg.Log.File = *logFile
	cfg.Server.BaseURL = *server
	cfg.Server.RequestTimeout = *requestTimeout
	cfg.Server.Push = !*noPush
	cfg.Speech.Enabled = cfg.Speech.Enabled && !*noSpeech
	cfg.Voice.Enabled = !*noVoice
	cfg.Voice.WhisperBin = *whisperBin
	cfg.Voice.WhisperModel = *whisperModel
	if *recordSecs > 0 {
		cfg.Voice.RecordSecs = *recordSecs
	}

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Logs go to a rotated file by default so the terminal UI stays clean.
	var logOut io.Writer = os.Stderr
	if cfg.Log.File != "" && cfg.Log.File != "stderr" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		}
		defer rotated.Close()
		logOut = rotated
	}

	// Third-party libraries (the whisper transcriber) log through the
	// standard package; keep them off the terminal too.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Server bridge ──
	client, err := bridge.NewClient(cfg.Server.BaseURL, log.With("component", "bridge"),
		bridge.WithRequestTimeout(cfg.Server.RequestTimeout),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	var push domain.PushChannel = bridge.NoPush{}
	if cfg.Server.Push {
		p, err := bridge.Dial(ctx, cfg.Server.BaseURL, log.With("component", "push"))
		if err != nil {
			log.Warn("push channel unavailable, continuing without it: %v", err)
		} else {
			push = p
		}
	}
	defer push.Close()

	// ── Terminal surface & notifications ──
	ui := display.NewUI()
	var notifier domain.Notifier = conversation.NewCLINotifier(log, ui.Printf, ui.PrintUrgent)

	// ── Spoken feedback ──
	var speaker *speech.Speaker
	if cfg.Speech.Enabled {
		tts := speech.NewAzureClient(cfg.Speech.AzureKey, cfg.Speech.Region, log,
			speech.WithVoice(cfg.Speech.VoiceName),
			speech.WithLocale(cfg.Voice.Locale),
		)
		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
		} else {
			speaker = speech.NewSpeaker(tts, player, log, speech.WithCacheDir(cfg.Speech.CacheDir))
			speaker.Start(ctx)
			speaker.Prefetch(ctx,
				conversation.LineWelcome(),
				conversation.LineCapturing(),
				conversation.LineGoingHome(),
				domain.MsgNoFoodDetected,
			)
			notifier = speech.NewSpeakingNotifier(notifier, speaker, log)
			log.Info("TTS enabled (voice=%s, region=%s)", cfg.Speech.VoiceName, cfg.Speech.Region)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", config.EnvAzureKey, config.EnvAzureRegion)
	}

	// ── Voice commands ──
	var engine voice.Engine = voice.NoEngine{}
	if cfg.Voice.Enabled {
		opts := []voice.WhisperOption{
			voice.WithChunkDuration(time.Duration(cfg.Voice.RecordSecs) * time.Second),
			voice.WithTempDir(".foodvision-stt"),
		}
		if speaker != nil {
			opts = append(opts, voice.WithSpeakingGate(speaker))
		}
		engine = voice.NewWhisperEngine(cfg.Voice.WhisperBin, cfg.Voice.WhisperModel, log.With("component", "whisper"), opts...)
	}
	recognizer := voice.New(engine, log.With("component", "voice"), voice.WithLocale(cfg.Voice.Locale))
	if cfg.Voice.Enabled && !recognizer.Available() {
		log.Warn("voice commands unavailable; keyboard only")
	}

	// ── Controller ──
	ctrl := controller.New(client, push, recognizer, notifier, ui, log.With("component", "controller"),
		controller.WithVoiceDefault(cfg.Voice.Enabled && recognizer.Available()),
	)
	ui.Bind(ctrl)
	if speaker != nil {
		speaker.SetOnSpeaking(func(speaking bool) {
			ctrl.Post(domain.SpeakingChanged{Speaking: speaking})
		})
	}

	fmt.Print(display.RenderBanner(fmt.Sprintf("connected to %s", cfg.Server.BaseURL)))
	fmt.Println()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ui.WaitReady()
		greet(ctx, notifier, log)
		if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("controller: %v", err)
		}
		ui.Quit()
	}()

	// Bubble Tea owns the terminal; blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	<-done
}

// greet speaks the welcome line. A failure is logged and otherwise ignored.
func greet(ctx context.Context, n domain.Notifier, log *logger.Logger) {
	if err := n.Notify(ctx, conversation.LineWelcome()); err != nil {
		log.Warn("notify welcome: %v", err)
	}
}
