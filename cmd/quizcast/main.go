// quizcast generates a trivia question set and hosts it either as a
// real-time voice conversation with an AI host or as a text quiz with
// optional synthesized speech.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quizcast/quizcast/internal/log"
	"github.com/quizcast/quizcast/pkg/audioio"
	"github.com/quizcast/quizcast/pkg/game"
	"github.com/quizcast/quizcast/pkg/live"
	"github.com/quizcast/quizcast/pkg/trivia"
	"github.com/quizcast/quizcast/pkg/tts"
	"github.com/quizcast/quizcast/pkg/web"
)

func main() {
	topic := flag.String("topic", "general knowledge", "Quiz topic")
	count := flag.Int("count", 5, "Number of questions")
	mode := flag.String("mode", "live", "Game mode: live or text")
	voice := flag.String("voice", live.DefaultVoice, "Host voice for live mode")
	backend := flag.String("backend", "auto", "Audio backend: auto, portaudio, oto, mock")
	webPort := flag.String("web", "", "Dashboard port (empty disables the dashboard)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// .env is optional; environment variables win.
	godotenv.Load()

	level := "info"
	if *debug {
		level = "debug"
	}
	log.Init(level)

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Error("GEMINI_API_KEY is not set")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("🎙  quizcast: %d questions about %s (%s mode)\n\n", *count, *topic, *mode)

	generator, err := trivia.NewGenerator(trivia.Config{APIKey: geminiKey}, log.L())
	if err != nil {
		log.Error("create generator", "error", err)
		os.Exit(1)
	}

	questions, err := generator.Generate(ctx, *topic, *count)
	if err != nil {
		log.Error("generate questions", "error", err)
		os.Exit(1)
	}

	switch *mode {
	case "live":
		runLive(ctx, geminiKey, *voice, audioio.Backend(*backend), *webPort, questions)
	case "text":
		runText(ctx, audioio.Backend(*backend), questions)
	default:
		log.Error("unknown mode", "mode", *mode)
		os.Exit(1)
	}
}

// runLive conducts the quiz as a two-way voice conversation.
func runLive(ctx context.Context, apiKey, voice string, backend audioio.Backend, webPort string, questions []trivia.Question) {
	// Mock serves both directions; portaudio is capture-only and oto
	// playback-only, the other side stays on auto.
	captureBackend := audioio.BackendAuto
	playbackBackend := audioio.BackendAuto
	switch backend {
	case audioio.BackendMock:
		captureBackend = audioio.BackendMock
		playbackBackend = audioio.BackendMock
	case audioio.BackendPortAudio:
		captureBackend = audioio.BackendPortAudio
	case audioio.BackendOto:
		playbackBackend = audioio.BackendOto
	}

	o, err := game.NewOrchestrator(game.Config{
		APIKey:          apiKey,
		Voice:           voice,
		Questions:       questions,
		CaptureBackend:  captureBackend,
		PlaybackBackend: playbackBackend,
	}, log.L())
	if err != nil {
		log.Error("create game", "error", err)
		os.Exit(1)
	}
	defer o.Teardown()

	var srv *web.Server
	if webPort != "" {
		srv = web.NewServer(webPort, o, log.L())
		o.OnStatus(func(live.State) { srv.PublishStatus() })
		srv.StartAsync()
		defer srv.Shutdown()
	}

	if err := o.Start(ctx); err != nil {
		log.Error("start game", "error", err)
		os.Exit(1)
	}

	fmt.Println("🔊 Live host connected. Start talking! Press Ctrl+C to end the game.")
	<-ctx.Done()

	fmt.Println("\n👋 Game over, thanks for playing!")
}

// runText conducts the quiz over the terminal, speaking each question
// when ElevenLabs credentials are available.
func runText(ctx context.Context, backend audioio.Backend, questions []trivia.Question) {
	var provider tts.Provider
	var sink audioio.Sink

	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		voiceID := os.Getenv("ELEVENLABS_VOICE_ID")
		p, err := tts.NewElevenLabs(
			tts.WithAPIKey(key),
			tts.WithVoice(voiceID),
			tts.WithLogger(log.L()),
		)
		if err != nil {
			log.Warn("speech disabled", "error", err)
		} else {
			cfg := audioio.DefaultPlaybackConfig()
			if backend != "" {
				cfg.Backend = backend
			}
			s, err := audioio.NewSink(cfg, log.L())
			if err != nil {
				log.Warn("speech disabled, no playback device", "error", err)
				p.Close()
			} else if err := s.Start(ctx); err != nil {
				log.Warn("speech disabled, playback start failed", "error", err)
				p.Close()
				s.Close()
			} else {
				provider = p
				sink = s
				defer p.Close()
				defer s.Close()
			}
		}
	}

	g := game.NewTextGame(questions, provider, sink, log.L())
	score, err := g.Run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		log.Error("game ended early", "score", score, "error", err)
		os.Exit(1)
	}
}
