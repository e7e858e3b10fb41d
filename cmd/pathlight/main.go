// Pathlight - assistive navigation client for visually impaired users.
// Captures camera frames and voice queries, reasons about them through
// a remote multimodal service, and answers with spatial audio cues,
// speech and a visual debug overlay.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathlight/go-pathlight/internal/config"
	"github.com/pathlight/go-pathlight/internal/log"
	"github.com/pathlight/go-pathlight/pkg/audio"
	"github.com/pathlight/go-pathlight/pkg/capture"
	"github.com/pathlight/go-pathlight/pkg/detect"
	"github.com/pathlight/go-pathlight/pkg/gateway"
	"github.com/pathlight/go-pathlight/pkg/hud"
	"github.com/pathlight/go-pathlight/pkg/perception"
	"github.com/pathlight/go-pathlight/pkg/speech"
	"github.com/pathlight/go-pathlight/pkg/voice"
)

func main() {
	lang := flag.String("lang", config.Language(), "Spoken/output language (BCP 47)")
	interval := flag.Duration("interval", config.ScanInterval(), "Minimum pause between scan cycles")
	camera := flag.Int("camera", config.CameraDevice(), "Camera device index")
	hudPort := flag.String("hud-port", config.HUDPort(), "Debug overlay port")
	detectorModel := flag.String("detector", config.DetectorModelPath(), "ONNX model for the local detector (empty disables)")
	elevenVoice := flag.String("elevenlabs-voice", os.Getenv("ELEVENLABS_VOICE_ID"), "ElevenLabs voice ID")
	autoStart := flag.Bool("scan", true, "Start scanning immediately")
	flag.Parse()

	log.Init(config.LogLevel())

	caller, err := gateway.NewClient(config.GeminiAPIKey())
	if err != nil {
		log.Error("gateway init failed, set GEMINI_API_KEY", "error", err)
		os.Exit(1)
	}
	gw := gateway.New(caller)

	engine := audio.NewEngine()
	speaker := speech.NewSpeaker(buildSpeechProvider(gw, *elevenVoice), engine)

	camCfg := capture.DefaultConfig()
	camCfg.Device = *camera
	source, err := capture.OpenCamera(camCfg)
	if err != nil {
		log.Error("camera unavailable", "error", err, "device", *camera)
		os.Exit(1)
	}
	defer source.Close()

	mic, err := voice.NewMic()
	if err != nil {
		log.Error("microphone unavailable", "error", err)
		os.Exit(1)
	}
	defer mic.Close()

	ctrl := perception.New(source, gw, engine, speaker, mic,
		perception.WithLanguage(*lang),
		perception.WithInterval(*interval),
	)
	defer ctrl.Close()

	server := hud.NewServer(*hudPort, ctrl)
	ctrl.SetOnUpdate(server.PublishState)
	server.StartAsync()
	defer server.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go server.StreamFrames(ctx, source, time.Second)

	if path := *detectorModel; path != "" {
		startDetector(ctx, path, source, server)
	}

	if *autoStart {
		ctrl.StartScanning()
	}
	log.Info("pathlight running",
		"language", *lang,
		"interval", *interval,
		"hud_port", *hudPort,
	)

	<-ctx.Done()
	log.Info("shutting down")
}

// buildSpeechProvider prefers ElevenLabs streaming synthesis with the
// gateway's speech endpoint as fallback; without an ElevenLabs key the
// gateway provider runs alone.
func buildSpeechProvider(gw *gateway.Gateway, voiceID string) speech.Provider {
	gemini := speech.NewGemini(gw)

	key := config.ElevenLabsAPIKey()
	if key == "" || voiceID == "" {
		return gemini
	}

	eleven, err := speech.NewElevenLabs(key, voiceID)
	if err != nil {
		log.Warn("elevenlabs disabled", "error", err)
		return gemini
	}

	chain, err := speech.NewChain(eleven, gemini)
	if err != nil {
		return gemini
	}
	return chain
}

// startDetector wires the local fast detector onto the overlay. The
// detector is best-effort; failure to load just disables the fast path.
func startDetector(ctx context.Context, modelPath string, source capture.Source, server *hud.Server) {
	cfg := detect.DefaultConfig()
	cfg.ModelPath = modelPath

	det, err := detect.NewYOLO(cfg)
	if err != nil {
		log.Warn("local detector disabled", "error", err)
		return
	}

	adapter := detect.NewAdapter(det, source, detect.DefaultTickInterval)
	adapter.OnUpdate = server.PublishDetections
	go func() {
		adapter.Run(ctx)
		det.Close()
	}()
}
