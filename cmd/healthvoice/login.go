package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alkime/healthvoice/internal/audio"
	"github.com/alkime/healthvoice/internal/config"
	"github.com/alkime/healthvoice/internal/keyring"
	"github.com/alkime/healthvoice/internal/logger"
	"github.com/alkime/healthvoice/internal/portal"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/alkime/healthvoice/internal/sched"
	"github.com/alkime/healthvoice/internal/speech"
	"github.com/alkime/healthvoice/internal/tui"
)

// LoginCmd runs the login flow against the default microphone.
type LoginCmd struct {
	DeviceRate int    `flag:"" default:"16000" help:"Capture sample rate in Hz"`
	NoSpeech   bool   `flag:"" help:"Record without speech recognition"`
	Seed       uint64 `flag:"" help:"Seed for the verifier's random draw (0 picks one)"`
	Flow       string `flag:"" type:"existingfile" help:"TOML flow timing profile (overrides HEALTHVOICE_FLOW_FILE)"`
}

func (c *LoginCmd) Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log, closer, err := logger.SetupTUI(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	flowPath := c.Flow
	if flowPath == "" {
		flowPath = cfg.FlowFile
	}

	flow, err := config.LoadFlow(flowPath)
	if err != nil {
		return err
	}

	devConf := audio.DefaultDeviceConfig().WithSampleRate(c.DeviceRate)
	mic := audio.NewMicrophone(devConf, log)

	recognizer, err := c.speechRecognizer(cfg, devConf.SampleRate, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := sched.NewQueue()

	model := tui.New(tui.Deps{
		Wiring: portal.Wiring{
			Scheduler:  sched.NewLoop(queue.Dispatch),
			Microphone: mic,
			Speech:     recognizer,
			Evaluator:  newEvaluator(c.Seed),
			Limits:     flow.RecorderLimits(),
			Timings:    flow.AuthTimings(),
			Login:      flow.LoginOptions(),
			OnError: func(err error) {
				log.Warn("voice login error", "error", err)
			},
			Logger: log,
		},
		Meter:  mic.Meter(),
		Logger: log,
		Cancel: cancel,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	go tui.Pump(ctx, queue, p.Send)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if model.Portal().LoggedIn() {
		fmt.Println("signed in. bye!")
	}

	return nil
}

// speechRecognizer returns nil when recognition is disabled or no key is
// configured; recording then works without a transcript.
func (c *LoginCmd) speechRecognizer(cfg *config.Config, sampleRate int, log *slog.Logger) (recorder.SpeechRecognizer, error) {
	if c.NoSpeech {
		return nil, nil
	}

	apiKey, err := keyring.Resolve(keyring.OpenAI, cfg.OpenAIAPIKey)
	if err != nil {
		log.Debug("keychain lookup failed", "key", "openai", "error", err)
	}

	if apiKey == "" {
		log.Warn("no OpenAI API key; speech recognition disabled")
		return nil, nil
	}

	whisper, err := speech.NewWhisper(apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	return speech.NewRecognizer(whisper, speech.Options{
		Interval:   cfg.RecognizerInterval,
		SampleRate: sampleRate,
		Logger:     log,
	}), nil
}
