package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/alecthomas/kong"

	"github.com/alkime/healthvoice/internal/audio"
	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/config"
	"github.com/alkime/healthvoice/internal/logger"
	"github.com/alkime/healthvoice/internal/server"
)

// CLI defines the healthvoice command structure.
type CLI struct {
	Login   LoginCmd   `cmd:"" default:"withargs" help:"Sign in to the portal from the terminal"`
	Devices DevicesCmd `cmd:"" help:"List available capture devices"`
	Verify  VerifyCmd  `cmd:"" help:"Run the voice verifier on a transcript"`
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API"`
	Config  ConfigCmd  `cmd:"" help:"Manage configuration"`
}

// DevicesCmd lists capture devices.
type DevicesCmd struct{}

func (dcmd *DevicesCmd) Run() error {
	devices, err := audio.NewDevice(nil).EnumerateDevices(context.Background())
	if err != nil {
		return fmt.Errorf("failed to enumerate audio devices: %w", err)
	}

	for _, dev := range devices {
		slog.Info("Audio Device",
			"name", dev.Name,
			"isDefault", dev.IsDefault,
			"formatCount", dev.FormatCount,
			"formats", dev.Formats,
		)
	}

	return nil
}

// VerifyCmd evaluates one transcript the way a voice attempt would.
type VerifyCmd struct {
	Transcript string `arg:"" optional:"" help:"What the speaker said"`
	Seed       uint64 `flag:"" help:"Seed for the random draw (0 picks one)"`
}

//nolint:unparam // error return required by Kong interface
func (c *VerifyCmd) Run() error {
	outcome := newEvaluator(c.Seed).Evaluate(c.Transcript)

	fmt.Printf("outcome: %s\n", outcome)
	fmt.Printf("matched: %t\n", auth.MatchesPhrase(c.Transcript, auth.Passphrase))

	return nil
}

// ServeCmd runs the HTTP API.
type ServeCmd struct{}

func (c *ServeCmd) Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	log := logger.SetupServer(cfg)
	log.Info("Starting HealthVoice server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	srv, err := server.New(cfg, log, server.Options{})
	if err != nil {
		return err
	}

	return server.Run(srv)
}

// newEvaluator returns the standard verifier, seeded when seed is non-zero.
func newEvaluator(seed uint64) auth.Evaluator {
	if seed == 0 {
		return auth.NewHeuristic(nil)
	}

	return auth.NewHeuristic(rand.New(rand.NewPCG(seed, seed))) //nolint:gosec // not security sensitive
}

func main() {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	cli := &CLI{} //nolint:exhaustruct // Kong fills in command fields
	ctx := kong.Parse(cli,
		kong.Name("healthvoice"),
		kong.Description("Voice biometric login for the HealthVoice portal."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
